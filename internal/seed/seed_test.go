package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dexhub/internal/dataset"
	"github.com/mesh-intelligence/dexhub/internal/logging"
	"github.com/mesh-intelligence/dexhub/internal/metrics"
	"github.com/mesh-intelligence/dexhub/internal/sqlite"
	"github.com/mesh-intelligence/dexhub/pkg/types"
)

func newTestStore(t *testing.T) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend(sqlite.WithLogger(logging.Discard()))
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func newTestSeeder(t *testing.T, store Store, opts Options, extra ...Option) *Seeder {
	t.Helper()
	options := append([]Option{WithLogger(logging.Discard())}, extra...)
	s, err := New(store, opts, options...)
	require.NoError(t, err)
	return s
}

func sampleEntries() []dataset.RawEntry {
	return []dataset.RawEntry{
		{ID: 1, Name: "Bulbasaur", Types: []string{"grass", "poison"}, URL: "http://x/1.png"},
		{ID: 4, Name: "Charmander", Types: []string{"Fire"}, URL: "http://x/4.png"},
		{ID: 7, Name: "Squirtle", Types: []string{"WATER"}, URL: "http://x/7.png"},
	}
}

// failingStore reports an empty catalog and fails every batch write.
type failingStore struct {
	inserted int
}

func (f *failingStore) Count(context.Context) (int, error) { return 0, nil }

func (f *failingStore) InsertAll(_ context.Context, c []types.Creature) error {
	f.inserted += len(c)
	return errors.New("disk I/O error")
}

func TestSeed_WritesEntries(t *testing.T) {
	store := newTestStore(t)
	s := newTestSeeder(t, store, DefaultOptions())
	ctx := context.Background()

	res, err := s.Seed(ctx, sampleEntries())
	require.NoError(t, err)
	assert.Equal(t, StatusSeeded, res.Status)
	assert.Equal(t, 3, res.Written)
	assert.NotEmpty(t, res.RunID)

	c, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Bulbasaur", c.Name)
	assert.Equal(t, []types.TypeTag{types.TypeGrass, types.TypePoison}, c.Types)
	assert.Equal(t, "http://x/1.png", c.Image.URL)
	assert.Equal(t, int64(0), c.Version)

	c, err = store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []types.TypeTag{types.TypeWater}, c.Types)
}

func TestSeed_IsIdempotent(t *testing.T) {
	store := newTestStore(t)
	s := newTestSeeder(t, store, DefaultOptions())
	ctx := context.Background()

	_, err := s.Seed(ctx, sampleEntries())
	require.NoError(t, err)

	res, err := s.Seed(ctx, []dataset.RawEntry{{ID: 25, Name: "Pikachu", Types: []string{"electric"}, URL: "http://x/25.png"}})
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadySeeded, res.Status)
	assert.Equal(t, 0, res.Written)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = store.Get(ctx, 25)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSeed_DuplicateIdentifierAbortsWholeSeed(t *testing.T) {
	store := newTestStore(t)
	s := newTestSeeder(t, store, DefaultOptions())
	ctx := context.Background()

	entries := []dataset.RawEntry{
		{ID: 1, Name: "Bulbasaur", Types: []string{"grass", "poison"}, URL: "http://x/1.png"},
		{ID: 2, Name: "Ivysaur", Types: []string{"grass"}, URL: "http://x/2.png"},
		{ID: 1, Name: "Bulbasaur again", Types: []string{"grass"}, URL: "http://x/1b.png"},
	}

	_, err := s.Seed(ctx, entries)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDuplicateIdentifier)

	var dupErr *types.DuplicateIdentifierError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, []int64{1}, dupErr.IDs)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSeed_DuplicateBeyondImportLimitStillFails(t *testing.T) {
	store := newTestStore(t)
	opts := DefaultOptions()
	opts.ImportLimit = 1
	s := newTestSeeder(t, store, opts)

	entries := append(sampleEntries(), dataset.RawEntry{ID: 7, Name: "Squirtle", URL: "http://x/7.png"})
	_, err := s.Seed(context.Background(), entries)
	assert.ErrorIs(t, err, types.ErrDuplicateIdentifier)
}

func TestSeed_UnknownTypeAndBadURLAreTolerated(t *testing.T) {
	store := newTestStore(t)
	s := newTestSeeder(t, store, DefaultOptions())
	ctx := context.Background()

	res, err := s.Seed(ctx, []dataset.RawEntry{
		{ID: 1, Name: "Weedle", Types: []string{"bogus-type"}, URL: "not a url"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, 1, res.DroppedTypes)
	assert.Equal(t, 1, res.EmptyTypeSets)
	assert.Equal(t, 1, res.PlaceholderImages)

	c, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Empty(t, c.Types)
	assert.Equal(t, DefaultPlaceholderURL, c.Image.URL)
}

func TestSeed_PartiallyRecognizedTypesKeepKnownOnes(t *testing.T) {
	store := newTestStore(t)
	s := newTestSeeder(t, store, DefaultOptions())
	ctx := context.Background()

	res, err := s.Seed(ctx, []dataset.RawEntry{
		{ID: 6, Name: "Charizard", Types: []string{"Fire", "Dragonish", "fire", "Flying"}, URL: "https://x/6.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.DroppedTypes)
	assert.Equal(t, 0, res.EmptyTypeSets)

	c, err := store.Get(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, []types.TypeTag{types.TypeFire, types.TypeFlying}, c.Types)
}

func TestSeed_CategoryPolicies(t *testing.T) {
	entry := dataset.RawEntry{ID: 13, Name: "Weedle", Types: []string{"bogus"}, URL: "https://x/13.png"}

	tests := []struct {
		name        string
		policy      Policy
		wantWritten int
		wantTypes   []types.TypeTag
	}{
		{name: "drop keeps the creature with no types", policy: PolicyDrop, wantWritten: 1, wantTypes: []types.TypeTag{}},
		{name: "default substitutes the default type", policy: PolicyDefault, wantWritten: 1, wantTypes: []types.TypeTag{types.TypeBug}},
		{name: "reject skips the entry", policy: PolicyReject, wantWritten: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			opts := DefaultOptions()
			opts.Policy = tt.policy
			opts.DefaultType = types.TypeBug
			s := newTestSeeder(t, store, opts)
			ctx := context.Background()

			res, err := s.Seed(ctx, []dataset.RawEntry{entry})
			require.NoError(t, err)
			assert.Equal(t, tt.wantWritten, res.Written)

			c, err := store.Get(ctx, 13)
			if tt.wantWritten == 0 {
				assert.ErrorIs(t, err, types.ErrNotFound)
				assert.Equal(t, 1, res.Skipped)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTypes, c.Types)
		})
	}
}

func TestSeed_SkipsMalformedEntries(t *testing.T) {
	store := newTestStore(t)
	s := newTestSeeder(t, store, DefaultOptions())
	ctx := context.Background()

	res, err := s.Seed(ctx, []dataset.RawEntry{
		{ID: 0, Name: "Missingno", Types: []string{"normal"}, URL: "https://x/0.png"},
		{ID: -3, Name: "Negative", Types: []string{"normal"}, URL: "https://x/n.png"},
		{ID: 2, Name: "   ", Types: []string{"grass"}, URL: "https://x/2.png"},
		{ID: 3, Name: "Venusaur", Types: []string{"grass"}, URL: "https://x/3.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, 3, res.Skipped)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSeed_ImportLimitTruncates(t *testing.T) {
	store := newTestStore(t)
	opts := DefaultOptions()
	opts.ImportLimit = 2
	s := newTestSeeder(t, store, opts)
	ctx := context.Background()

	res, err := s.Seed(ctx, sampleEntries())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)

	_, err = store.Get(ctx, 7)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSeed_PersistenceFailure(t *testing.T) {
	store := &failingStore{}
	s := newTestSeeder(t, store, DefaultOptions())

	_, err := s.Seed(context.Background(), sampleEntries())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSeedPersistence)

	var persistErr *types.SeedPersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, 3, persistErr.Records)
	assert.Equal(t, 3, store.inserted)
}

func TestSeed_RecordsMetrics(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	store := newTestStore(t)
	s := newTestSeeder(t, store, DefaultOptions(), WithMetrics(m))

	_, err = s.Seed(context.Background(), []dataset.RawEntry{
		{ID: 1, Name: "Weedle", Types: []string{"bogus-type"}, URL: "not a url"},
		{ID: 2, Name: "Kakuna", Types: []string{"bug", "poison"}, URL: "https://x/2.png"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeedRuns.WithLabelValues(string(StatusSeeded))))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SeedRecords))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeedAnomalies.WithLabelValues(metrics.AnomalyUnknownType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeedAnomalies.WithLabelValues(metrics.AnomalyInvalidURL)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CatalogRecords))
}
