// Package seed loads an external dataset into an empty catalog exactly once.
//
// Seeding is best-effort per entry and all-or-nothing per batch: malformed
// entries are logged and skipped, anomalies such as unknown types or bad image
// URLs are logged and repaired, but a duplicate identifier anywhere in the
// dataset or a failed batch write aborts the whole seed with nothing written.
//
// The emptiness guard is a plain count. Run Seed before the catalog accepts
// traffic; a concurrent first write between the count and the batch insert is
// not detected.
package seed

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/dexhub/internal/dataset"
	"github.com/mesh-intelligence/dexhub/internal/logging"
	"github.com/mesh-intelligence/dexhub/internal/metrics"
	"github.com/mesh-intelligence/dexhub/pkg/types"
)

// Store is the part of types.Store the seeder needs.
type Store interface {
	Count(ctx context.Context) (int, error)
	InsertAll(ctx context.Context, creatures []types.Creature) error
}

// Status is the outcome of a successful Seed call.
type Status string

// Seed statuses.
const (
	StatusSeeded        Status = "seeded"
	StatusAlreadySeeded Status = "already_seeded"
)

// Result summarizes a seed run.
type Result struct {
	RunID    string
	Status   Status
	Duration time.Duration

	Written           int // creatures persisted
	Skipped           int // entries not persisted (invalid or rejected)
	DroppedTypes      int // unrecognized type tags removed
	EmptyTypeSets     int // creatures written with no types
	DefaultedTypeSets int // creatures given the default type
	PlaceholderImages int // image URLs replaced by the placeholder
}

// Seeder runs the seeding pipeline against a store.
type Seeder struct {
	store   Store
	opts    Options
	logger  *log.Logger
	metrics *metrics.Metrics
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithLogger sets the logger for seed events.
func WithLogger(l *log.Logger) Option {
	return func(s *Seeder) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records seed runs and anomalies in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Seeder) { s.metrics = m }
}

// New creates a Seeder. It returns an error if opts is invalid.
func New(store Store, opts Options, options ...Option) (*Seeder, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed options: %w", err)
	}
	if opts.Policy == "" {
		opts.Policy = PolicyDrop
	}
	s := &Seeder{store: store, opts: opts, logger: log.Default()}
	for _, o := range options {
		o(s)
	}
	s.logger = logging.Component(s.logger, "seed")
	return s, nil
}

// Seed writes entries to the store if the store is empty.
//
// It returns StatusAlreadySeeded without touching the store when any creature
// exists. A *types.DuplicateIdentifierError is returned when an identifier is
// declared more than once, and a *types.SeedPersistenceError when the batch
// write fails; in both cases nothing is written.
func (s *Seeder) Seed(ctx context.Context, entries []dataset.RawEntry) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.NewString()}
	logger := s.logger.With("run", res.RunID)

	n, err := s.store.Count(ctx)
	if err != nil {
		s.metrics.SeedRun("failed", 0)
		return res, fmt.Errorf("counting creatures: %w", err)
	}
	if n > 0 {
		res.Status = StatusAlreadySeeded
		res.Duration = time.Since(start)
		s.metrics.SeedRun(string(StatusAlreadySeeded), 0)
		logger.Info("catalog already seeded", "records", n)
		return res, nil
	}

	if dups := duplicateIDs(entries); len(dups) > 0 {
		s.metrics.SeedRun("failed", 0)
		logger.Error("dataset declares duplicate identifiers", "ids", dups)
		return res, &types.DuplicateIdentifierError{IDs: dups}
	}

	if s.opts.ImportLimit > 0 && len(entries) > s.opts.ImportLimit {
		logger.Info("truncating dataset", "entries", len(entries), "limit", s.opts.ImportLimit)
		entries = entries[:s.opts.ImportLimit]
	}

	creatures := make([]types.Creature, 0, len(entries))
	for _, e := range entries {
		if c, ok := s.transform(logger, e, &res); ok {
			creatures = append(creatures, c)
		}
	}

	if err := s.store.InsertAll(ctx, creatures); err != nil {
		s.metrics.SeedRun("failed", 0)
		logger.Error("seed batch write failed", "records", len(creatures), "err", err)
		return res, types.NewSeedPersistenceError(len(creatures), err)
	}

	res.Status = StatusSeeded
	res.Written = len(creatures)
	res.Duration = time.Since(start)
	s.metrics.SeedRun(string(StatusSeeded), res.Written)
	s.metrics.SetRecords(res.Written)

	logger.Info("seeded catalog",
		"written", res.Written,
		"skipped", res.Skipped,
		"dropped_types", res.DroppedTypes,
		"empty_type_sets", res.EmptyTypeSets,
		"placeholder_images", res.PlaceholderImages,
		"duration", res.Duration,
	)
	return res, nil
}

// transform turns one raw entry into a creature. It reports false when the
// entry must be skipped.
func (s *Seeder) transform(logger *log.Logger, e dataset.RawEntry, res *Result) (types.Creature, bool) {
	if e.ID <= 0 {
		logger.Warn("skipping entry with invalid identifier", "id", e.ID, "name", e.Name)
		s.metrics.SeedAnomaly(metrics.AnomalyInvalidEntry)
		res.Skipped++
		return types.Creature{}, false
	}
	name := strings.TrimSpace(e.Name)
	if name == "" {
		logger.Warn("skipping entry with blank name", "id", e.ID)
		s.metrics.SeedAnomaly(metrics.AnomalyInvalidEntry)
		res.Skipped++
		return types.Creature{}, false
	}

	tags := make([]types.TypeTag, 0, len(e.Types))
	for _, raw := range e.Types {
		tag, ok := types.ParseTag(raw)
		if !ok {
			logger.Warn("unknown type", "id", e.ID, "type", raw)
			s.metrics.SeedAnomaly(metrics.AnomalyUnknownType)
			res.DroppedTypes++
			continue
		}
		tags = append(tags, tag)
	}
	tags = types.NewTypeSet(tags...)

	if len(tags) == 0 {
		switch s.opts.Policy {
		case PolicyReject:
			logger.Warn("rejecting entry with no recognized types", "id", e.ID)
			s.metrics.SeedAnomaly(metrics.AnomalyRejectedEntry)
			res.Skipped++
			return types.Creature{}, false
		case PolicyDefault:
			logger.Warn("no recognized types, using default", "id", e.ID, "type", s.opts.DefaultType)
			s.metrics.SeedAnomaly(metrics.AnomalyEmptyTypeSet)
			tags = []types.TypeTag{s.opts.DefaultType}
			res.DefaultedTypeSets++
		default:
			logger.Warn("no recognized types, creating with empty type set", "id", e.ID)
			s.metrics.SeedAnomaly(metrics.AnomalyEmptyTypeSet)
			res.EmptyTypeSets++
		}
	}

	imageURL, ok := types.AbsoluteURL(e.URL)
	if !ok {
		logger.Warn("invalid image URL, using placeholder", "id", e.ID, "url", e.URL)
		s.metrics.SeedAnomaly(metrics.AnomalyInvalidURL)
		imageURL = s.opts.PlaceholderURL
		res.PlaceholderImages++
	}

	return types.Creature{
		ID:    e.ID,
		Name:  name,
		Types: tags,
		Image: types.Image{ID: e.ID, URL: imageURL},
	}, true
}

// duplicateIDs returns, in ascending order, every positive identifier that
// appears more than once.
func duplicateIDs(entries []dataset.RawEntry) []int64 {
	counts := make(map[int64]int, len(entries))
	for _, e := range entries {
		if e.ID > 0 {
			counts[e.ID]++
		}
	}
	var dups []int64
	for id, n := range counts {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i] < dups[j] })
	return dups
}
