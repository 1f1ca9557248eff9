package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dexhub/pkg/types"
)

const upstreamJSON = `[
  {
    "id": 1,
    "name": {"english": "Bulbasaur", "japanese": "フシギダネ", "french": "Bulbizarre"},
    "type": ["Grass", "Poison"],
    "base": {"HP": 45},
    "image": {"sprite": "s.png", "thumbnail": "t.png", "hires": "https://example.com/hires/1.png"}
  },
  {"pokedex": 4, "name": {"english": "Charmander"}, "type": ["Fire"], "image": {"hires": "https://example.com/hires/4.png"}}
]`

func TestDecodeUpstreamShape(t *testing.T) {
	ds, err := Decode(strings.NewReader(upstreamJSON), FormatJSON)
	require.NoError(t, err)
	require.Len(t, ds.Entries, 2)
	assert.Equal(t, 0, ds.Malformed)

	assert.Equal(t, RawEntry{
		ID:    1,
		Name:  "Bulbasaur",
		Types: []string{"Grass", "Poison"},
		URL:   "https://example.com/hires/1.png",
	}, ds.Entries[0])
	assert.Equal(t, int64(4), ds.Entries[1].ID)
	assert.Equal(t, "Charmander", ds.Entries[1].Name)
}

func TestDecodeFlatShape(t *testing.T) {
	input := `[{"id":1,"name":"Weedle","types":["bogus-type"],"url":"not a url"},
{"id":2,"name":"Kakuna","type":["bug"],"image":"https://example.com/2.png"}]`

	ds, err := Decode(strings.NewReader(input), FormatJSON)
	require.NoError(t, err)
	require.Len(t, ds.Entries, 2)
	assert.Equal(t, RawEntry{ID: 1, Name: "Weedle", Types: []string{"bogus-type"}, URL: "not a url"}, ds.Entries[0])
	assert.Equal(t, "https://example.com/2.png", ds.Entries[1].URL)
}

func TestDecodeCountsMalformedEntries(t *testing.T) {
	tests := []struct {
		name          string
		format        Format
		input         string
		wantEntries   int
		wantMalformed int
	}{
		{
			name:          "array element with wrong id type",
			format:        FormatJSON,
			input:         `[{"id":"one","name":"x"},{"id":2,"name":"Ivysaur"}]`,
			wantEntries:   1,
			wantMalformed: 1,
		},
		{
			name:          "jsonl with broken line",
			format:        FormatJSONL,
			input:         "{\"id\":1,\"name\":\"Bulbasaur\"}\n{not json\n\n{\"id\":2,\"name\":\"Ivysaur\"}\n",
			wantEntries:   2,
			wantMalformed: 1,
		},
		{
			name:          "jsonl line with wrong name type",
			format:        FormatJSONL,
			input:         "{\"id\":1,\"name\":7}\n",
			wantEntries:   0,
			wantMalformed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Decode(strings.NewReader(tt.input), tt.format)
			require.NoError(t, err)
			assert.Len(t, ds.Entries, tt.wantEntries)
			assert.Equal(t, tt.wantMalformed, ds.Malformed)
		})
	}
}

func TestDecodeBrokenArrayFails(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"id":1}`), FormatJSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`{"id":1}`), FormatJSON)
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatJSONL, FormatForPath("dump.jsonl"))
	assert.Equal(t, FormatJSONL, FormatForPath("dump.NDJSON"))
	assert.Equal(t, FormatJSON, FormatForPath("pokedex.json"))
	assert.Equal(t, FormatJSON, FormatForPath("pokedex"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestExportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.jsonl")
	creatures := []types.Creature{
		{ID: 1, Name: "Bulbasaur", Types: []types.TypeTag{types.TypeGrass, types.TypePoison}, Image: types.Image{ID: 1, URL: "https://example.com/1.png"}},
		{ID: 13, Name: "Weedle", Types: []types.TypeTag{}, Image: types.Image{ID: 13, URL: "https://example.com/default.png"}, Version: 3},
	}

	require.NoError(t, WriteExport(path, creatures))

	ds, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Entries, 2)
	assert.Equal(t, FromCreature(creatures[0]), ds.Entries[0])
	assert.Equal(t, int64(13), ds.Entries[1].ID)
	assert.Empty(t, ds.Entries[1].Types)

	// No temp files left behind.
	files, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestExportReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	require.NoError(t, WriteExport(path, []types.Creature{
		{ID: 4, Name: "Charmander", Types: []types.TypeTag{types.TypeFire}, Image: types.Image{ID: 4, URL: "https://example.com/4.png"}},
	}))

	ds, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Entries, 1)
	assert.Zero(t, ds.Malformed)
}

func TestExportFailureRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	// Renaming a file over a non-empty directory fails.
	target := filepath.Join(dir, "occupied")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0o755))

	err := WriteExport(target, []types.Creature{{ID: 1, Name: "Bulbasaur"}})
	require.Error(t, err)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "occupied", files[0].Name())
}
