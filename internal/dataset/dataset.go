// Package dataset reads external creature datasets and writes catalog exports.
//
// Two encodings are supported: a JSON array (the upstream pokedex.json shape)
// and JSONL, one entry per line. Entries are decoded leniently: upstream field
// spellings (pokedex, name.english, type, image.hires) and the flat export
// spellings (id, name, types, url) are both accepted.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/dexhub/pkg/types"
)

// Format selects a dataset encoding.
type Format int

// Dataset encodings.
const (
	FormatJSON Format = iota
	FormatJSONL
)

// FormatForPath picks the encoding from the file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatJSON
	}
}

// RawEntry is one undecoded-by-policy dataset entry. Nothing here has been
// validated; the seeding pipeline decides what to keep.
type RawEntry struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Types []string `json:"types"`
	URL   string   `json:"url"`
}

// UnmarshalJSON accepts both the upstream and the flat entry shapes.
func (e *RawEntry) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID      *int64          `json:"id"`
		Pokedex *int64          `json:"pokedex"`
		Name    json.RawMessage `json:"name"`
		Type    []string        `json:"type"`
		Types   []string        `json:"types"`
		Image   json.RawMessage `json:"image"`
		URL     string          `json:"url"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*e = RawEntry{}
	switch {
	case aux.ID != nil:
		e.ID = *aux.ID
	case aux.Pokedex != nil:
		e.ID = *aux.Pokedex
	}

	name, err := decodeName(aux.Name)
	if err != nil {
		return fmt.Errorf("decoding name: %w", err)
	}
	e.Name = name

	e.Types = aux.Types
	if e.Types == nil {
		e.Types = aux.Type
	}

	e.URL = aux.URL
	if e.URL == "" {
		url, err := decodeImage(aux.Image)
		if err != nil {
			return fmt.Errorf("decoding image: %w", err)
		}
		e.URL = url
	}
	return nil
}

func decodeName(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if raw[0] == '"' {
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var localized struct {
		English string `json:"english"`
	}
	if err := json.Unmarshal(raw, &localized); err != nil {
		return "", err
	}
	return localized.English, nil
}

func decodeImage(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if raw[0] == '"' {
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var img struct {
		Hires string `json:"hires"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal(raw, &img); err != nil {
		return "", err
	}
	if img.Hires != "" {
		return img.Hires, nil
	}
	return img.URL, nil
}

// FromCreature converts a stored creature into the flat entry shape used by
// exports, so that an export can seed a fresh store.
func FromCreature(c types.Creature) RawEntry {
	tags := make([]string, len(c.Types))
	for i, t := range c.Types {
		tags[i] = string(t)
	}
	return RawEntry{ID: c.ID, Name: c.Name, Types: tags, URL: c.Image.URL}
}

// Dataset is the decoded content of a dataset file.
type Dataset struct {
	Entries []RawEntry

	// Malformed counts entries that could not be decoded at all.
	Malformed int
}

// Load reads the dataset at path, choosing the encoding from its extension.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, err := Decode(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ds, nil
}

// Decode reads a dataset from r. A structurally broken JSON array is an
// error; individual entries that fail to decode are counted in Malformed.
func Decode(r io.Reader, format Format) (*Dataset, error) {
	var (
		records []json.RawMessage
		skipped int
		err     error
	)
	switch format {
	case FormatJSONL:
		records, skipped, err = readJSONL(r)
		if err != nil {
			return nil, err
		}
	default:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("decoding JSON array: %w", err)
		}
	}

	ds := &Dataset{Entries: make([]RawEntry, 0, len(records)), Malformed: skipped}
	for _, rec := range records {
		var e RawEntry
		if err := json.Unmarshal(rec, &e); err != nil {
			ds.Malformed++
			continue
		}
		ds.Entries = append(ds.Entries, e)
	}
	return ds, nil
}

// WriteExport atomically writes creatures to path as JSONL entries.
func WriteExport(path string, creatures []types.Creature) error {
	records := make([]json.RawMessage, 0, len(creatures))
	for _, c := range creatures {
		data, err := json.Marshal(FromCreature(c))
		if err != nil {
			return fmt.Errorf("marshaling creature %d: %w", c.ID, err)
		}
		records = append(records, data)
	}
	return writeJSONL(path, records)
}
