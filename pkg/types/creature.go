package types

import (
	"net/url"
	"strings"
)

// Creature is a catalog record keyed by its pokedex number.
type Creature struct {
	ID      int64     `json:"id"`      // Pokedex number, positive and stable once assigned.
	Name    string    `json:"name"`    // Display name (non-blank when written by the catalog).
	Types   []TypeTag `json:"types"`   // Distinct vocabulary tags, canonical order.
	Image   Image     `json:"image"`   // Owned image, created and deleted with the creature.
	Version int64     `json:"version"` // Optimistic concurrency counter, opaque to callers.
}

// Image is the display image owned by exactly one Creature. Its ID is the
// owning creature's ID.
type Image struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// Validate checks the fields a caller may propose for an update. It returns an
// *InvalidFieldError naming the first offending field: name, then categories,
// then image.
func (c *Creature) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &InvalidFieldError{Field: FieldName}
	}
	if len(c.Types) == 0 {
		return &InvalidFieldError{Field: FieldCategories}
	}
	if _, ok := AbsoluteURL(c.Image.URL); !ok {
		return &InvalidFieldError{Field: FieldImage}
	}
	return nil
}

// AbsoluteURL returns raw trimmed and true when it is an absolute URL with a
// host.
func AbsoluteURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", false
	}
	return raw, true
}

// HasType reports whether the creature carries tag.
func (c *Creature) HasType(tag TypeTag) bool {
	for _, t := range c.Types {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (c *Creature) Clone() *Creature {
	cp := *c
	cp.Types = append([]TypeTag(nil), c.Types...)
	return &cp
}
