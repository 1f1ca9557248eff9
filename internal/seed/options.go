package seed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/dexhub/pkg/types"
)

// Policy decides what happens to an entry none of whose declared types is in
// the vocabulary.
type Policy string

// Empty type set policies.
const (
	// PolicyDrop creates the creature with an empty type set and logs it.
	PolicyDrop Policy = "drop"
	// PolicyDefault substitutes Options.DefaultType.
	PolicyDefault Policy = "default"
	// PolicyReject skips the entry.
	PolicyReject Policy = "reject"
)

// Defaults. The import limit is the size of the first-generation pokedex.
const (
	DefaultImportLimit    = 151
	DefaultPlaceholderURL = "https://example.com/default.png"
)

// Option validation errors.
var (
	ErrUnknownPolicy      = errors.New("unknown category policy")
	ErrInvalidPlaceholder = errors.New("placeholder URL must be absolute")
	ErrInvalidDefaultType = errors.New("default type is not in the vocabulary")
	ErrInvalidImportLimit = errors.New("import limit must not be negative")
)

// Options configures a Seeder.
type Options struct {
	// ImportLimit caps the number of dataset entries considered, in dataset
	// order. Zero means no limit.
	ImportLimit int

	// PlaceholderURL replaces image URLs that do not parse as absolute URLs.
	PlaceholderURL string

	// Policy handles entries left with no recognized types.
	Policy Policy

	// DefaultType is substituted under PolicyDefault.
	DefaultType types.TypeTag
}

// DefaultOptions returns drop-and-log seeding of the first 151 entries.
func DefaultOptions() Options {
	return Options{
		ImportLimit:    DefaultImportLimit,
		PlaceholderURL: DefaultPlaceholderURL,
		Policy:         PolicyDrop,
		DefaultType:    types.TypeNormal,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.ImportLimit < 0 {
		return ErrInvalidImportLimit
	}
	if _, ok := types.AbsoluteURL(o.PlaceholderURL); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPlaceholder, o.PlaceholderURL)
	}
	if _, err := ParsePolicy(string(o.Policy)); err != nil {
		return err
	}
	if o.Policy == PolicyDefault && !types.IsValidTag(string(o.DefaultType)) {
		return fmt.Errorf("%w: %q", ErrInvalidDefaultType, o.DefaultType)
	}
	return nil
}

// ParsePolicy converts a configuration value to a Policy. Matching is
// case-insensitive; an empty value is PolicyDrop.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyDrop, nil
	case PolicyDrop, PolicyDefault, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}
