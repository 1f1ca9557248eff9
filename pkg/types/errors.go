package types

import (
	"errors"
	"fmt"
)

// Store lifecycle errors.
var (
	ErrDetached        = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Catalog errors. Callers match these with errors.Is.
var (
	ErrNotFound               = errors.New("creature not found")
	ErrInvalidField           = errors.New("invalid field")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrInvalidID              = errors.New("invalid creature ID")
	ErrUnknownType            = errors.New("unknown creature type")
)

// ErrStaleVersion is returned by Store.Save when the stored version no longer
// matches the version the caller read. The catalog service translates it into
// ErrConcurrentModification.
var ErrStaleVersion = errors.New("stale creature version")

// Seeding errors. Both are fatal for process startup.
var (
	ErrDuplicateIdentifier = errors.New("duplicate identifier in dataset")
	ErrSeedPersistence     = errors.New("seed persistence failed")
)

// Field names reported by InvalidFieldError.
const (
	FieldName       = "name"
	FieldCategories = "categories"
	FieldImage      = "image"
)

// InvalidFieldError reports a client-supplied field that failed validation.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q", e.Field)
}

// Is matches ErrInvalidField.
func (e *InvalidFieldError) Is(target error) bool { return target == ErrInvalidField }

// DuplicateIdentifierError reports identifiers declared more than once in a
// seed dataset.
type DuplicateIdentifierError struct {
	IDs []int64
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate identifier in dataset: %v", e.IDs)
}

// Is matches ErrDuplicateIdentifier.
func (e *DuplicateIdentifierError) Is(target error) bool { return target == ErrDuplicateIdentifier }

// SeedPersistenceError wraps the storage failure that aborted a seed batch.
type SeedPersistenceError struct {
	Records int
	cause   error
}

// NewSeedPersistenceError wraps cause for a batch of n records.
func NewSeedPersistenceError(n int, cause error) *SeedPersistenceError {
	return &SeedPersistenceError{Records: n, cause: cause}
}

func (e *SeedPersistenceError) Error() string {
	return fmt.Sprintf("seed persistence failed for %d records: %v", e.Records, e.cause)
}

// Is matches ErrSeedPersistence.
func (e *SeedPersistenceError) Is(target error) bool { return target == ErrSeedPersistence }

// Unwrap returns the underlying storage error.
func (e *SeedPersistenceError) Unwrap() error { return e.cause }
