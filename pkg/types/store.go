package types

import "context"

// Store is the persistent keyed storage for creatures and their images.
// Callers attach to a backend, use the store, and detach when done.
type Store interface {
	// Attach connects the store to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	// After Detach, operations return ErrDetached.
	Detach() error

	// Count returns the number of stored creatures.
	Count(ctx context.Context) (int, error)

	// Get returns the creature with the given ID, image and types included.
	// Returns ErrNotFound if absent.
	Get(ctx context.Context, id int64) (*Creature, error)

	// GetImage returns the image owned by the creature with the given ID.
	// Returns ErrNotFound if absent.
	GetImage(ctx context.Context, id int64) (*Image, error)

	// Fetch returns every creature ordered by ID.
	Fetch(ctx context.Context) ([]Creature, error)

	// InsertAll writes creatures and their images in one transaction. Either
	// every creature is written or none is. New creatures start at version 0.
	InsertAll(ctx context.Context, creatures []Creature) error

	// Save replaces name, types, and image of an existing creature if and only
	// if its stored version equals c.Version, incrementing the version in the
	// same atomic step. On success c.Version holds the new version.
	// Returns ErrNotFound if absent and ErrStaleVersion on a version mismatch.
	Save(ctx context.Context, c *Creature) error

	// Delete removes the creature, its types, and its image in one
	// transaction. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}
