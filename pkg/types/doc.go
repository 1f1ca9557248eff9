// Package types defines the creature catalog entities, the type vocabulary,
// the Store interface, and the standard errors shared by the store, the seeding
// pipeline, and the catalog service.
package types
