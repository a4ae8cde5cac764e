package repository

import (
	"context"
	"errors"
)

// ErrNoDocument is returned by Load when no document exists under the
// requested (collection, name) pair.
var ErrNoDocument = errors.New("no such document")

// Store persists item documents keyed by collection and item name. A
// document is the raw attribute mapping of one item, containers nested
// as plain maps and lists.
type Store interface {
	// Load returns the document stored under (collection, name).
	Load(ctx context.Context, collection, name string) (map[string]any, error)

	// Save writes the document under (collection, name), replacing any
	// previous version.
	Save(ctx context.Context, collection, name string, doc map[string]any) error

	// Delete removes the document stored under (collection, name).
	// Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, name string) error

	// Names lists the item names present in a collection, sorted.
	Names(ctx context.Context, collection string) ([]string, error)

	// Close releases resources.
	Close() error
}
