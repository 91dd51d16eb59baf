package memory

import (
	"context"
)

// Store is one role's similarity-indexed memory.
type Store interface {
	// Query returns up to k recommendations, most similar situation first.
	// An empty store returns an empty slice and no error.
	Query(ctx context.Context, situation string, k int) ([]string, error)

	// Add appends pairs; ids are assigned by insertion offset.
	Add(ctx context.Context, pairs []Pair) error

	// Count returns the number of records in the store.
	Count(ctx context.Context) (int, error)
}

// StoreFactory builds the store of one role.
type StoreFactory func(role Role) (Store, error)
