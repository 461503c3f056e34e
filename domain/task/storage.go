package task

import "context"

// DefaultStorageKey is the key the collection is stored under.
const DefaultStorageKey = "todoStorage"

// Storage is a key-value surface holding serialized blobs.
type Storage interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// IDGenerator returns a new unique task id on each call.
type IDGenerator func() string
