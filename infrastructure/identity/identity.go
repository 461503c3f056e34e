// Package identity provides task id generators.
package identity

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/helixml/tasklist/domain/task"
)

// UUID returns a random version 4 UUID string.
func UUID() string {
	return uuid.New().String()
}

// NewUUID returns a generator of random version 4 UUIDs.
func NewUUID() task.IDGenerator {
	return UUID
}

// NewSequence returns a deterministic generator producing prefix-1,
// prefix-2 and so on. It is safe for concurrent use.
func NewSequence(prefix string) task.IDGenerator {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}
