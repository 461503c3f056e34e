package tasklist

import (
	"errors"

	"github.com/helixml/tasklist/application/service"
	"github.com/helixml/tasklist/domain/task"
)

// Exported errors for library consumers.
var (
	// ErrNoStorage indicates no storage backend was configured.
	ErrNoStorage = errors.New("tasklist: no storage backend configured")

	// ErrUnsupportedStorage indicates a storage URL with an unknown scheme.
	ErrUnsupportedStorage = errors.New("tasklist: unsupported storage url")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = service.ErrClientClosed

	// ErrNotFound indicates no task has the requested id.
	ErrNotFound = task.ErrTaskNotFound

	// ErrPersistence indicates a change was applied in memory but not stored.
	ErrPersistence = task.ErrPersistence
)
