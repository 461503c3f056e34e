package task

import "errors"

// Domain errors.
var (
	// ErrTaskNotFound indicates no task in the collection has the requested id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAlreadyEditing indicates an edit was started on a task already being edited.
	ErrAlreadyEditing = errors.New("task is already being edited")

	// ErrNotEditing indicates an edit operation on a task that is not being edited.
	ErrNotEditing = errors.New("task is not being edited")

	// ErrPersistence indicates the collection changed in memory but could not
	// be written to storage. The change is kept.
	ErrPersistence = errors.New("persist tasks")

	// ErrMalformedBlob indicates stored data is not a valid task collection.
	ErrMalformedBlob = errors.New("malformed task collection")

	// ErrKeyNotFound indicates the storage has no value for a key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidFilter indicates an unrecognised filter name.
	ErrInvalidFilter = errors.New("invalid filter")
)
