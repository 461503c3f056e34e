package service

import "errors"

var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("tasklist: client is closed")

	// ErrDuplicateID indicates the id generator returned an id that is already in use.
	ErrDuplicateID = errors.New("generated task id already in use")
)
