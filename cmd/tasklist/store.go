package main

import (
	"context"
	"errors"

	"github.com/helixml/tasklist/domain/task"
)

// taskStore is the part of the task store the id commands drive.
type taskStore interface {
	Toggle(ctx context.Context, id string) (task.Task, error)
	EnterEdit(ctx context.Context, id string) (task.Task, error)
	UpdateEditDraft(ctx context.Context, id, text string) (task.Task, error)
	SaveEdit(ctx context.Context, id string) (task.Task, error)
	Duplicate(ctx context.Context, id string) (task.Task, error)
	Delete(ctx context.Context, id string) error
}

// persistenceOnly reports whether err is just a failed write.
func persistenceOnly(err error) bool {
	return errors.Is(err, task.ErrPersistence)
}
