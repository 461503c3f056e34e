// Package dto defines the request and response bodies of the v1 API.
package dto

import "github.com/helixml/tasklist/domain/task"

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Finished  bool   `json:"finished"`
	Editing   bool   `json:"editing"`
	EditValue string `json:"edit_value"`
}

// NewTaskResponse converts a domain task.
func NewTaskResponse(t task.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID(),
		Name:      t.Name(),
		Finished:  t.Finished(),
		Editing:   t.Editing(),
		EditValue: t.EditValue(),
	}
}

// NewTaskResponses converts a slice of domain tasks.
func NewTaskResponses(tasks []task.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}

// TaskEnvelope wraps a single task.
type TaskEnvelope struct {
	Data    TaskResponse `json:"data"`
	Warning string       `json:"warning,omitempty"`
}

// TaskListMeta describes the collection behind a task list.
type TaskListMeta struct {
	Total   int    `json:"total"`
	Visible int    `json:"visible"`
	Filter  string `json:"filter"`
	Draft   string `json:"draft"`
}

// TaskListResponse represents the visible tasks.
type TaskListResponse struct {
	Data []TaskResponse `json:"data"`
	Meta TaskListMeta   `json:"meta"`
}

// CreateTaskRequest creates a task. Without a name the stored draft is used.
type CreateTaskRequest struct {
	Name *string `json:"name,omitempty"`
}

// EditRequest replaces the edit buffer of a task.
type EditRequest struct {
	Text string `json:"text"`
}

// DraftBody carries the new-task draft.
type DraftBody struct {
	Text string `json:"text"`
}

// FilterBody carries the current filter.
type FilterBody struct {
	Filter string `json:"filter"`
}

// WarningResponse reports a change that was applied but not stored.
type WarningResponse struct {
	Warning string `json:"warning"`
}
