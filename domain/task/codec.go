package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Record is the serialized shape of a Task.
type Record struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Finished  bool   `json:"finished" yaml:"finished"`
	Edit      bool   `json:"edit" yaml:"edit"`
	EditValue string `json:"editValue" yaml:"editValue"`
}

// strictRecord uses pointers so that missing keys can be told apart from zero values.
type strictRecord struct {
	ID        *string `json:"id"`
	Name      *string `json:"name"`
	Finished  *bool   `json:"finished"`
	Edit      *bool   `json:"edit"`
	EditValue *string `json:"editValue"`
}

// ToRecord converts a Task to its serialized shape.
func ToRecord(t Task) Record {
	return Record{
		ID:        t.id,
		Name:      t.name,
		Finished:  t.finished,
		Edit:      t.edit,
		EditValue: t.editValue,
	}
}

// FromRecord converts a serialized record back to a Task.
func FromRecord(r Record) Task {
	return NewTaskWithState(r.ID, r.Name, r.Finished, r.Edit, r.EditValue)
}

// Records converts tasks to their serialized shape.
func Records(tasks []Task) []Record {
	out := make([]Record, len(tasks))
	for i, t := range tasks {
		out[i] = ToRecord(t)
	}
	return out
}

// MarshalCollection encodes the full collection as a JSON array.
func MarshalCollection(c Collection) ([]byte, error) {
	return json.Marshal(Records(c.tasks))
}

// UnmarshalCollection decodes a JSON array of task records. Anything that
// does not have exactly the record shape, or repeats an id, is rejected with
// ErrMalformedBlob.
func UnmarshalCollection(data []byte) (Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return Collection{}, fmt.Errorf("%w: expected a JSON array", ErrMalformedBlob)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var raw []strictRecord
	if err := dec.Decode(&raw); err != nil {
		return Collection{}, fmt.Errorf("%w: %w", ErrMalformedBlob, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Collection{}, fmt.Errorf("%w: trailing data", ErrMalformedBlob)
	}

	tasks := make([]Task, 0, len(raw))
	for i, r := range raw {
		if r.ID == nil || r.Name == nil || r.Finished == nil || r.Edit == nil || r.EditValue == nil {
			return Collection{}, fmt.Errorf("%w: record %d is missing fields", ErrMalformedBlob, i)
		}
		tasks = append(tasks, NewTaskWithState(*r.ID, *r.Name, *r.Finished, *r.Edit, *r.EditValue))
	}

	c := Collection{tasks: tasks}
	if err := c.Validate(); err != nil {
		return Collection{}, fmt.Errorf("%w: %w", ErrMalformedBlob, err)
	}
	return c, nil
}
