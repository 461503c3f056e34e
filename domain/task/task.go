// Package task provides the task list domain types.
package task

// Task is a single entry in the task list.
//
// A Task is either being viewed or being edited. While editing, the
// scratch text lives in EditValue and Name keeps the committed text until
// the edit is saved. EditValue is empty whenever Editing is false.
type Task struct {
	id        string
	name      string
	finished  bool
	edit      bool
	editValue string
}

// NewTask creates an unfinished, non-editing Task.
func NewTask(id, name string) Task {
	return Task{
		id:   id,
		name: name,
	}
}

// NewTaskWithState reconstructs a Task with every field set (used by the codec).
func NewTaskWithState(id, name string, finished, edit bool, editValue string) Task {
	return Task{
		id:        id,
		name:      name,
		finished:  finished,
		edit:      edit,
		editValue: editValue,
	}
}

// ID returns the task identifier.
func (t Task) ID() string { return t.id }

// Name returns the committed task text.
func (t Task) Name() string { return t.name }

// Finished reports whether the task is completed.
func (t Task) Finished() bool { return t.finished }

// Editing reports whether the task is in edit mode.
func (t Task) Editing() bool { return t.edit }

// EditValue returns the in-progress edit text.
func (t Task) EditValue() string { return t.editValue }

// IsZero reports whether t is the zero Task.
func (t Task) IsZero() bool { return t == Task{} }

// Toggled returns a copy with the finished flag flipped.
func (t Task) Toggled() Task {
	t.finished = !t.finished
	return t
}

// WithID returns a copy with a different identifier and every other field kept.
func (t Task) WithID(id string) Task {
	t.id = id
	return t
}

// BeginEdit returns a copy in edit mode with the edit buffer seeded from the name.
func (t Task) BeginEdit() (Task, error) {
	if t.edit {
		return t, ErrAlreadyEditing
	}
	t.edit = true
	t.editValue = t.name
	return t, nil
}

// WithEditValue returns a copy with the edit buffer replaced.
func (t Task) WithEditValue(text string) (Task, error) {
	if !t.edit {
		return t, ErrNotEditing
	}
	t.editValue = text
	return t, nil
}

// CancelEdit returns a copy back in view mode with the name untouched.
func (t Task) CancelEdit() (Task, error) {
	if !t.edit {
		return t, ErrNotEditing
	}
	t.edit = false
	t.editValue = ""
	return t, nil
}

// SaveEdit returns a copy back in view mode with the edit buffer committed
// as the name. An empty buffer is committed as an empty name.
func (t Task) SaveEdit() (Task, error) {
	if !t.edit {
		return t, ErrNotEditing
	}
	t.name = t.editValue
	t.edit = false
	t.editValue = ""
	return t, nil
}
