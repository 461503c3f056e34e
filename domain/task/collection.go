package task

import "fmt"

// Collection is an ordered, immutable sequence of tasks.
// Insertion order is the canonical order. Every operation returns a new
// Collection with its own backing array.
type Collection struct {
	tasks []Task
}

// NewCollection creates a Collection from tasks, copying the slice.
func NewCollection(tasks ...Task) Collection {
	return Collection{tasks: clone(tasks)}
}

// Len returns the number of tasks.
func (c Collection) Len() int { return len(c.tasks) }

// Tasks returns a copy of the tasks in order.
func (c Collection) Tasks() []Task {
	return clone(c.tasks)
}

// IndexOf returns the position of the first task with id, or -1.
func (c Collection) IndexOf(id string) int {
	for i, t := range c.tasks {
		if t.id == id {
			return i
		}
	}
	return -1
}

// Find returns the first task with id.
func (c Collection) Find(id string) (Task, error) {
	i := c.IndexOf(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return c.tasks[i], nil
}

// Append returns a new Collection with t at the end.
func (c Collection) Append(t Task) Collection {
	out := make([]Task, len(c.tasks), len(c.tasks)+1)
	copy(out, c.tasks)
	return Collection{tasks: append(out, t)}
}

// Replace returns a new Collection where the first task with t's id is
// swapped for t, keeping its position.
func (c Collection) Replace(t Task) (Collection, error) {
	i := c.IndexOf(t.id)
	if i < 0 {
		return c, fmt.Errorf("%w: %s", ErrTaskNotFound, t.id)
	}
	out := clone(c.tasks)
	out[i] = t
	return Collection{tasks: out}, nil
}

// Update applies fn to the first task with id and stores the result in place.
// The collection is returned unchanged when fn fails.
func (c Collection) Update(id string, fn func(Task) (Task, error)) (Collection, Task, error) {
	current, err := c.Find(id)
	if err != nil {
		return c, Task{}, err
	}
	updated, err := fn(current)
	if err != nil {
		return c, current, err
	}
	next, err := c.Replace(updated)
	if err != nil {
		return c, current, err
	}
	return next, updated, nil
}

// Remove returns a new Collection without the first task with id.
func (c Collection) Remove(id string) (Collection, Task, error) {
	i := c.IndexOf(id)
	if i < 0 {
		return c, Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	removed := c.tasks[i]
	out := make([]Task, 0, len(c.tasks)-1)
	out = append(out, c.tasks[:i]...)
	out = append(out, c.tasks[i+1:]...)
	return Collection{tasks: out}, removed, nil
}

// Filter returns the tasks visible under f in their original relative order.
func (c Collection) Filter(f Filter) []Task {
	out := make([]Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Count returns how many tasks are visible under f.
func (c Collection) Count(f Filter) int {
	n := 0
	for _, t := range c.tasks {
		if f.Matches(t) {
			n++
		}
	}
	return n
}

// Validate checks that every task id is unique.
func (c Collection) Validate() error {
	seen := make(map[string]struct{}, len(c.tasks))
	for _, t := range c.tasks {
		if _, ok := seen[t.id]; ok {
			return fmt.Errorf("duplicate task id %q", t.id)
		}
		seen[t.id] = struct{}{}
	}
	return nil
}

func clone(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
