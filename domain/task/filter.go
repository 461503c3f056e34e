package task

import (
	"fmt"
	"strings"
)

// Filter selects which tasks are visible.
type Filter string

// Filter values.
const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters returns every filter in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

// ParseFilter parses a filter name. The web UI names "todo" and "done" are
// accepted as aliases for active and completed. An empty name means all.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active", "todo":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
}

// String returns the filter name.
func (f Filter) String() string { return string(f) }

// Matches reports whether a task is visible under the filter.
// Unknown filters match everything.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterActive:
		return !t.finished
	case FilterCompleted:
		return t.finished
	default:
		return true
	}
}
