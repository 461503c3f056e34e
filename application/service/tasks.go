package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/helixml/tasklist/domain/task"
)

// idAttempts bounds how often a colliding generated id is retried.
const idAttempts = 3

// View is a consistent snapshot of the store for presentation.
type View struct {
	Tasks  []task.Task
	Total  int
	Filter task.Filter
	Draft  string
}

// TasksOption configures a Tasks store.
type TasksOption func(*Tasks)

// WithStorageKey sets the key the collection is persisted under.
func WithStorageKey(key string) TasksOption {
	return func(s *Tasks) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) TasksOption {
	return func(s *Tasks) {
		if l != nil {
			s.logger = l
		}
	}
}

// Tasks owns the task collection and the view state around it.
//
// Every mutator that changes the collection writes the whole collection to
// storage before returning. When that write fails the in-memory change is
// kept and the returned error wraps task.ErrPersistence.
type Tasks struct {
	mu      sync.RWMutex
	storage task.Storage
	ids     task.IDGenerator
	key     string
	logger  *slog.Logger

	tasks  task.Collection
	draft  string
	filter task.Filter
	dirty  bool
}

// NewTasks creates a store and loads any previously persisted collection.
// Missing or unreadable data leaves the store empty.
func NewTasks(ctx context.Context, storage task.Storage, ids task.IDGenerator, opts ...TasksOption) (*Tasks, error) {
	if storage == nil {
		return nil, errors.New("tasks: storage is required")
	}
	if ids == nil {
		return nil, errors.New("tasks: id generator is required")
	}

	s := &Tasks{
		storage: storage,
		ids:     ids,
		key:     task.DefaultStorageKey,
		logger:  slog.Default(),
		filter:  task.FilterAll,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tasks = s.load(ctx)
	return s, nil
}

func (s *Tasks) load(ctx context.Context) task.Collection {
	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, task.ErrKeyNotFound) {
		s.logger.Debug("no stored tasks", slog.String("key", s.key))
		return task.Collection{}
	}
	if err != nil {
		s.logger.Warn("failed to read stored tasks, starting empty",
			slog.String("key", s.key),
			slog.Any("error", err),
		)
		return task.Collection{}
	}

	c, err := task.UnmarshalCollection(data)
	if err != nil {
		s.logger.Warn("stored tasks are malformed, starting empty",
			slog.String("key", s.key),
			slog.Any("error", err),
		)
		return task.Collection{}
	}

	s.logger.Debug("loaded tasks", slog.String("key", s.key), slog.Int("count", c.Len()))
	return c
}

// commit installs next as the current collection and persists it.
// Callers must hold the write lock.
func (s *Tasks) commit(ctx context.Context, next task.Collection) error {
	s.tasks = next
	return s.persist(ctx)
}

// persist writes the current collection and tracks whether storage is behind.
func (s *Tasks) persist(ctx context.Context) error {
	s.dirty = true

	data, err := task.MarshalCollection(s.tasks)
	if err != nil {
		s.logger.Warn("failed to encode tasks", slog.Any("error", err))
		return fmt.Errorf("%w: encode: %w", task.ErrPersistence, err)
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("failed to persist tasks, keeping in-memory changes",
			slog.String("key", s.key),
			slog.Int("count", s.tasks.Len()),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %w", task.ErrPersistence, err)
	}
	s.dirty = false
	return nil
}

// Dirty reports whether the last write failed, leaving storage behind memory.
func (s *Tasks) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Flush retries a failed write. It reports whether a write was attempted.
func (s *Tasks) Flush(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return false, nil
	}
	if err := s.persist(ctx); err != nil {
		return true, err
	}
	s.logger.Info("stored tasks after earlier failure", slog.Int("count", s.tasks.Len()))
	return true, nil
}

func (s *Tasks) newID() (string, error) {
	for range idAttempts {
		id := s.ids()
		if id != "" && s.tasks.IndexOf(id) < 0 {
			return id, nil
		}
	}
	return "", ErrDuplicateID
}

// SetDraft replaces the pending new-task text. It is never persisted.
func (s *Tasks) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Draft returns the pending new-task text.
func (s *Tasks) Draft() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// Create appends a task named after the current draft and clears the draft.
// An empty or whitespace-only draft is a no-op and reports created=false.
func (s *Tasks) Create(ctx context.Context) (task.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(ctx)
}

// CreateFrom sets the draft to text and then creates from it. Blank text is
// a no-op that leaves the current draft untouched.
func (s *Tasks) CreateFrom(ctx context.Context, text string) (task.Task, bool, error) {
	if strings.TrimSpace(text) == "" {
		return task.Task{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
	return s.create(ctx)
}

func (s *Tasks) create(ctx context.Context) (task.Task, bool, error) {
	if strings.TrimSpace(s.draft) == "" {
		return task.Task{}, false, nil
	}

	id, err := s.newID()
	if err != nil {
		return task.Task{}, false, err
	}

	t := task.NewTask(id, s.draft)
	s.draft = ""
	s.logger.Debug("task created", slog.String("task_id", id))
	return t, true, s.commit(ctx, s.tasks.Append(t))
}

// Toggle flips the finished flag of a task.
func (s *Tasks) Toggle(ctx context.Context, id string) (task.Task, error) {
	return s.update(ctx, id, "task toggled", func(t task.Task) (task.Task, error) {
		return t.Toggled(), nil
	})
}

// EnterEdit puts a task into edit mode with the edit buffer seeded from its name.
func (s *Tasks) EnterEdit(ctx context.Context, id string) (task.Task, error) {
	return s.update(ctx, id, "task edit started", task.Task.BeginEdit)
}

// UpdateEditDraft replaces the edit buffer of a task being edited.
func (s *Tasks) UpdateEditDraft(ctx context.Context, id, text string) (task.Task, error) {
	return s.update(ctx, id, "task edit draft updated", func(t task.Task) (task.Task, error) {
		return t.WithEditValue(text)
	})
}

// CancelEdit leaves edit mode and discards the edit buffer.
func (s *Tasks) CancelEdit(ctx context.Context, id string) (task.Task, error) {
	return s.update(ctx, id, "task edit cancelled", task.Task.CancelEdit)
}

// SaveEdit leaves edit mode and commits the edit buffer as the name.
func (s *Tasks) SaveEdit(ctx context.Context, id string) (task.Task, error) {
	return s.update(ctx, id, "task edit saved", task.Task.SaveEdit)
}

func (s *Tasks) update(ctx context.Context, id, msg string, fn func(task.Task) (task.Task, error)) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, updated, err := s.tasks.Update(id, fn)
	if err != nil {
		return task.Task{}, err
	}
	s.logger.Debug(msg, slog.String("task_id", id))
	return updated, s.commit(ctx, next)
}

// Duplicate appends a copy of a task under a new id. Every other field,
// including edit state, is copied as it is now.
func (s *Tasks) Duplicate(ctx context.Context, id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.tasks.Find(id)
	if err != nil {
		return task.Task{}, err
	}
	newID, err := s.newID()
	if err != nil {
		return task.Task{}, err
	}

	dup := src.WithID(newID)
	s.logger.Debug("task duplicated", slog.String("task_id", id), slog.String("copy_id", newID))
	return dup, s.commit(ctx, s.tasks.Append(dup))
}

// Delete removes a task.
func (s *Tasks) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, _, err := s.tasks.Remove(id)
	if err != nil {
		return err
	}
	s.logger.Debug("task deleted", slog.String("task_id", id))
	return s.commit(ctx, next)
}

// Get returns a single task.
func (s *Tasks) Get(id string) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.Find(id)
}

// Tasks returns every task in insertion order.
func (s *Tasks) Tasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.Tasks()
}

// Count returns the size of the full collection regardless of filter.
func (s *Tasks) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.Len()
}

// FilteredTasks returns the tasks visible under f in insertion order.
func (s *Tasks) FilteredTasks(f task.Filter) []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.Filter(f)
}

// SetFilter changes the current filter. It is never persisted.
func (s *Tasks) SetFilter(f task.Filter) error {
	parsed, err := task.ParseFilter(string(f))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = parsed
	return nil
}

// Filter returns the current filter.
func (s *Tasks) Filter() task.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Visible returns the tasks visible under the current filter.
func (s *Tasks) Visible() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.Filter(s.filter)
}

// View returns the visible tasks along with the view state in one snapshot.
func (s *Tasks) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view(s.filter)
}

// ViewWith is View with f in place of the current filter. The stored filter
// is not changed.
func (s *Tasks) ViewWith(f task.Filter) View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view(f)
}

func (s *Tasks) view(f task.Filter) View {
	return View{
		Tasks:  s.tasks.Filter(f),
		Total:  s.tasks.Len(),
		Filter: f,
		Draft:  s.draft,
	}
}
