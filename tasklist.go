// Package tasklist provides a persistent task list with filtering and inline editing.
//
// The whole collection lives in memory and is written through to a
// key-value backend as a single JSON document after every change.
//
// Basic usage:
//
//	client, err := tasklist.New(
//	    tasklist.WithSQLite(".tasklist/tasks.db"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Add a task from the input draft
//	client.Tasks.SetDraft("buy milk")
//	t, _, err := client.Tasks.Create(ctx)
//
//	// Mark it done and list what is left
//	_, err = client.Tasks.Toggle(ctx, t.ID())
//	for _, t := range client.Tasks.FilteredTasks(task.FilterActive) {
//	    fmt.Println(t.Name())
//	}
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/helixml/tasklist/application/service"
	"github.com/helixml/tasklist/infrastructure/identity"
)

// Client is the main entry point for the tasklist library.
// The Tasks field is always non-nil.
type Client struct {
	// Tasks is the task store.
	Tasks *service.Tasks

	retry   *service.PersistRetry
	closers []io.Closer
	logger  *slog.Logger
	mu      sync.Mutex
	closed  atomic.Bool
}

// New creates a Client with the given options.
// Without a storage option New returns ErrNoStorage.
func New(opts ...Option) (*Client, error) {
	return NewWithContext(context.Background(), opts...)
}

// NewWithContext creates a Client, using ctx while opening storage and
// loading the saved collection.
func NewWithContext(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	closers := cfg.closers
	storage := cfg.storage
	if storage == nil {
		if cfg.storageURL == "" {
			return nil, ErrNoStorage
		}
		s, closer, err := OpenStorage(ctx, cfg.storageURL, logger)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		storage = s
		closers = append([]io.Closer{closer}, closers...)
	}

	ids := cfg.ids
	if ids == nil {
		ids = identity.NewUUID()
	}

	tasks, err := service.NewTasks(ctx, storage, ids,
		service.WithStorageKey(cfg.storageKey),
		service.WithLogger(logger),
	)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create task store: %w", err), closeAll(closers))
	}

	retry := service.NewPersistRetry(tasks, cfg.retry, logger)
	retry.Start(context.WithoutCancel(ctx))

	logger.Debug("tasklist client ready",
		slog.String("storage_key", cfg.storageKey),
		slog.Int("tasks", tasks.Count()),
	)

	return &Client{
		Tasks:   tasks,
		retry:   retry,
		closers: closers,
		logger:  logger,
	}, nil
}

// Close releases the storage backend and any registered resources.
// Calling Close twice returns ErrClientClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.retry.Stop()
	if _, err := c.Tasks.Flush(context.Background()); err != nil {
		c.logger.Warn("tasks not stored before close", slog.Any("error", err))
	}

	if err := closeAll(c.closers); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}

	c.logger.Debug("tasklist client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, closer := range closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
