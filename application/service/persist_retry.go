package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Flusher retries failed writes of a task collection.
type Flusher interface {
	Flush(ctx context.Context) (bool, error)
}

// PersistRetry periodically retries storing the collection after a failed
// write, so changes kept in memory reach storage once it recovers.
type PersistRetry struct {
	tasks    Flusher
	logger   *slog.Logger
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPersistRetry creates a PersistRetry. A non-positive interval disables it.
func NewPersistRetry(tasks Flusher, interval time.Duration, logger *slog.Logger) *PersistRetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistRetry{
		tasks:    tasks,
		logger:   logger,
		interval: interval,
	}
}

// Start begins retrying in a background goroutine.
// If disabled or already running, this is a no-op.
func (p *PersistRetry) Start(ctx context.Context) {
	if p.interval <= 0 {
		p.logger.Debug("persist retry disabled")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Go(func() {
		p.run(ctx)
	})

	p.logger.Debug("persist retry started", slog.Duration("interval", p.interval))
}

// Stop cancels the background goroutine and waits for it to finish.
func (p *PersistRetry) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *PersistRetry) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.flush(ctx)
		}
	}
}

func (p *PersistRetry) flush(ctx context.Context) {
	attempted, err := p.tasks.Flush(ctx)
	if err != nil && ctx.Err() == nil {
		p.logger.Debug("persist retry failed", slog.Any("error", err))
		return
	}
	if attempted && err == nil {
		p.logger.Debug("persist retry succeeded")
	}
}
