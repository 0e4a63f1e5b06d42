// Package background runs fire-and-forget tasks outside the request lifecycle.
//
// Tasks get a context detached from the caller's cancellation with their own timeout.
// Failures go to a logged-only sink and are never returned to the submitter.
package background

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned by Submit after Stop was called.
var ErrStopped = errors.New("background dispatcher stopped")

// ErrQueueFull is returned by Submit when the queue has no free slot.
var ErrQueueFull = errors.New("background queue full")

// Task is a unit of best-effort work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Config holds dispatcher configuration.
type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	Logger    *slog.Logger
	// OnFailure is called after a task failure is logged (metrics hook).
	OnFailure func(name string, err error)
}

type Dispatcher struct {
	queue     chan queued
	timeout   time.Duration
	logger    *slog.Logger
	onFailure func(string, error)

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

type queued struct {
	task Task
	ctx  context.Context
}

// New starts the worker pool.
func New(cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		queue:     make(chan queued, cfg.QueueSize),
		timeout:   cfg.Timeout,
		logger:    logger.With("component", "background"),
		onFailure: cfg.OnFailure,
	}
	for range cfg.Workers {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Submit enqueues t without blocking. ctx is used only for its values (trace, logger
// attributes); its cancellation does not reach the task.
func (d *Dispatcher) Submit(ctx context.Context, t Task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	select {
	case d.queue <- queued{task: t, ctx: context.WithoutCancel(ctx)}:
		return nil
	default:
		d.logger.Warn("dropping background task", slog.String("task", t.Name), slog.Any("error", ErrQueueFull))
		d.fail(t.Name, ErrQueueFull)
		return ErrQueueFull
	}
}

// Stop stops accepting tasks and waits for queued ones to finish or ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for q := range d.queue {
		d.run(q)
	}
}

func (d *Dispatcher) run(q queued) {
	ctx, cancel := context.WithTimeout(q.ctx, d.timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("background task panicked", slog.String("task", q.task.Name), slog.Any("panic", rec))
			d.fail(q.task.Name, errors.New("panic"))
		}
	}()

	if err := q.task.Run(ctx); err != nil {
		d.logger.Warn("background task failed", slog.String("task", q.task.Name), slog.Any("error", err))
		d.fail(q.task.Name, err)
	}
}

func (d *Dispatcher) fail(name string, err error) {
	if d.onFailure != nil {
		d.onFailure(name, err)
	}
}
