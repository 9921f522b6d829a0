// Package worker runs post-acknowledgment work detached from the HTTP
// request that produced it.
package worker

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Dispatcher executes fire-and-forget tasks with their own error
// boundary. A task's outcome is never reported to whoever submitted
// it; panics and errors end at the log.
type Dispatcher struct {
	wg          sync.WaitGroup
	taskTimeout time.Duration
	logger      *slog.Logger
}

func NewDispatcher(taskTimeout time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		taskTimeout: taskTimeout,
		logger:      logger,
	}
}

// Submit runs the task on its own goroutine with a context detached
// from any request. The caller returns immediately.
func (d *Dispatcher) Submit(name string, task func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				d.logger.Error("panic in background task",
					"task", name,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.taskTimeout)
		defer cancel()

		task(ctx)
	}()
}

// Drain waits for in-flight tasks to finish or the context to expire.
// Used during shutdown so a slow status query or email send gets a
// bounded chance to complete.
func (d *Dispatcher) Drain(ctx context.Context) error {
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
