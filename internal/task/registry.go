package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/platform/logger"
)

// Common errors returned by the Registry.
var (
	// ErrTaskAlreadyRunning is returned when Submit is called for a task
	// ID that already has a live execution. Rejected synchronously; a
	// duplicate runner must never mutate the same task row.
	ErrTaskAlreadyRunning = errors.New("task already has a live execution")

	// ErrRegistryClosed is returned when Submit is called after Shutdown.
	ErrRegistryClosed = errors.New("task registry is shut down")
)

// Handle tracks one submitted execution. The HTTP-facing caller never
// blocks on it, but tests and shutdown logic can await completion
// deterministically instead of polling with sleeps.
type Handle struct {
	taskID uuid.UUID
	done   chan struct{}
}

// TaskID returns the identifier of the tracked task.
func (h *Handle) TaskID() uuid.UUID {
	return h.taskID
}

// Done returns a channel closed when the execution finishes.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Registry is the process-wide map from task identifier to its live
// execution. It enforces one active execution per task ID and owns the
// lifetime of the background goroutines it spawns. Construct one at
// process start and pass it to whatever creates tasks; there is no
// package-level instance.
type Registry struct {
	logger *slog.Logger

	// baseCtx parents every execution so an abandoning shutdown can
	// signal in-flight provider calls to stop.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	running map[uuid.UUID]*Handle
	closed  bool
	wg      sync.WaitGroup
}

// NewRegistry creates an empty Registry.
func NewRegistry(log *slog.Logger) (*Registry, error) {
	if log == nil {
		return nil, ErrNilLogger
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		logger:  log.With("component", "task_registry"),
		baseCtx: ctx,
		cancel:  cancel,
		running: make(map[uuid.UUID]*Handle),
	}, nil
}

// Submit starts executing t in the background and returns immediately.
// The returned handle is closed when the execution finishes. Returns
// ErrTaskAlreadyRunning if the task ID already has a live execution and
// ErrRegistryClosed after Shutdown.
func (r *Registry) Submit(t Task) (*Handle, error) {
	if t == nil {
		return nil, errors.New("task cannot be nil")
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	if _, live := r.running[t.ID()]; live {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrTaskAlreadyRunning, t.ID())
	}

	handle := &Handle{taskID: t.ID(), done: make(chan struct{})}
	r.running[t.ID()] = handle
	r.wg.Add(1)
	r.mu.Unlock()

	log := r.logger.With(
		"task_id", t.ID(),
		"task_type", t.Type(),
		"project_id", t.ProjectID(),
	)

	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.running, t.ID())
			r.mu.Unlock()
			close(handle.done)
		}()

		ctx := logger.WithContext(r.baseCtx, log)

		log.Info("task execution started")
		if err := t.Execute(ctx); err != nil {
			// Setup failures are already recorded on the task row by the
			// ledger; nothing propagates beyond this log line.
			log.Error("task execution failed", "error", err)
			return
		}
		log.Info("task execution finished")
	}()

	return handle, nil
}

// IsRunning reports whether the given task ID has a live execution.
func (r *Registry) IsRunning(taskID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, live := r.running[taskID]
	return live
}

// Shutdown stops accepting submissions and waits for in-flight
// executions to drain. If ctx expires first the executions are
// abandoned: their context is cancelled so provider calls stop, and
// Shutdown returns the context error. Tasks are best-effort and
// in-memory; anything abandoned is lost on process restart.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	live := len(r.running)
	r.mu.Unlock()

	r.logger.Info("task registry shutting down", "live_executions", live)

	drained := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		r.logger.Warn("abandoning in-flight task executions", "error", ctx.Err())
		return ctx.Err()
	}
}
