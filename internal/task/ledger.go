package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/redact"
	"github.com/slidesmith/slidesmith-api/internal/store"
)

// Outcome is the per-page result reported to the ledger.
type Outcome int

// Possible outcomes.
const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
)

// Common errors returned by the ProgressLedger.
var (
	ErrNilTaskStore = errors.New("task store cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
)

// ProgressLedger is the single writer of a task row's status and
// progress counters. The backing store has no atomic increment, so the
// ledger serializes the read-modify-write cycle with one mutex per task
// ID; increments from concurrent workers race freely and the final
// aggregate is order-independent.
type ProgressLedger struct {
	store  store.TaskStore
	logger *slog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewProgressLedger creates a ProgressLedger backed by the given store.
func NewProgressLedger(taskStore store.TaskStore, logger *slog.Logger) (*ProgressLedger, error) {
	if taskStore == nil {
		return nil, ErrNilTaskStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &ProgressLedger{
		store:  taskStore,
		logger: logger.With("component", "progress_ledger"),
		locks:  make(map[uuid.UUID]*sync.Mutex),
	}, nil
}

// taskLock returns the mutex guarding the given task's row, creating it
// on first use.
func (l *ProgressLedger) taskLock(taskID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[taskID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[taskID] = lock
	}
	return lock
}

// Release drops the per-task mutex once a task has reached a terminal
// status and no more increments can arrive.
func (l *ProgressLedger) Release(taskID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, taskID)
}

// MarkRunning transitions the task to RUNNING, keeping its counters.
// Called by a runner the instant it begins dispatching page work.
func (l *ProgressLedger) MarkRunning(ctx context.Context, taskID uuid.UUID) error {
	lock := l.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	t, err := l.store.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}

	return l.store.Update(ctx, taskID, domain.TaskStatusRunning, t.Progress, "")
}

// Increment atomically records one page outcome, recomputes the task
// status (RUNNING while pages remain, terminal per the counter rule once
// all pages are accounted for) and persists the row. Safe under
// concurrent invocation from multiple workers of the same task.
func (l *ProgressLedger) Increment(ctx context.Context, taskID uuid.UUID, outcome Outcome) (domain.Progress, error) {
	lock := l.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	t, err := l.store.GetByID(ctx, taskID)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("failed to load task: %w", err)
	}

	progress := t.Progress
	switch outcome {
	case OutcomeSuccess:
		progress.Completed++
	case OutcomeFailure:
		progress.Failed++
	}

	if err := progress.Validate(); err != nil {
		// More increments than pages means a runner bug; refuse to
		// corrupt the row.
		return t.Progress, fmt.Errorf("progress invariant violated for task %s: %w", taskID, err)
	}

	status := domain.TaskStatusRunning
	if progress.Done() {
		status = progress.TerminalStatus()
	}

	if err := l.store.Update(ctx, taskID, status, progress, t.ErrorDetail); err != nil {
		return t.Progress, fmt.Errorf("failed to persist progress: %w", err)
	}

	l.logger.Debug("recorded page outcome",
		"task_id", taskID,
		"status", status,
		"completed", progress.Completed,
		"failed", progress.Failed,
		"total", progress.Total)

	return progress, nil
}

// Finalize settles the task's terminal status from its current counters
// when every page is accounted for. For tasks with pages the last
// Increment has already done this and Finalize is a no-op status
// rewrite; for zero-page tasks it is what produces the immediate
// COMPLETED.
func (l *ProgressLedger) Finalize(ctx context.Context, taskID uuid.UUID) error {
	lock := l.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	t, err := l.store.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}

	if !t.Progress.Done() {
		return fmt.Errorf("task %s finalized with %d of %d pages unaccounted for",
			taskID, t.Progress.Total-t.Progress.Completed-t.Progress.Failed, t.Progress.Total)
	}

	return l.store.Update(ctx, taskID, t.Progress.TerminalStatus(), t.Progress, t.ErrorDetail)
}

// FailSetup records an unrecoverable setup error that occurred before
// any per-page work started: status FAILED, every page counted as
// failed, and the redacted error message stored as the user-visible
// error detail.
func (l *ProgressLedger) FailSetup(ctx context.Context, taskID uuid.UUID, setupErr error) error {
	lock := l.taskLock(taskID)
	lock.Lock()
	defer lock.Unlock()

	t, err := l.store.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}

	progress := domain.Progress{
		Total:     t.Progress.Total,
		Completed: 0,
		Failed:    t.Progress.Total,
	}

	return l.store.Update(ctx, taskID, domain.TaskStatusFailed, progress, redact.Error(setupErr))
}
