package board

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/DropBy-app/dropby/errors"
	"github.com/DropBy-app/dropby/logger"
	"github.com/DropBy-app/dropby/tasks"
	"github.com/DropBy-app/dropby/tasks/compose"
	"github.com/DropBy-app/dropby/tasks/store"
)

// Board defines the operations available on the task board.
type Board interface {
	// ListAll returns every task in store order.
	ListAll(ctx context.Context) ([]tasks.Task, error)

	// ListCompleted returns the completed tasks. It holds the same
	// elements as filtering ListAll on Completed.
	ListCompleted(ctx context.Context) ([]tasks.Task, error)

	// Create validates the request and stores a new open task.
	Create(ctx context.Context, req tasks.CreateRequest) (string, error)

	// MarkComplete completes the task. Repeating it is not an error.
	MarkComplete(ctx context.Context, id string, notes string) error

	// Compose drafts a title and estimate for a description.
	Compose(ctx context.Context, description string) (compose.Suggestion, error)
}

// board is the single implementation. Every store call runs under
// storeTimeout and every failure leaves as a TaskError.
type board struct {
	store        store.TaskStore
	composer     compose.Composer
	storeTimeout time.Duration
	logger       *logger.Logger
}

var _ Board = (*board)(nil)

// New constructs a board over the given store and composer. A zero
// storeTimeout means store calls are bounded only by the caller's context.
func New(st store.TaskStore, composer compose.Composer, storeTimeout time.Duration, lg *logger.Logger) Board {
	if composer == nil {
		composer = compose.Disabled{}
	}
	return &board{
		store:        st,
		composer:     composer,
		storeTimeout: storeTimeout,
		logger:       lg,
	}
}

func (b *board) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.storeTimeout)
}

// ListAll returns every task in store order.
func (b *board) ListAll(ctx context.Context) ([]tasks.Task, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	all, err := b.store.List(ctx)
	if err != nil {
		b.logger.Error("failed to list tasks", map[string]any{"error": err.Error()})
		return nil, storeError(err)
	}
	return all, nil
}

// ListCompleted returns the completed tasks.
func (b *board) ListCompleted(ctx context.Context) ([]tasks.Task, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	done, err := b.store.ListCompleted(ctx)
	if err != nil {
		b.logger.Error("failed to list completed tasks", map[string]any{"error": err.Error()})
		return nil, storeError(err)
	}
	return done, nil
}

// Create validates req and stores a new open task. Nothing is written
// when validation fails.
func (b *board) Create(ctx context.Context, req tasks.CreateRequest) (string, error) {
	task, err := tasks.NewTask(req)
	if err != nil {
		b.logger.Warn("rejected task", map[string]any{"error": err.Error()})
		return "", err
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	id, err := b.store.Create(ctx, task)
	if err != nil {
		b.logger.Error("failed to save task", map[string]any{"error": err.Error()})
		return "", storeError(err)
	}

	b.logger.Task(id, "task created", map[string]any{
		"task_type":    task.TaskType.String(),
		"requester":    task.Requester,
		"has_location": task.Location != "",
	})
	return id, nil
}

// MarkComplete completes the task with id. Unknown ids fail with a
// not-found error and change nothing.
func (b *board) MarkComplete(ctx context.Context, id string, notes string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.NewValidationError("task id is required")
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	if err := b.store.MarkComplete(ctx, id, notes); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			b.logger.Task(id, "task to complete not found")
			return errors.NewNotFoundError(fmt.Sprintf("task %s not found", id))
		}
		b.logger.Task(id, "failed to complete task", map[string]any{"error": err.Error()})
		return storeError(err)
	}

	b.logger.Task(id, "task completed", map[string]any{
		"has_notes": strings.TrimSpace(notes) != "",
	})
	return nil
}

// Compose drafts a title and estimate. Composer failures are returned
// unchanged when already classified.
func (b *board) Compose(ctx context.Context, description string) (compose.Suggestion, error) {
	start := time.Now()

	suggestion, err := compose.Compose(ctx, b.composer, description)
	if err != nil {
		b.logger.Warn("compose failed", map[string]any{
			"error":       err.Error(),
			"duration_ns": time.Since(start).Nanoseconds(),
		})
		if _, ok := errors.IsTaskError(err); ok {
			return compose.Suggestion{}, err
		}
		return compose.Suggestion{}, errors.NewTransportError("composer failed", err)
	}

	b.logger.Info("task composed", map[string]any{
		"size":        string(suggestion.Estimate.Size),
		"time":        suggestion.Estimate.Time,
		"duration_ns": time.Since(start).Nanoseconds(),
	})
	return suggestion, nil
}

// storeError classifies a store failure for callers.
func storeError(err error) error {
	if _, ok := errors.IsTaskError(err); ok {
		return err
	}
	return errors.NewTransportError("task store unavailable", err)
}
