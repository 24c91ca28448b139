package store

import (
	"context"

	"github.com/DropBy-app/dropby/tasks"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when an id does not reference a stored task.
var ErrNotFound = errors.New("task not found")

// TaskStore defines the contract for task persistence.
//
// Each call is atomic on a single task. Tasks are never deleted and
// completion is never undone.
type TaskStore interface {
	// List returns every task in insertion order.
	List(ctx context.Context) ([]tasks.Task, error)

	// ListCompleted returns the completed tasks in insertion order.
	ListCompleted(ctx context.Context) ([]tasks.Task, error)

	// Get returns a single task or ErrNotFound.
	Get(ctx context.Context, id string) (*tasks.Task, error)

	// Create stores a new open task. The store assigns the id and creation
	// time, writes them back into task and returns the id.
	Create(ctx context.Context, task *tasks.Task) (string, error)

	// MarkComplete sets completed on the task, replacing its completion
	// notes when notes is non-empty. Returns ErrNotFound for unknown ids.
	MarkComplete(ctx context.Context, id string, notes string) error

	Close() error
}
