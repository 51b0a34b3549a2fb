package checklist

import (
	"context"

	"github.com/google/uuid"
)

// Task tracks one background persistence step started by a mutation.
// Callers may wait on it or drop it: every write is a full overwrite, so
// an unobserved task never leaves storage holding a partial state.
type Task struct {
	ID   string
	done chan struct{}
	err  error
}

func newTask() *Task {
	return &Task{ID: uuid.NewString(), done: make(chan struct{})}
}

// completedTask is returned by mutations that have nothing to persist.
func completedTask() *Task {
	t := newTask()
	close(t.done)
	return t
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Done is closed once the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx ends. Storage failures are
// not returned here; they are logged and available through Err.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err reports the storage error swallowed by the task, if any.
// It is only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}
