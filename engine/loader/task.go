package loader

import (
	"context"
	"sync/atomic"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Task is the handle of an asynchronous load. The result is available once Done is closed.
type Task[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Done returns a channel closed when the task has finished.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Await blocks until the task finishes or ctx is cancelled.
//
// Parameters:
//   - ctx: bounds the wait
//
// Returns:
//   - T: the loaded value
//   - error: the load error, or ctx.Err() if the wait was cancelled
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Resolved creates a finished task, for callers that already hold the value.
func Resolved[T any](value T, err error) *Task[T] {
	t := &Task[T]{done: make(chan struct{}), value: value, err: err}
	close(t.done)
	return t
}

var taskIDs atomic.Int64

// submit runs fn on the worker pool and returns its task handle.
func submit[T any](pool worker.DynamicWorkerPool, fn func() (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	pool.SubmitTask(worker.Task{
		ID: int(taskIDs.Add(1)),
		Do: func() (any, error) {
			defer close(t.done)
			t.value, t.err = fn()
			return t.value, t.err
		},
	})
	return t
}
