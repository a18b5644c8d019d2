package recurring

import (
	"context"

	"github.com/dashsync/dashsync/pkg/loop"
)

// Return:
//
// - T : same as return value T of github.com/dashsync/dashsync/pkg/loop.Task[T]
//
// - bool : true when this task has changed something in this cycle.
//
// - error : error of this cycle. Policy decides whether it breaks the loop.
type Task[T any] func(context.Context, T) (T, bool, error)

// a Task which execute rt ('rt()') and p.Next() with the result.
func (rt Task[T]) Applied(p Policy) loop.Task[T] {
	return func(ctx context.Context, t T) (T, loop.Next) {
		new, changed, err := rt(ctx, t)
		return new, p.Next(changed, err)
	}
}
