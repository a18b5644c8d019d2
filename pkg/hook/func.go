package hook

import (
	"context"
	"errors"
)

// Func is a hook that calls functions before and after committing the value T.
type Func[T any] struct {
	// BeforeFn is a function to call before committing the value T.
	//
	// If BeforeFn is nil, it is not called.
	BeforeFn func(context.Context, T) error

	// AfterFn is a function to call after committing the value T.
	//
	// If AfterFn is nil, it is not called.
	AfterFn func(context.Context, T) error
}

func (f Func[T]) Before(ctx context.Context, value T) error {
	return f.call(ctx, f.BeforeFn, value)
}

func (f Func[T]) After(ctx context.Context, value T) error {
	return f.call(ctx, f.AfterFn, value)
}

func (Func[T]) call(ctx context.Context, fn func(context.Context, T) error, value T) error {
	if fn == nil {
		return nil
	}
	if err := fn(ctx, value); err != nil {
		return errors.Join(err, ErrHookFailed)
	}
	return nil
}
