// Hooks notified around saving the document.
package hook

import (
	"context"
	"errors"

	cfg_hook "github.com/dashsync/dashsync/pkg/configs/hook"
)

// Hook is an interface for before/after hooks.
type Hook[T any] interface {
	// Before is called before the value T is committed.
	//
	// When it returns error, the value should not be committed.
	Before(context.Context, T) error

	// After is called after the value T is committed.
	After(context.Context, T) error
}

var ErrHookFailed = errors.New("hook failed")

// Build returns a Web hook for cfg, or None when cfg has no URLs.
func Build[T any](cfg cfg_hook.WebHook) Hook[T] {
	if cfg.Empty() {
		return None[T]{}
	}
	return Web[T]{
		BeforeURL: cfg.Before,
		AfterURL:  cfg.After,
	}
}

// None does nothing, and never refuses.
type None[T any] struct{}

func (None[T]) Before(context.Context, T) error { return nil }

func (None[T]) After(context.Context, T) error { return nil }
