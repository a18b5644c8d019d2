// Contexts bound to the lifetime of a test.
package context

import (
	"context"
	"testing"
	"time"
)

// margin left between the context deadline and the test deadline.
const cleanupMargin = time.Second

// WithTest derives a context which is done a little before the test times out,
// so that the test can report what it has been waiting for instead of panicking by `go test -timeout`.
//
// The context is cancelled also when the test ends.
func WithTest(ctx context.Context, t *testing.T) (context.Context, func()) {
	var cancel func()
	if deadline, ok := t.Deadline(); ok {
		ctx, cancel = context.WithDeadline(ctx, deadline.Add(-cleanupMargin))
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	t.Cleanup(cancel)
	return ctx, cancel
}
