// Package loop runs a task repeatedly, with the task itself deciding
// whether and when it runs again.
package loop

import (
	"context"
	"fmt"
	"time"
)

// Next is what a Task wants after it has run: Continue or Break.
type Next struct {
	// if not nil, breaks with error
	err error

	// if quit == true and err == nil, breaks without error
	quit bool

	// otherwise, continue loop with interval.
	interval time.Duration
}

func (n Next) String() string {
	if n.err != nil {
		return fmt.Sprintf("[break] with error: %v", n.err)
	}
	if n.quit {
		return "[break] without error"
	}

	return fmt.Sprintf("[continue] interval: %s", n.interval)
}

// Interval returns the sleep before the next run, and whether the loop continues.
func (n Next) Interval() (time.Duration, bool) {
	if n.quit {
		return 0, false
	}
	return n.interval, true
}

// continue loop.
//
// args:
//
// - interval: sleep before starting next task.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// break loop.
//
// args:
//
// - err: If you break loop with error, set non nil value.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task receives the context for this run and the value the last run has returned.
type Task[T any] func(context.Context, T) (T, Next)

// Start task in loop.
//
// The first run starts immediately. After that, the task is run again
// after the interval it has requested by Continue, until it returns Break or ctx is done.
//
// Zero value (Next{}) equals Continue(0), that is, "go next ASAP!".
//
// # Example
//
// Count passes which have changed the document, every 10 minutes:
//
//	Start(ctx, 0, func(ctx context.Context, changed int) (int, Next) {
//		report, err := runner.Run(ctx)
//		if err != nil {
//			return changed, Break(err)
//		}
//		if report.Changed {
//			changed += 1
//		}
//		return changed, Continue(10 * time.Minute)
//	})
//
// # Args
//
// - ctx : When this context get be Done, loop will be break with ctx.Err().
//
// - init : your task will be called as task(ctx, init) at the first time.
//
// - task : task receiving (context, last value), then return (new value, Continue() or Break()).
//
// - options: options for each run.
//
// # Returns
//
// - T: T task returns at last.
// This value is always returned wheather or not it returns non-nil error together.
//
// - error: error in Break(error). It is nil when loop breaks with Break(nil).
func Start[T any](ctx context.Context, init T, task Task[T], options ...LoopOption) (T, error) {
	select {
	case <-ctx.Done():
		return init, ctx.Err()
	default:
	}

	value := init
	for {
		lc := &loopConfig{ctx: ctx}
		for _, opt := range options {
			lc = opt(lc)
		}

		v, n := func() (T, Next) {
			if lc.deferred != nil {
				defer lc.deferred()
			}
			return task(lc.ctx, value)
		}()

		if n.err != nil {
			return v, n.err
		} else if n.quit {
			return v, nil
		}
		value = v

		timer := time.NewTimer(n.interval)
		select {
		case <-ctx.Done():
			// shutting down comes first.
			if !timer.Stop() {
				<-timer.C
			}
			return value, ctx.Err()

		case <-timer.C:
			continue
		}
	}
}

type loopConfig struct {
	ctx      context.Context
	deferred func()
}

type LoopOption func(*loopConfig) *loopConfig

// set timeout per run
//
// this timeout is set on context.Context passed to task.
func WithTimeout(d time.Duration) LoopOption {
	return func(lc *loopConfig) *loopConfig {
		ctx, cancel := context.WithTimeout(lc.ctx, d)
		return &loopConfig{
			ctx: ctx,
			deferred: func() {
				if lc.deferred != nil {
					defer lc.deferred()
				}
				cancel()
			},
		}
	}
}
