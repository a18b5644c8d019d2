package filewatch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dashsync/dashsync/pkg/utils/filewatch"
	"github.com/dashsync/dashsync/pkg/utils/try"
)

// waitDone waits ctx to be done until the deadline of the test, and reports whether it is done.
func waitDone(t *testing.T, ctx context.Context) bool {
	t.Helper()
	deadlineCh := make(<-chan time.Time)
	if dl, ok := t.Deadline(); ok {
		deadlineCh = time.After(time.Until(dl) - 1*time.Second)
	}
	select {
	case <-ctx.Done():
		return true
	case <-deadlineCh:
		return false
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if f, err := os.Create(path); err != nil {
		t.Fatal(err)
	} else {
		f.Close()
	}
}

func TestUntilModifyContext(t *testing.T) {
	type When struct {
		// files created before watching, in the temp dir.
		existing []string

		// what to watch. relative to the temp dir.
		watch string

		// modification after watching
		modify func(t *testing.T, dir string)
	}

	theory := func(when When) func(*testing.T) {
		return func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range when.existing {
				touch(t, filepath.Join(dir, f))
			}

			ctx, cancel, err := filewatch.UntilModifyContext(
				context.Background(), filepath.Join(dir, when.watch),
			)
			if err != nil {
				t.Fatal(err)
			}
			defer cancel()

			if err := ctx.Err(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			when.modify(t, dir)

			if !waitDone(t, ctx) {
				t.Fatal("context is not cancelled")
			}
			if cause := context.Cause(ctx); !errors.Is(cause, filewatch.ErrModified) {
				t.Errorf("unexpected cause: %v", cause)
			}
		}
	}

	t.Run("when a file is created in a watched directory, it cancels context", theory(When{
		watch: ".",
		modify: func(t *testing.T, dir string) {
			touch(t, filepath.Join(dir, "file"))
		},
	}))

	t.Run("when a watched file is written, it cancels context", theory(When{
		existing: []string{"dashsync.yml"},
		watch:    "dashsync.yml",
		modify: func(t *testing.T, dir string) {
			try.To(struct{}{}, os.WriteFile(filepath.Join(dir, "dashsync.yml"), []byte("interval: 1m"), 0o644)).OrFatal(t)
		},
	}))

	t.Run("when the watched file is deleted, it cancels context", theory(When{
		existing: []string{"dashsync.yml"},
		watch:    "dashsync.yml",
		modify: func(t *testing.T, dir string) {
			try.To(struct{}{}, os.Remove(filepath.Join(dir, "dashsync.yml"))).OrFatal(t)
		},
	}))

	t.Run("when the watched file is replaced by rename, it cancels context", theory(When{
		existing: []string{"dashsync.yml", "dashsync.yml.new"},
		watch:    "dashsync.yml",
		modify: func(t *testing.T, dir string) {
			try.To(struct{}{}, os.Rename(
				filepath.Join(dir, "dashsync.yml.new"), filepath.Join(dir, "dashsync.yml"),
			)).OrFatal(t)
		},
	}))
}

func TestUntilModifyContext_NotModified(t *testing.T) {
	t.Run("when nothing is modified, context is alive until cancelled", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "dashsync.yml")
		touch(t, file)

		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), file, "")
		if err != nil {
			t.Fatal(err)
		}

		// another file in the same directory
		touch(t, filepath.Join(dir, "config.yml"))
		time.Sleep(50 * time.Millisecond)
		if err := ctx.Err(); err != nil {
			t.Fatalf("context is done: %v", err)
		}

		cancel()
		if !errors.Is(ctx.Err(), context.Canceled) {
			t.Errorf("context is not cancelled: %v", ctx.Err())
		}
	})

	t.Run("watching missing file is an error", func(t *testing.T) {
		ctx, cancel, err := filewatch.UntilModifyContext(
			context.Background(), filepath.Join(t.TempDir(), "missing.yml"),
		)
		if err == nil {
			cancel()
			t.Fatal("no errors")
		}
		if ctx != nil || cancel != nil {
			t.Error("context or cancel is returned with error")
		}
	})

	t.Run("parent context cancels it", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "dashsync.yml")
		touch(t, file)

		parent, cancelParent := context.WithCancel(context.Background())
		ctx, cancel, err := filewatch.UntilModifyContext(parent, file)
		if err != nil {
			t.Fatal(err)
		}
		defer cancel()

		cancelParent()
		if !waitDone(t, ctx) {
			t.Fatal("context is not cancelled")
		}
		if errors.Is(context.Cause(ctx), filewatch.ErrModified) {
			t.Error("cancelled as modified")
		}
	})
}
