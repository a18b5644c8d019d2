package errors_test

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	xe "github.com/dashsync/dashsync/pkg/errors"
)

type MyErr struct{}

func (MyErr) Error() string {
	return "error type for test"
}

func wrapHere(err error) (error, int) {
	_, _, line, _ := runtime.Caller(0)
	return xe.Wrap(err), line + 1
}

func TestWrap(t *testing.T) {
	t.Run("it knows location where it is wrapped", func(t *testing.T) {
		testee, line := wrapHere(MyErr{})

		var withCaller *xe.ErrWithCaller
		if !errors.As(testee, &withCaller) {
			t.Fatalf("it is not ErrWithCaller: %#v", testee)
		}

		_, thisFile, _, _ := runtime.Caller(0)
		if withCaller.File() != filepath.Base(thisFile) {
			t.Errorf("unexpected file: (actual, expected) = (%s, %s)", withCaller.File(), filepath.Base(thisFile))
		}
		if withCaller.Line() != line {
			t.Errorf("unexpected line: (actual, expected) = (%d, %d)", withCaller.Line(), line)
		}
		if withCaller.Func() != "errors_test.wrapHere" {
			t.Errorf("unexpected func: %s", withCaller.Func())
		}

		expected := fmt.Sprintf("@ errors_test.wrapHere errors_test.go:%d <- error type for test", line)
		if testee.Error() != expected {
			t.Errorf("unexpected message: (actual, expected) = (%s, %s)", testee.Error(), expected)
		}
	})

	t.Run("it supports errors protocol", func(t *testing.T) {
		rootError := MyErr{}

		err := xe.Wrap(fmt.Errorf("%w", fmt.Errorf("%w", rootError)))

		if !errors.Is(err, rootError) {
			t.Error("it does not support unwrapping.")
		}
	})

	t.Run("nil is not wrapped", func(t *testing.T) {
		if err := xe.Wrap(nil); err != nil {
			t.Errorf("nil is wrapped: %#v", err)
		}
	})
}

func TestWrapWithNote(t *testing.T) {
	t.Run("note is shown in message", func(t *testing.T) {
		err := xe.WrapWithNote("/app/config.yml", fs.ErrNotExist)

		if !strings.Contains(err.Error(), "(/app/config.yml) <- ") {
			t.Errorf("note is not in message: %s", err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("it does not unwrap: %s", err)
		}

		var withCaller *xe.ErrWithCaller
		if !errors.As(err, &withCaller) {
			t.Fatalf("it is not ErrWithCaller: %#v", err)
		}
		if withCaller.Note() != "/app/config.yml" {
			t.Errorf("unexpected note: %s", withCaller.Note())
		}
	})

	t.Run("nil is not wrapped", func(t *testing.T) {
		if err := xe.WrapWithNote("note", nil); err != nil {
			t.Errorf("nil is wrapped: %#v", err)
		}
	})
}
