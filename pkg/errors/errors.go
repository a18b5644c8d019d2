// Error wrapper which remembers where it is wrapped.
//
// Usage:
//
//	if err := os.WriteFile(path, content, 0644); err != nil {
//		return xe.WrapWithNote(path, err)
//	}
//
// Message of the wrapped error looks like
//
//	@ homer.(*FileStorage).Save storage.go:56 (/app/config.yml) <- original message
//
// so a chain of wraps reads as a stack of the places the error went through.
package errors

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

type ErrWithCaller struct {
	file     string
	line     int
	funcname string
	note     string
	err      error
}

// File returns base name of the source file where the error is wrapped.
func (e *ErrWithCaller) File() string {
	return e.file
}

func (e *ErrWithCaller) Line() int {
	return e.line
}

// Func returns the function name where the error is wrapped, qualified by its package name.
func (e *ErrWithCaller) Func() string {
	return e.funcname
}

func (e *ErrWithCaller) Note() string {
	return e.note
}

func (e *ErrWithCaller) Error() string {
	sb := new(strings.Builder)
	fmt.Fprintf(sb, "@ %s %s:%d", e.funcname, e.file, e.line)
	if e.note != "" {
		fmt.Fprintf(sb, " (%s)", e.note)
	}
	sb.WriteString(" <- ")
	sb.WriteString(e.err.Error())
	return sb.String()
}

func (e *ErrWithCaller) Unwrap() error {
	return e.err
}

// Wrap err with the caller. nil is not wrapped.
func Wrap(err error) error {
	return wrap("", err)
}

// WrapWithNote wraps err with the caller and a note, like a path or an id the error is about.
func WrapWithNote(note string, err error) error {
	return wrap(note, err)
}

func wrap(note string, err error) error {
	if err == nil {
		return nil
	}

	// 0: wrap, 1: Wrap or WrapWithNote, 2: the caller
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "?"
		line = -1
	}
	funcname := "(unknown func)"
	if fn := runtime.FuncForPC(pc); fn != nil {
		funcname = fn.Name()
		if i := strings.LastIndex(funcname, "/"); 0 <= i {
			funcname = funcname[i+1:]
		}
	}

	return &ErrWithCaller{
		funcname: funcname,
		file:     filepath.Base(file),
		line:     line,
		note:     note,
		err:      err,
	}
}
