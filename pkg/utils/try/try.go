// Package try shortens handling of (value, error) pairs where any error is fatal,
// as in tests and in wiring of main.
//
//	conf := try.To(daemon.LoadDaemonConfig(path)).OrFatal(logger)
package try

// something have method `Fatal`.
//
// For example in standard libraries: *testing.T, log.Logger
type Fataler interface {
	Fatal(...any)
}

// Result is a pair of (T, error).
//
// When error is nil, T value is valid. Otherwise, T is the zero value.
type Result[T any] struct {
	value T
	err   error
}

// To wraps a pair of (T, error), typically returned from a function call.
func To[T any](value T, err error) Result[T] {
	if err != nil {
		return Result[T]{err: err}
	}
	return Result[T]{value: value}
}

// Get returns the value & error pair.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// OrFatal returns the value if there are no error.
//
// Otherwise, it calls ftl.Fatal(err) and returns the zero value.
// If ftl has "Helper()" method (like *testing.T), also that is called before `Fatal`.
func (r Result[T]) OrFatal(ftl Fataler) T {
	if r.err == nil {
		return r.value
	}
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(r.err)
	return r.value
}

// OrDefault returns the value if there are no error, or d.
func (r Result[T]) OrDefault(d T) T {
	if r.err != nil {
		return d
	}
	return r.value
}
