// Options deriving component loggers from the process logger.
//
//	l := logger.By(log.Default(), logger.Copied(), logger.WithPrefix("[portainer] "))
package logger

import "log"

type Option func(*log.Logger) *log.Logger

// By applies options to l in order.
func By(l *log.Logger, opt ...Option) *log.Logger {
	for _, o := range opt {
		l = o(l)
	}
	return l
}

// Copied makes a new logger sharing the writer, prefix and flags of the given one.
//
// Put it first, or following options modify the given logger itself.
func Copied() Option {
	return func(l *log.Logger) *log.Logger {
		return log.New(l.Writer(), l.Prefix(), l.Flags())
	}
}

func WithPrefix(pre string) Option {
	return func(l *log.Logger) *log.Logger {
		l.SetPrefix(pre)
		return l
	}
}

func WithTimestamp() Option {
	return func(l *log.Logger) *log.Logger {
		l.SetFlags(l.Flags() | log.Ldate | log.Ltime | log.Lmicroseconds)
		return l
	}
}

// OrDefault returns l, or log.Default() when l is nil.
func OrDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
