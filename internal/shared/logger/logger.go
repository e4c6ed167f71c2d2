package logger

import (
	"io"
	"log/slog"
	"os"
)

// New builds the process logger. Development gets readable text output at
// debug level, everything else gets JSON at info level.
func New(env string) *slog.Logger {
	return newWithWriter(env, os.Stdout)
}

// NewWriter is New writing to w.
func NewWriter(env string, w io.Writer) *slog.Logger {
	return newWithWriter(env, w)
}

func newWithWriter(env string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Init installs the logger as the slog default and returns it.
func Init(env string) *slog.Logger {
	l := New(env)
	slog.SetDefault(l)
	return l
}

// Discard is used by tests and by components constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
