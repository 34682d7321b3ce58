// Package logging builds the structured loggers used by the harness.
//
// Records always go to stderr in text form so they never mix with the test
// report written to stdout. When a log file is configured the same records
// are also written there as JSON.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options configures a logger
type Options struct {
	// Level is one of debug, info, warn or error
	Level string `mapstructure:"level" yaml:"level"`

	// File is an optional path receiving JSON records at debug level
	File string `mapstructure:"file" yaml:"file,omitempty"`
}

// ParseLevel converts a level name into a slog.Level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// New creates a logger writing text records to stderr and, if opts.File is set, JSON
// records to that file. The returned closer releases the log file and must be called
// once the logger is no longer used.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	return NewWithWriter(os.Stderr, opts)
}

// NewWithWriter is New with an explicit destination for text records
func NewWithWriter(w io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelWarn
	if opts.Level != "" {
		var err error
		if level, err = ParseLevel(opts.Level); err != nil {
			return nil, nil, err
		}
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	}

	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}

		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closer = file
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
