// Package logging configures slog for roam.
//
// The TUI owns the terminal, so logs always go to a file. One-shot CLI
// commands may additionally mirror records to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tessro/roam/internal/paths"
)

// Levels lists the accepted log level names in increasing severity.
var Levels = []string{"debug", "info", "warn", "error"}

// ParseLevel converts a log level string to slog.Level.
// Matching is case-insensitive; unrecognized values return slog.LevelInfo.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	l := strings.ToLower(strings.TrimSpace(level))
	if l == "warning" {
		return true
	}
	for _, v := range Levels {
		if l == v {
			return true
		}
	}
	return false
}

// Options controls where log records go.
type Options struct {
	// Path is the log file. Empty means paths.LogPath().
	Path string
	// Level is the minimum level written.
	Level slog.Level
	// Mirror, if non-nil, receives a copy of every record.
	Mirror io.Writer
}

// Setup installs a JSON slog handler as the default logger.
// The returned cleanup closes the log file.
func Setup(opts Options) (cleanup func(), err error) {
	path := opts.Path
	if path == "" {
		path = paths.LogPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	var w io.Writer = f
	if opts.Mirror != nil {
		w = io.MultiWriter(f, opts.Mirror)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level})))

	return func() { f.Close() }, nil
}

// SetupTest routes logs to w in text format at debug level.
func SetupTest(w io.Writer) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// LogPanic recovers a panic, logs it with a stack trace, and calls
// onRecover if non-nil. Defer it first thing in a goroutine:
//
//	defer logging.LogPanic("registry-refresh", nil)
func LogPanic(name string, onRecover func(any)) {
	r := recover()
	if r == nil {
		return
	}
	slog.Error("panic recovered",
		"goroutine", name,
		"panic", r,
		"stack", string(stack()),
	)
	if onRecover != nil {
		onRecover(r)
	}
}

func stack() []byte {
	for size := 4096; ; size *= 2 {
		buf := make([]byte, size)
		if n := runtime.Stack(buf, false); n < size {
			return buf[:n]
		}
	}
}
