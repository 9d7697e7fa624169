// Package debug provides opt-in debug logging on top of log/slog. When
// disabled (the default) every call is a no-op, so generation output stays
// clean unless --debug is passed.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// Init switches debug logging on or off. When on, records go to stderr as
// slog text lines at debug level.
func Init(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = enable
	if enable {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Enabled reports whether debug logging is active.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a debug message with key/value attributes.
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs an info message with key/value attributes.
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs a warning message with key/value attributes.
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs an error message with key/value attributes.
func Error(msg string, args ...any) { get().Error(msg, args...) }
