// ABOUTME: Structured logging configuration using log/slog
// ABOUTME: Routes logs to stderr for commands or to a file while the TUI owns the terminal

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init configures the default slog logger writing to w.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func Init(level, format string, w io.Writer) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// InitFile configures the default logger to append to path. An empty path
// discards all output so nothing is drawn over the TUI.
func InitFile(level, format, path string) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	if path == "" {
		Init(level, format, io.Discard)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		Init(level, format, io.Discard)
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		Init(level, format, io.Discard)
		return err
	}

	logFile = f
	Init(level, format, f)
	return nil
}

// Close closes the log file opened by InitFile, if any
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
