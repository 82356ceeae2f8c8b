// Package logging provides structured logging for agentwatch.
// It wraps log/slog to emit JSON-formatted logs with persistent contextual
// attributes (target, strategy) for post-hoc analysis of monitoring sessions.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Log levels supported by the logger.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Logger provides structured logging with attribute propagation.
// It is safe for concurrent use.
type Logger struct {
	logger *slog.Logger
	file   *os.File
	mu     sync.Mutex
	attrs  []slog.Attr
}

// New creates a Logger writing JSON logs to {dir}/agentwatch.log.
// An empty dir sends logs to stderr instead.
func New(dir, level string) (*Logger, error) {
	var writer io.Writer
	var file *os.File

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		var err error
		file, err = os.OpenFile(filepath.Join(dir, "agentwatch.log"),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = file
	} else {
		writer = os.Stderr
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{logger: slog.New(handler), file: file}, nil
}

// Nop returns a Logger that discards all output. Useful in tests.
func Nop() *Logger {
	return &Logger{logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTarget returns a child logger tagging every entry with the monitored
// target's ID.
func (l *Logger) WithTarget(targetID string) *Logger {
	return l.withAttr(slog.String("target", targetID))
}

// WithStrategy returns a child logger tagging every entry with a completion
// strategy name.
func (l *Logger) WithStrategy(name string) *Logger {
	return l.withAttr(slog.String("strategy", name))
}

// With returns a child logger with arbitrary alternating key-value attributes.
func (l *Logger) With(args ...any) *Logger {
	attrs := make([]slog.Attr, 0, len(l.attrs)+len(args)/2)
	attrs = append(attrs, l.attrs...)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(key, args[i+1]))
	}
	return &Logger{logger: l.logger, file: l.file, attrs: attrs}
}

func (l *Logger) withAttr(attr slog.Attr) *Logger {
	attrs := make([]slog.Attr, len(l.attrs), len(l.attrs)+1)
	copy(attrs, l.attrs)
	return &Logger{logger: l.logger, file: l.file, attrs: append(attrs, attr)}
}

// Debug logs at DEBUG level with alternating key-value pairs.
func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }

// Info logs at INFO level with alternating key-value pairs.
func (l *Logger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args...) }

// Warn logs at WARN level with alternating key-value pairs.
func (l *Logger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args...) }

// Error logs at ERROR level with alternating key-value pairs.
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	all := make([]any, 0, len(l.attrs)*2+len(args))
	for _, attr := range l.attrs {
		all = append(all, attr.Key, attr.Value.Any())
	}
	all = append(all, args...)
	l.logger.Log(context.Background(), level, msg, all...)
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	l.file = nil
	return nil
}
