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

// Log levels supported by the logger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// LogFileName is the file created inside the log directory.
const LogFileName = "versioner.log"

// Logger writes JSON log lines and carries attributes into child loggers.
// It is safe for concurrent use; children share the parent's output.
type Logger struct {
	logger *slog.Logger
	file   *logFile
}

// logFile is the file a root Logger owns, shared with its children.
type logFile struct {
	mu sync.Mutex
	f  *os.File
}

func (lf *logFile) close() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.f == nil {
		return nil
	}
	if err := lf.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	err := lf.f.Close()
	lf.f = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// NewLogger appends JSON lines to {logDir}/versioner.log, or writes to
// stderr when logDir is empty. Unrecognized levels fall back to INFO.
func NewLogger(logDir string, level string) (*Logger, error) {
	if logDir == "" {
		return NewWriterLogger(os.Stderr, level), nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(logDir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := NewWriterLogger(f, level)
	l.file = &logFile{f: f}
	return l, nil
}

// NewWriterLogger creates a Logger that writes JSON lines to w.
func NewWriterLogger(w io.Writer, level string) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	return &Logger{logger: slog.New(slog.NewJSONHandler(w, opts))}
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

// WithProject tags every entry with the project name.
func (l *Logger) WithProject(project string) *Logger {
	return l.child(slog.String("project", project))
}

// WithPhase tags every entry with the pipeline phase.
func (l *Logger) WithPhase(phase string) *Logger {
	return l.child(slog.String("phase", phase))
}

// WithTarget tags every entry with a "project:target" identifier.
func (l *Logger) WithTarget(target string) *Logger {
	return l.child(slog.String("target", target))
}

// With returns a child Logger carrying alternating key-value pairs.
// Pairs whose key is not a string are dropped.
func (l *Logger) With(args ...any) *Logger {
	var attrs []slog.Attr
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			attrs = append(attrs, slog.Any(key, args[i+1]))
		}
	}
	if len(attrs) == 0 {
		return l
	}
	return l.child(attrs...)
}

func (l *Logger) child(attrs ...slog.Attr) *Logger {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return &Logger{logger: l.logger.With(args...), file: l.file}
}

func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *Logger) log(level slog.Level, msg string, args []any) {
	l.logger.Log(context.Background(), level, msg, args...)
}

// Close syncs and closes the log file. Loggers writing elsewhere, and
// repeated calls, are no-ops.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.close()
}

// NopLogger returns a Logger that discards all log output.
func NopLogger() *Logger {
	return NewWriterLogger(io.Discard, LevelError)
}
