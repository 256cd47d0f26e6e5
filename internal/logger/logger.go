// Package logger wraps log/slog with the field-based API used across tubedrop.
// Output can go to stdout, stderr, a file path (with ~ expansion) or any io.Writer,
// formatted as JSON or text.
//
//	log, err := logger.New(logger.Config{Level: "info", Format: "json", Output: "stdout"})
//	if err != nil {
//	    return err
//	}
//	log.Info("cleanup cycle finished", logger.Field{Key: "deleted", Value: 3})
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config описывает уровень, формат и назначение логов.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output string // stdout, stderr или путь к файлу
}

// Logger обёртка вокруг slog.Logger
type Logger struct {
	slog *slog.Logger
}

// Field пара ключ/значение для structured logging
type Field struct {
	Key   string
	Value any
}

// New создаёт logger, пишущий в cfg.Output.
func New(cfg Config) (*Logger, error) {
	writer, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	return NewWithWriter(cfg, writer)
}

// NewWithWriter создаёт logger поверх произвольного writer; cfg.Output игнорируется.
func NewWithWriter(cfg Config, w io.Writer) (*Logger, error) {
	level, ok := parseLevel(cfg.Level)
	if !ok {
		return nil, fmt.Errorf("invalid log level: %s (expected: debug, info, warn, error)", cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s (expected: json, text)", cfg.Format)
	}

	return &Logger{slog: slog.New(handler)}, nil
}

// Discard возвращает logger, который ничего не пишет.
func Discard() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func openOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "stdout", "":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	path := output
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	path = filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", filepath.Dir(path), err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file, nil
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ValidLevel сообщает, поддерживается ли уровень логирования.
func ValidLevel(level string) bool {
	_, ok := parseLevel(level)
	return ok
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.slog.Debug(msg, toArgs(fields)...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.slog.Info(msg, toArgs(fields)...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.slog.Warn(msg, toArgs(fields)...)
}

// Error логирует сообщение с ошибкой в поле "error".
func (l *Logger) Error(msg string, err error, fields ...Field) {
	l.slog.Error(msg, toArgs(withError(err, fields))...)
}

func (l *Logger) DebugCtx(ctx context.Context, msg string, fields ...Field) {
	l.slog.DebugContext(ctx, msg, toArgs(fields)...)
}

func (l *Logger) InfoCtx(ctx context.Context, msg string, fields ...Field) {
	l.slog.InfoContext(ctx, msg, toArgs(fields)...)
}

func (l *Logger) WarnCtx(ctx context.Context, msg string, fields ...Field) {
	l.slog.WarnContext(ctx, msg, toArgs(fields)...)
}

func (l *Logger) ErrorCtx(ctx context.Context, msg string, err error, fields ...Field) {
	l.slog.ErrorContext(ctx, msg, toArgs(withError(err, fields))...)
}

// With возвращает дочерний logger с постоянными полями.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{slog: l.slog.With(toArgs(fields)...)}
}

// StdLogger отдаёт нижележащий *slog.Logger.
func (l *Logger) StdLogger() *slog.Logger {
	return l.slog
}

// StdErrorLog отдаёт *log.Logger для net/http; сообщения пишутся с уровнем WARN.
func (l *Logger) StdErrorLog() *log.Logger {
	return slog.NewLogLogger(l.slog.Handler(), slog.LevelWarn)
}

// SetDefault делает logger глобальным для slog.
func SetDefault(l *Logger) {
	slog.SetDefault(l.slog)
}

func withError(err error, fields []Field) []Field {
	out := make([]Field, 0, len(fields)+1)
	if err != nil {
		out = append(out, Field{Key: "error", Value: err.Error()})
	}
	return append(out, fields...)
}

func toArgs(fields []Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}
