package logger

import (
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Logger is the application logger. Every entry is a single JSON line
// carrying the message plus flat key/value fields.
type Logger struct {
	hl hclog.Logger
}

// New creates a new logger writing JSON lines to output (stdout when nil).
// Unknown levels fall back to INFO.
func New(level string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}

	return &Logger{
		hl: hclog.New(&hclog.LoggerOptions{
			Name:       "dropby",
			Level:      parseLevel(level),
			Output:     output,
			JSONFormat: true,
			TimeFormat: time.RFC3339,
		}),
	}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	return New("ERROR", io.Discard)
}

func parseLevel(level string) hclog.Level {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		return hclog.Info
	}
	return lvl
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{hl: l.hl.With(flatten(fields)...)}
}

// flatten turns a field map into hclog's alternating key/value form.
// Keys are sorted so output is stable.
func flatten(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := slices.Sorted(maps.Keys(fields))
	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}

func merge(fields []map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	return flatten(fields[0])
}

func (l *Logger) Debug(message string, fields ...map[string]any) {
	l.hl.Debug(message, merge(fields)...)
}

func (l *Logger) Info(message string, fields ...map[string]any) {
	l.hl.Info(message, merge(fields)...)
}

func (l *Logger) Warn(message string, fields ...map[string]any) {
	l.hl.Warn(message, merge(fields)...)
}

func (l *Logger) Error(message string, fields ...map[string]any) {
	l.hl.Error(message, merge(fields)...)
}

// Task logs an INFO entry tagged with the task id.
func (l *Logger) Task(taskID, message string, fields ...map[string]any) {
	allFields := map[string]any{
		"task_id": taskID,
		"type":    "task",
	}

	if len(fields) > 0 && fields[0] != nil {
		maps.Copy(allFields, fields[0])
	}

	l.hl.Info(message, flatten(allFields)...)
}

func (l *Logger) HTTP(method, path string, statusCode int, duration time.Duration, fields ...map[string]any) {
	allFields := map[string]any{
		"http_method": method,
		"http_path":   path,
		"http_status": statusCode,
		"duration_ns": duration.Nanoseconds(),
		"type":        "http_request",
	}

	if len(fields) > 0 && fields[0] != nil {
		maps.Copy(allFields, fields[0])
	}

	l.hl.Info("HTTP request completed", flatten(allFields)...)
}
