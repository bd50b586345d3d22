// Package logging provides the structured logger used across mdslide's
// presenter, builder, and snippet subsystems.
package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// F creates a Field from a key-value pair.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is the structured logging contract used throughout mdslide.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, err error, fields ...Field)
	WithFields(fields ...Field) Logger
}

// NoOpLogger discards every entry. It is the default when the presenter
// runs with stdout reserved for the terminal UI and no --log-file is set.
type NoOpLogger struct{}

func (NoOpLogger) Debug(context.Context, string, ...Field)        {}
func (NoOpLogger) Info(context.Context, string, ...Field)         {}
func (NoOpLogger) Warn(context.Context, string, ...Field)         {}
func (NoOpLogger) Error(context.Context, string, error, ...Field) {}
func (n NoOpLogger) WithFields(...Field) Logger                   { return n }

// StdLogger writes one line per entry to an io.Writer, filtering by level
// and including a trace ID pulled from context when present.
type StdLogger struct {
	fields   []Field
	minLevel Level
	logger   *log.Logger
}

// NewStdLogger builds a logger writing to w. A nil w behaves like NoOpLogger.
func NewStdLogger(minLevel Level, w io.Writer) *StdLogger {
	if w == nil {
		w = io.Discard
	}
	return &StdLogger{minLevel: minLevel, logger: log.New(w, "", 0)}
}

func (s *StdLogger) log(ctx context.Context, level Level, msg string, err error, fields ...Field) {
	if !s.shouldLog(level) {
		return
	}

	all := append(append([]Field{}, s.fields...), fields...)
	if id := traceID(ctx); id != "" {
		all = append(all, F("slide_id", id))
	}

	parts := []string{
		fmt.Sprintf("[%s]", time.Now().Format(time.RFC3339)),
		fmt.Sprintf("[%s]", level),
	}
	if err != nil {
		parts = append(parts, fmt.Sprintf("[error=%q]", err.Error()))
	}
	parts = append(parts, msg)

	if len(all) > 0 {
		fieldParts := make([]string, 0, len(all))
		for _, f := range all {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		parts = append(parts, fmt.Sprintf("fields=[%s]", strings.Join(fieldParts, " ")))
	}

	s.logger.Println(strings.Join(parts, " "))
}

func (s *StdLogger) shouldLog(level Level) bool {
	rank := map[Level]int{LevelDebug: 0, LevelInfo: 1, LevelWarn: 2, LevelError: 3}
	return rank[level] >= rank[s.minLevel]
}

func (s *StdLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, LevelDebug, msg, nil, fields...)
}

func (s *StdLogger) Info(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, LevelInfo, msg, nil, fields...)
}

func (s *StdLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, LevelWarn, msg, nil, fields...)
}

func (s *StdLogger) Error(ctx context.Context, msg string, err error, fields ...Field) {
	s.log(ctx, LevelError, msg, err, fields...)
}

func (s *StdLogger) WithFields(fields ...Field) Logger {
	return &StdLogger{
		fields:   append(append([]Field{}, s.fields...), fields...),
		minLevel: s.minLevel,
		logger:   s.logger,
	}
}

type traceIDKey struct{}

// WithSlideID tags the context with the currently visible slide index, so
// log lines emitted during a render or snippet run can be correlated back
// to the slide that triggered them.
func WithSlideID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

func traceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}
