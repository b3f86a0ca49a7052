package common

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// RunLogger provides structured logging for extraction runs.
type RunLogger interface {
	Log(level, message string, metadata map[string]interface{})
}

// Context keys for passing logger through context
type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger RunLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a no-op logger if not found
func LoggerFromContext(ctx context.Context) RunLogger {
	if logger, ok := ctx.Value(loggerKey).(RunLogger); ok {
		return logger
	}
	return &noOpLogger{}
}

// noOpLogger is a logger that does nothing (fallback when no logger in context)
type noOpLogger struct{}

func (l *noOpLogger) Log(level, message string, metadata map[string]interface{}) {
}

// StdoutLogger writes one line per entry to stdout. Used by the CLI and the
// daemon; tests rely on the no-op fallback instead.
type StdoutLogger struct {
	MinLevel string
}

var levelRank = map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3}

// Log writes the entry when it meets the minimum level.
func (l *StdoutLogger) Log(level, message string, metadata map[string]interface{}) {
	min := levelRank[strings.ToUpper(l.MinLevel)]
	if levelRank[strings.ToUpper(level)] < min {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] %s", time.Now().Format("15:04:05"), level, message)
	if len(metadata) > 0 {
		keys := make([]string, 0, len(metadata))
		for k := range metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, metadata[k])
		}
	}
	fmt.Fprintln(os.Stdout, sb.String())
}
