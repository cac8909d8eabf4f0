// internal/logging/logger.go
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// ParseLevel maps "debug", "info", "warn" or "error" to a Level.
// Unknown values yield LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides levelled key/value logging.
type Logger struct {
	prefix string
	level  Level
	logger *log.Logger
}

// NewLogger creates a logger writing to stdout with a component prefix.
func NewLogger(prefix string, level Level) *Logger {
	return NewLoggerTo(os.Stdout, prefix, level)
}

// NewLoggerTo creates a logger writing to w.
func NewLoggerTo(w io.Writer, prefix string, level Level) *Logger {
	return &Logger{
		prefix: prefix,
		level:  level,
		logger: log.New(w, fmt.Sprintf("[%s] ", prefix), log.LstdFlags),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewLoggerTo(io.Discard, "discard", LevelError+1)
}

// With returns a logger sharing the output with a nested prefix.
func (l *Logger) With(component string) *Logger {
	prefix := l.prefix + "/" + component
	return &Logger{
		prefix: prefix,
		level:  l.level,
		logger: log.New(l.logger.Writer(), fmt.Sprintf("[%s] ", prefix), l.logger.Flags()),
	}
}

// Info logs an informational message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.logWithKV(LevelInfo, msg, keysAndValues...)
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.logWithKV(LevelWarn, msg, keysAndValues...)
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.logWithKV(LevelError, msg, keysAndValues...)
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.logWithKV(LevelDebug, msg, keysAndValues...)
}

func (l *Logger) logWithKV(level Level, msg string, keysAndValues ...interface{}) {
	if level < l.level {
		return
	}
	var kv strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&kv, " %v=%v", keysAndValues[i], keysAndValues[i+1])
		}
	}
	l.logger.Printf("[%s] %s%s", levelNames[level], msg, kv.String())
}
