// Package logging is the structured logger used by the analysis tracker,
// the engine and the command line tool. Libraries take a Logger through
// their options and default to NoOpLogger.
package logging

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Level is a log severity.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %q", s)
	}
}

// Fields are structured key/value pairs attached to a message.
type Fields map[string]any

// Logger is the logging interface the packages depend on.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)

	// WithFields returns a logger that adds fields to every message.
	WithFields(fields Fields) Logger

	SetLevel(level Level)
}

type holder struct{ l Logger }

var global atomic.Pointer[holder]

func init() {
	global.Store(&holder{l: NoOpLogger{}})
}

// SetGlobal installs the process-wide logger. nil installs NoOpLogger.
func SetGlobal(l Logger) {
	if l == nil {
		l = NoOpLogger{}
	}
	global.Store(&holder{l: l})
}

// Global returns the process-wide logger.
func Global() Logger {
	return global.Load().l
}

// OrNoOp returns l, or NoOpLogger when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	return l
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...Fields)        {}
func (NoOpLogger) Info(string, ...Fields)         {}
func (NoOpLogger) Warn(string, ...Fields)         {}
func (NoOpLogger) Error(error, string, ...Fields) {}
func (n NoOpLogger) WithFields(Fields) Logger     { return n }
func (NoOpLogger) SetLevel(Level)                 {}
