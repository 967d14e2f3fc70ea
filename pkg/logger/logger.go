package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	charm "github.com/charmbracelet/log"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
)

// Level is a log level.
type Level = charm.Level

// Log levels. TraceLevel is one step more verbose than DebugLevel and OffLevel silences everything.
const (
	TraceLevel Level = charm.DebugLevel - 1
	DebugLevel Level = charm.DebugLevel
	InfoLevel  Level = charm.InfoLevel
	WarnLevel  Level = charm.WarnLevel
	ErrorLevel Level = charm.ErrorLevel
	OffLevel   Level = charm.FatalLevel + 1
)

// Special log file names.
const (
	FileStdout  = "/dev/stdout"
	FileStderr  = "/dev/stderr"
	FileDevNull = "/dev/null"
)

// Logger is a leveled key/value logger backed by charmbracelet/log.
type Logger struct {
	*charm.Logger
}

// NewLogger wraps a charm logger.
func NewLogger(l *charm.Logger) *Logger {
	return &Logger{Logger: l}
}

// Trace logs a message below debug level.
func (l *Logger) Trace(msg interface{}, keyvals ...interface{}) {
	l.Log(TraceLevel, msg, keyvals...)
}

// GetLevelString returns the configured level as one of the names accepted by ParseLogLevel.
func (l *Logger) GetLevelString() string {
	switch level := l.GetLevel(); {
	case level <= TraceLevel:
		return "Trace"
	case level == DebugLevel:
		return "Debug"
	case level == InfoLevel:
		return "Info"
	case level == WarnLevel:
		return "Warning"
	case level == ErrorLevel:
		return "Error"
	default:
		return "Off"
	}
}

// ParseLogLevel parses a log level name. An empty name selects Info.
func ParseLogLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return InfoLevel, nil
	case "trace":
		return TraceLevel, nil
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "off":
		return OffLevel, nil
	default:
		return InfoLevel, fmt.Errorf("%w: '%s'. Supported log levels are Trace, Debug, Info, Warning, Error, Off",
			errUtils.ErrInvalidLogLevel, name)
	}
}

// OpenOutput resolves a log file setting to a writer.
// The returned close function must be called when logging is done; it is a no-op for standard streams.
func OpenOutput(file string) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	switch file {
	case "", FileStderr:
		return os.Stderr, noop, nil
	case FileStdout:
		return os.Stdout, noop, nil
	case FileDevNull:
		return io.Discard, noop, nil
	}

	f, err := os.OpenFile(file, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open log file '%s': %w", file, err)
	}
	return f, f.Close, nil
}
