// SPDX-License-Identifier: MIT
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string (case-insensitive) to a LogLevel.
// Returns LevelInfo and false if the string is not recognized.
func ParseLevel(levelStr string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

// --- Global Logger State ---

var (
	currentLevel atomic.Uint32
	output       atomic.Pointer[stdlog.Logger]
)

func init() {
	SetOutput(os.Stderr)
	SetLevel(LevelInfo)
}

// SetOutput redirects all log output. Tests use it to capture messages.
func SetOutput(w io.Writer) {
	output.Store(stdlog.New(w, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds))
}

// SetLevel sets the global logging level atomically.
func SetLevel(level LogLevel) {
	currentLevel.Store(uint32(level))
}

// GetLevel gets the current global logging level atomically.
func GetLevel() LogLevel {
	return LogLevel(currentLevel.Load())
}

// Enabled reports whether messages at level are currently written.
func Enabled(level LogLevel) bool {
	return level >= GetLevel()
}

func write(level LogLevel, component, msg string) {
	if component != "" {
		msg = component + ": " + msg
	}
	output.Load().Printf("[%-5s] %s", level, msg)
}

// Logger tags every message with a component name, e.g. "engine".
type Logger struct {
	component string
}

// With returns a Logger for the named component.
func With(component string) Logger {
	return Logger{component: component}
}

func (l Logger) Debugf(format string, v ...any) {
	if Enabled(LevelDebug) {
		write(LevelDebug, l.component, fmt.Sprintf(format, v...))
	}
}

func (l Logger) Infof(format string, v ...any) {
	if Enabled(LevelInfo) {
		write(LevelInfo, l.component, fmt.Sprintf(format, v...))
	}
}

func (l Logger) Warnf(format string, v ...any) {
	if Enabled(LevelWarn) {
		write(LevelWarn, l.component, fmt.Sprintf(format, v...))
	}
}

func (l Logger) Errorf(format string, v ...any) {
	if Enabled(LevelError) {
		write(LevelError, l.component, fmt.Sprintf(format, v...))
	}
}

// Fatalf always logs, regardless of level, and exits the process.
func (l Logger) Fatalf(format string, v ...any) {
	write(LevelFatal, l.component, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// --- Package-level helpers without a component tag ---

var root Logger

func Debugf(format string, v ...any) { root.Debugf(format, v...) }
func Infof(format string, v ...any)  { root.Infof(format, v...) }
func Warnf(format string, v ...any)  { root.Warnf(format, v...) }
func Errorf(format string, v ...any) { root.Errorf(format, v...) }
func Fatalf(format string, v ...any) { root.Fatalf(format, v...) }
