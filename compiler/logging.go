// Package compiler provides symbol resolution and scope tracking for the
// lisp compiler's IR lowering.
package compiler

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarning:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// ParseLogLevel maps a config/flag spelling to a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarning, nil
	case "error":
		return LogLevelError, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger provides centralized logging for the compiler
type Logger struct {
	mu         sync.Mutex
	prefix     string
	level      LogLevel
	out        io.Writer
	errOut     io.Writer
	errorCount int
	warnCount  int
	infoCount  int
	debugCount int
}

var (
	globalLogger = NewLogger("[lispc]")
)

// NewLogger creates a new logger with a custom prefix
func NewLogger(prefix string) *Logger {
	return &Logger{
		prefix: prefix,
		level:  LogLevelInfo,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// SetLevel sets the minimum level that is written. Messages below it are
// still counted.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput redirects debug/info output to out and warnings/errors to errOut.
func (l *Logger) SetOutput(out, errOut io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = out
	l.errOut = errOut
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LogLevelDebug, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LogLevelError, format, args...)
}

// ErrorAt logs an error at a specific source location
func (l *Logger) ErrorAt(file string, line, column int, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.log(LogLevelError, "%s:%d:%d: %s", file, line, column, message)
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch level {
	case LogLevelDebug:
		l.debugCount++
	case LogLevelInfo:
		l.infoCount++
	case LogLevelWarning:
		l.warnCount++
	case LogLevelError:
		l.errorCount++
	}

	if level < l.level {
		return
	}

	output := l.out
	if level >= LogLevelWarning {
		output = l.errOut
	}

	message := fmt.Sprintf(format, args...)
	fmt.Fprintf(output, "%s [%s] %s\n", l.prefix, level, message)
}

// HasErrors returns true if any errors were logged
func (l *Logger) HasErrors() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errorCount > 0
}

// ErrorCount returns the number of errors logged
func (l *Logger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errorCount
}

// WarningCount returns the number of warnings logged
func (l *Logger) WarningCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warnCount
}

// Reset resets all counters
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorCount = 0
	l.warnCount = 0
	l.infoCount = 0
	l.debugCount = 0
}

// PrintSummary prints a summary of logged messages
func (l *Logger) PrintSummary() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.errorCount > 0 || l.warnCount > 0 {
		fmt.Fprintf(l.errOut, "\n%s Compilation Summary:\n", l.prefix)
		if l.errorCount > 0 {
			fmt.Fprintf(l.errOut, "  Errors: %d\n", l.errorCount)
		}
		if l.warnCount > 0 {
			fmt.Fprintf(l.errOut, "  Warnings: %d\n", l.warnCount)
		}
	}
}

// SetGlobalLevel sets the level of the package-level logger.
func SetGlobalLevel(level LogLevel) {
	globalLogger.SetLevel(level)
}
