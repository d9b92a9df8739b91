package diagnostics

import (
	"fmt"
	"io"
	"os"
)

// Severity levels for diagnostics
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	}
	return "UNKNOWN"
}

// Code classifies a diagnostic
type Code string

const (
	CodeNone            Code = ""
	CodeUndefinedSymbol Code = "undefined-symbol"
)

// Diagnostic represents a compiler diagnostic message
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Line     int
	Column   int
	File     string
}

func (d Diagnostic) String() string {
	if d.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// DiagnosticEngine collects and reports diagnostics
type DiagnosticEngine struct {
	diagnostics []Diagnostic
	errorCount  int
	warnCount   int
}

// NewDiagnosticEngine creates a new diagnostic engine
func NewDiagnosticEngine() *DiagnosticEngine {
	return &DiagnosticEngine{
		diagnostics: make([]Diagnostic, 0),
	}
}

func (d *DiagnosticEngine) add(diag Diagnostic) {
	d.diagnostics = append(d.diagnostics, diag)
	switch diag.Severity {
	case SeverityError:
		d.errorCount++
	case SeverityWarning:
		d.warnCount++
	}
}

// Error reports an error
func (d *DiagnosticEngine) Error(message string) {
	d.add(Diagnostic{Severity: SeverityError, Message: message})
}

// ErrorCode reports an error with a classification code
func (d *DiagnosticEngine) ErrorCode(code Code, message string) {
	d.add(Diagnostic{Severity: SeverityError, Code: code, Message: message})
}

// ErrorAt reports an error at a specific location
func (d *DiagnosticEngine) ErrorAt(file string, line, column int, message string) {
	d.ErrorCodeAt(CodeNone, file, line, column, message)
}

// ErrorCodeAt reports a classified error at a specific location
func (d *DiagnosticEngine) ErrorCodeAt(code Code, file string, line, column int, message string) {
	d.add(Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		File:     file,
		Line:     line,
		Column:   column,
	})
}

// Warning reports a warning
func (d *DiagnosticEngine) Warning(message string) {
	d.add(Diagnostic{Severity: SeverityWarning, Message: message})
}

// WarningAt reports a warning at a specific location
func (d *DiagnosticEngine) WarningAt(file string, line, column int, message string) {
	d.add(Diagnostic{
		Severity: SeverityWarning,
		Message:  message,
		File:     file,
		Line:     line,
		Column:   column,
	})
}

// HasErrors returns true if any errors were reported
func (d *DiagnosticEngine) HasErrors() bool {
	return d.errorCount > 0
}

// ErrorCount returns the number of errors
func (d *DiagnosticEngine) ErrorCount() int {
	return d.errorCount
}

// WarningCount returns the number of warnings
func (d *DiagnosticEngine) WarningCount() int {
	return d.warnCount
}

// All returns the collected diagnostics in report order
func (d *DiagnosticEngine) All() []Diagnostic {
	out := make([]Diagnostic, len(d.diagnostics))
	copy(out, d.diagnostics)
	return out
}

// WithCode returns the diagnostics carrying code
func (d *DiagnosticEngine) WithCode(code Code) []Diagnostic {
	var out []Diagnostic
	for _, diag := range d.diagnostics {
		if diag.Code == code {
			out = append(out, diag)
		}
	}
	return out
}

// Print outputs all diagnostics to stderr
func (d *DiagnosticEngine) Print() {
	d.Fprint(os.Stderr)
}

// Fprint outputs all diagnostics to w
func (d *DiagnosticEngine) Fprint(w io.Writer) {
	for _, diag := range d.diagnostics {
		fmt.Fprintln(w, diag.String())
	}
}
