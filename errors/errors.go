// Package errors defines the diagnostics produced while compiling and
// running Cascade code.
package errors

import (
	"fmt"
	"strings"
)

// CompileError is a single diagnostic reported by the compiler.
type CompileError struct {
	Code    ErrorCode
	Message string
	Line    int    // 1-based line number
	Where   string // "at end", "at '<lexeme>'", or empty for lexical errors
	Offset  int    // byte offset of the offending token in the source
	Length  int    // byte length of the offending token
}

// Error renders the diagnostic in its one-line form, for example
// "[line 1] Error at ')': expect expression".
func (e *CompileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[line %d] Error", e.Line)
	if e.Where != "" {
		b.WriteString(" ")
		b.WriteString(e.Where)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// RuntimeError is raised by the virtual machine while executing a chunk.
type RuntimeError struct {
	Code    ErrorCode
	Message string
	Line    int
}

// Error renders the message followed by the line of the faulting
// instruction.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d] in script", e.Message, e.Line)
}

// RuntimeErrorf returns a RuntimeError with a formatted message.
func RuntimeErrorf(code ErrorCode, line int, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	}
}

// ListFormat renders a list of errors one per line. It is used as the
// go-multierror ErrorFormat so aggregated diagnostics read exactly as they
// were streamed.
func ListFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}
