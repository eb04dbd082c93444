package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter renders compile errors with the offending source line and a
// caret underline.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Color attributes used for error formatting
var (
	colorError    = []color.Attribute{color.FgRed}
	colorCode     = []color.Attribute{color.FgHiBlack}
	colorLineNum  = []color.Attribute{color.FgHiBlack}
	colorCaret    = []color.Attribute{color.FgHiRed, color.Bold}
	colorLocation = []color.Attribute{color.FgCyan}
)

// paint colors s with attrs. A new color.Color is built per call since
// EnableColor mutates it.
func (f *Formatter) paint(attrs []color.Attribute, s string) string {
	if !f.UseColor {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// Format renders a single compile error against the source it came from:
//
//	error[E1004]: expect expression
//	  --> line 1
//	   |
//	 1 | (1 + )
//	   |      ^
func (f *Formatter) Format(err *CompileError, source string) string {
	var b strings.Builder

	b.WriteString(f.paint(colorError, "error"))
	if err.Code != "" {
		b.WriteString(f.paint(colorCode, fmt.Sprintf("[%s]", err.Code)))
	}
	b.WriteString(": ")
	b.WriteString(err.Message)
	if err.Where != "" {
		b.WriteString(" (")
		b.WriteString(err.Where)
		b.WriteString(")")
	}
	b.WriteString("\n")

	width := len(fmt.Sprintf("%d", err.Line)) + 1
	padding := strings.Repeat(" ", width)
	b.WriteString(padding)
	b.WriteString(f.paint(colorLocation, fmt.Sprintf("--> line %d", err.Line)))
	b.WriteString("\n")

	text, column, ok := sourceLine(source, err.Offset)
	if !ok {
		return b.String()
	}
	b.WriteString(padding)
	b.WriteString(f.paint(colorLineNum, " |"))
	b.WriteString("\n")
	b.WriteString(f.paint(colorLineNum, fmt.Sprintf("%*d | ", width, err.Line)))
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(padding)
	b.WriteString(f.paint(colorLineNum, " | "))
	b.WriteString(strings.Repeat(" ", column))
	caretLen := err.Length
	if column+caretLen > len(text)+1 {
		caretLen = len(text) + 1 - column
	}
	if caretLen < 1 {
		caretLen = 1
	}
	b.WriteString(f.paint(colorCaret, strings.Repeat("^", caretLen)))
	b.WriteString("\n")
	return b.String()
}

// FormatMultiple formats multiple errors followed by a summary line.
func (f *Formatter) FormatMultiple(errs []*CompileError, source string) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return f.Format(errs[0], source)
	}
	var b strings.Builder
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.Format(err, source))
	}
	b.WriteString("\n")
	b.WriteString(f.paint(colorError, fmt.Sprintf("found %d errors", len(errs))))
	b.WriteString("\n")
	return b.String()
}

// sourceLine returns the text of the line containing offset (without its
// trailing newline) and the 0-based column of offset within it.
func sourceLine(source string, offset int) (string, int, bool) {
	if offset < 0 || offset > len(source) {
		return "", 0, false
	}
	start := strings.LastIndexByte(source[:offset], '\n') + 1
	end := strings.IndexByte(source[offset:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += offset
	}
	text := strings.TrimSuffix(source[start:end], "\r")
	return text, offset - start, true
}
