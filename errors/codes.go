package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Lexical and syntax errors
//   - E2xxx: Compile errors
//   - E3xxx: Runtime errors
type ErrorCode string

const (
	// Lexical and syntax errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unexpected character
	E1002 ErrorCode = "E1002" // Unterminated string literal
	E1003 ErrorCode = "E1003" // Unexpected token
	E1004 ErrorCode = "E1004" // Missing expression
	E1008 ErrorCode = "E1008" // Invalid number literal
	E1009 ErrorCode = "E1009" // Maximum nesting depth exceeded

	// Compile errors (E2xxx)
	E2008 ErrorCode = "E2008" // Too many constants

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Type error
	E3006 ErrorCode = "E3006" // Stack overflow
	E3007 ErrorCode = "E3007" // Invalid operation
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unexpected character",
	E1002: "unterminated string literal",
	E1003: "unexpected token",
	E1004: "missing expression",
	E1008: "invalid number literal",
	E1009: "maximum nesting depth exceeded",

	E2008: "too many constants",

	E3001: "type error",
	E3006: "stack overflow",
	E3007: "invalid operation",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "syntax"
	case '2':
		return "compile"
	case '3':
		return "runtime"
	default:
		return "unknown"
	}
}
