// Package token defines language keywords and tokens used when lexing source code.
package token

import (
	"fmt"
	"sort"
)

// Type describes the type of a token as a string.
type Type string

// Token represents one token lexed from the input source code.
//
// Literal is the slice of the source the token was scanned from. Slicing a
// Go string shares the source's backing array, so tokens never copy source
// text. For ERROR tokens, Literal holds the diagnostic message instead.
type Token struct {
	Type    Type
	Literal string
	Start   int // byte offset of the lexeme within the source
	Length  int // length in bytes of the source span covered by the token
	Line    int // 1-based line number
}

// Position points to a location in the source.
type Position struct {
	Offset int // byte offset, starting at 0
	Line   int // line number, starting at 1
}

// Position returns where the token starts in the source.
func (t Token) Position() Position {
	return Position{Offset: t.Start, Line: t.Line}
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q (line %d)", t.Type, t.Literal, t.Line)
}

// Token types
const (
	ASSIGN    Type = "="
	ASTERISK  Type = "*"
	BANG      Type = "!"
	COMMA     Type = ","
	EOF       Type = "EOF"
	EQ        Type = "=="
	ERROR     Type = "ERROR"
	GT        Type = ">"
	GT_EQUALS Type = ">="
	IDENT     Type = "IDENT"
	LBRACE    Type = "{"
	LPAREN    Type = "("
	LT        Type = "<"
	LT_EQUALS Type = "<="
	MINUS     Type = "-"
	NOT_EQ    Type = "!="
	NUMBER    Type = "NUMBER"
	PERIOD    Type = "."
	PLUS      Type = "+"
	RBRACE    Type = "}"
	RPAREN    Type = ")"
	SEMICOLON Type = ";"
	SLASH     Type = "/"
	STRING    Type = "STRING"

	// Keywords
	AND    Type = "AND"
	CLASS  Type = "CLASS"
	ELSE   Type = "ELSE"
	FALSE  Type = "FALSE"
	FOR    Type = "FOR"
	FUN    Type = "FUN"
	IF     Type = "IF"
	NIL    Type = "NIL"
	OR     Type = "OR"
	PRINT  Type = "PRINT"
	RETURN Type = "RETURN"
	SUPER  Type = "SUPER"
	THIS   Type = "THIS"
	TRUE   Type = "TRUE"
	VAR    Type = "VAR"
	WHILE  Type = "WHILE"
)

// Reserved keywords
var keywords = map[string]Type{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"fun":    FUN,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

// LookupIdentifier returns the keyword type for an exact, case-sensitive
// keyword spelling, or IDENT for anything else.
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}

// Keywords returns the reserved keyword spellings in sorted order.
func Keywords() []string {
	names := make([]string, 0, len(keywords))
	for name := range keywords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
