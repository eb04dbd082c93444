// Package lexer converts Cascade source text into a stream of tokens.
//
// The lexer is pull-based: each call to Next scans exactly one token from the
// current position and never backtracks. Lexical errors are returned as
// ordinary tokens of type token.ERROR whose Literal holds the message, so the
// caller decides how to report them.
package lexer

import (
	"unicode/utf8"

	"github.com/cascade-lang/cascade/internal/token"
)

// Lexical error messages carried by ERROR tokens.
const (
	ErrUnexpectedCharacter = "unexpected character"
	ErrUnterminatedString  = "unterminated string"
	ErrUnterminatedAtEOF   = "unterminated string at end of input"
)

// Lexer scans tokens from a source string. The zero value is an empty lexer
// that only produces EOF; use New or Reset to scan real input.
type Lexer struct {
	source  string
	start   int // offset of the token being built
	current int // scan position
	line    int
}

// New returns a lexer positioned at the start of source.
func New(source string) *Lexer {
	l := &Lexer{}
	l.Reset(source)
	return l
}

// Reset discards all cursor state and positions the lexer at the start of
// source.
func (l *Lexer) Reset(source string) {
	l.source = source
	l.start = 0
	l.current = 0
	l.line = 1
}

// Next scans and returns the next token. Once the end of input is reached,
// every further call returns an EOF token on the final line.
func (l *Lexer) Next() token.Token {
	l.skipWhitespace()
	l.start = l.current
	if l.atEnd() {
		return l.makeToken(token.EOF)
	}

	c := l.advance()
	if isAlpha(c) {
		return l.identifier()
	}
	if isDigit(c) {
		return l.number()
	}

	switch c {
	case '(':
		return l.makeToken(token.LPAREN)
	case ')':
		return l.makeToken(token.RPAREN)
	case '{':
		return l.makeToken(token.LBRACE)
	case '}':
		return l.makeToken(token.RBRACE)
	case ';':
		return l.makeToken(token.SEMICOLON)
	case ',':
		return l.makeToken(token.COMMA)
	case '.':
		return l.makeToken(token.PERIOD)
	case '-':
		return l.makeToken(token.MINUS)
	case '+':
		return l.makeToken(token.PLUS)
	case '/':
		return l.makeToken(token.SLASH)
	case '*':
		return l.makeToken(token.ASTERISK)
	case '!':
		return l.makeToken(l.pick('=', token.NOT_EQ, token.BANG))
	case '=':
		return l.makeToken(l.pick('=', token.EQ, token.ASSIGN))
	case '<':
		return l.makeToken(l.pick('=', token.LT_EQUALS, token.LT))
	case '>':
		return l.makeToken(l.pick('=', token.GT_EQUALS, token.GT))
	case '"':
		return l.string()
	}

	// Consume the rest of a multi-byte character so it is reported once
	if c >= utf8.RuneSelf {
		_, size := utf8.DecodeRuneInString(l.source[l.start:])
		l.current = l.start + size
	}
	return l.errorToken(ErrUnexpectedCharacter)
}

// Tokenize scans source to completion and returns every token, ending with
// the EOF token.
func Tokenize(source string) []token.Token {
	l := New(source)
	var tokens []token.Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.peek() {
		case ' ', '\r', '\t':
			l.advance()
		case '\n':
			l.line++
			l.advance()
		case '/':
			if l.peekNext() != '/' {
				return
			}
			for l.peek() != '\n' && !l.atEnd() {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) identifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	return l.makeToken(token.LookupIdentifier(l.source[l.start:l.current]))
}

func (l *Lexer) number() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	// A fraction needs at least one digit after the dot
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.makeToken(token.NUMBER)
}

func (l *Lexer) string() token.Token {
	for l.peek() != '"' && !l.atEnd() {
		if l.peek() == '\n' {
			return l.errorToken(ErrUnterminatedString)
		}
		l.advance()
	}
	if l.atEnd() {
		return l.errorToken(ErrUnterminatedAtEOF)
	}
	l.advance() // closing quote
	return l.makeToken(token.STRING)
}

func (l *Lexer) makeToken(typ token.Type) token.Token {
	return token.Token{
		Type:    typ,
		Literal: l.source[l.start:l.current],
		Start:   l.start,
		Length:  l.current - l.start,
		Line:    l.line,
	}
}

func (l *Lexer) errorToken(message string) token.Token {
	return token.Token{
		Type:    token.ERROR,
		Literal: message,
		Start:   l.start,
		Length:  l.current - l.start,
		Line:    l.line,
	}
}

// pick consumes the next character and returns matched if it equals
// expected, otherwise it returns unmatched without consuming anything.
func (l *Lexer) pick(expected byte, matched, unmatched token.Type) token.Type {
	if l.atEnd() || l.source[l.current] != expected {
		return unmatched
	}
	l.current++
	return matched
}

func (l *Lexer) atEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) advance() byte {
	l.current++
	return l.source[l.current-1]
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
