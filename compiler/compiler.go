// Package compiler turns Cascade source text directly into bytecode.
//
// # Single-Pass Compilation
//
// The compiler never builds a syntax tree. It pulls tokens from the lexer one
// at a time, keeping only the previous and current token, and writes opcodes
// into a bytecode.Chunk as soon as it recognizes each grammar production.
// Expressions are parsed by precedence climbing: every token type may have a
// prefix parse function (it can start an expression) and an infix parse
// function (it can continue one), and the precedence table decides how far an
// infix operator's right operand extends.
//
// Operands are always compiled before their operator, so the emitted order is
// the evaluation order of a stack machine:
//
//	(1 + 2) * 3   =>   LOAD_CONST 0, LOAD_CONST 1, ADD, LOAD_CONST 2, MULTIPLY, RETURN
//
// # Errors and Panic Mode
//
// Lexical errors arrive as ERROR tokens and syntax errors are detected by the
// grammar; both are reported the same way. The first error of a unit is
// written to the diagnostics writer and switches the compiler into panic
// mode, in which further errors are recorded nowhere. Expressions have no
// resynchronization point, so one error silences the rest of the unit, but
// compilation still runs to the end of the input and the chunk is still
// terminated with a RETURN. Callers must check the result of Compile rather
// than the contents of the chunk.
package compiler

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/cascade-lang/cascade/bytecode"
	"github.com/cascade-lang/cascade/errors"
	"github.com/cascade-lang/cascade/internal/lexer"
	"github.com/cascade-lang/cascade/internal/token"
	"github.com/cascade-lang/cascade/op"
)

// DefaultMaxDepth is the default limit on expression nesting.
const DefaultMaxDepth = 1000

type parseFn func()

// Compiler compiles Cascade source into a bytecode.Chunk.
//
// A Compiler holds the state of one compilation unit at a time: the lexer
// cursor, the previous/current token pair and the error flags. Each call to
// Compile resets that state. A Compiler must not be used by more than one
// goroutine at a time; independent Compilers share nothing.
type Compiler struct {
	lexer lexer.Lexer

	// The chunk being written. Only set while Compile is running.
	chunk *bytecode.Chunk

	previous token.Token
	current  token.Token

	// Set on the first error of a unit and never cleared until the next unit
	hadError bool

	// Suppresses diagnostics after the first error
	panicMode bool

	// Every reported diagnostic of the current unit
	errs *multierror.Error

	prefixParseFns map[token.Type]parseFn
	infixParseFns  map[token.Type]parseFn

	diagnostics io.Writer
	logger      zerolog.Logger

	// Current recursion depth
	depth int

	// Maximum allowed recursion depth
	maxDepth int
}

// Config holds compiler configuration options.
type Config struct {
	// Diagnostics receives one line per reported error, as soon as the error
	// is found. Defaults to os.Stderr.
	Diagnostics io.Writer

	// Logger receives debug and trace events. Defaults to a disabled logger.
	Logger *zerolog.Logger

	// MaxDepth limits how deeply expressions may nest. Defaults to
	// DefaultMaxDepth.
	MaxDepth int
}

// Compile compiles source into chunk using the default configuration and
// reports whether compilation succeeded. Diagnostics are written to stderr.
func Compile(source string, chunk *bytecode.Chunk) bool {
	return New(nil).Compile(source, chunk)
}

// New creates and returns a new Compiler. Pass nil for cfg to use defaults.
func New(cfg *Config) *Compiler {
	c := &Compiler{
		diagnostics: os.Stderr,
		logger:      zerolog.Nop(),
		maxDepth:    DefaultMaxDepth,
	}
	if cfg != nil {
		if cfg.Diagnostics != nil {
			c.diagnostics = cfg.Diagnostics
		}
		if cfg.Logger != nil {
			c.logger = *cfg.Logger
		}
		if cfg.MaxDepth > 0 {
			c.maxDepth = cfg.MaxDepth
		}
	}
	c.prefixParseFns = map[token.Type]parseFn{
		token.LPAREN: c.grouping,
		token.MINUS:  c.unary,
		token.NUMBER: c.number,
	}
	c.infixParseFns = map[token.Type]parseFn{
		token.PLUS:     c.binary,
		token.MINUS:    c.binary,
		token.ASTERISK: c.binary,
		token.SLASH:    c.binary,
	}
	return c
}

// Compile compiles source into chunk and reports whether it succeeded. The
// chunk must be initialized; compiled code is appended to it. On failure the
// chunk holds a partial program that must not be executed.
func (c *Compiler) Compile(source string, chunk *bytecode.Chunk) bool {
	if chunk == nil {
		panic("compile error: nil chunk")
	}
	c.reset(source, chunk)

	logger := c.logger.With().Str("unit", newUnitID()).Logger()
	logger.Debug().Int("source_bytes", len(source)).Msg("compile started")

	c.advance()
	c.expression()
	c.consume(token.EOF, errors.E1003, "expect end of expression")
	c.emitOp(op.Return, c.previous.Line)

	logger.Debug().
		Bool("ok", !c.hadError).
		Int("bytes", chunk.Count()).
		Int("constants", chunk.ConstantCount()).
		Msg("compile finished")

	// The chunk now belongs to the caller
	c.chunk = nil
	return !c.hadError
}

// Err returns the diagnostics of the most recent compilation as a single
// error, or nil if it succeeded. Only diagnostics that were written out are
// included; errors suppressed by panic mode are not.
func (c *Compiler) Err() error {
	if c.errs == nil {
		return nil
	}
	return c.errs.ErrorOrNil()
}

// Errors returns the diagnostics of the most recent compilation.
func (c *Compiler) Errors() []*errors.CompileError {
	if c.errs == nil {
		return nil
	}
	result := make([]*errors.CompileError, 0, len(c.errs.Errors))
	for _, err := range c.errs.Errors {
		if ce, ok := err.(*errors.CompileError); ok {
			result = append(result, ce)
		}
	}
	return result
}

func (c *Compiler) reset(source string, chunk *bytecode.Chunk) {
	c.lexer.Reset(source)
	c.chunk = chunk
	c.previous = token.Token{}
	c.current = token.Token{}
	c.hadError = false
	c.panicMode = false
	c.errs = &multierror.Error{ErrorFormat: errors.ListFormat}
	c.depth = 0
}

func newUnitID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()
}

// advance moves current into previous and pulls the next token, reporting
// and skipping any ERROR tokens so current is always a grammar token.
func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lexer.Next()
		if c.current.Type != token.ERROR {
			return
		}
		c.errorAtCurrent(lexicalErrorCode(c.current.Literal), c.current.Literal)
	}
}

// consume advances past the current token if it has the expected type.
// Otherwise it reports an error at the current token and leaves it in place.
func (c *Compiler) consume(expected token.Type, code errors.ErrorCode, message string) {
	if c.current.Type == expected {
		c.advance()
		return
	}
	c.errorAtCurrent(code, message)
}

func (c *Compiler) expression() {
	c.parsePrecedence(LOWEST)
}

// parsePrecedence compiles an expression whose operators all bind at least
// as tightly as precedence.
func (c *Compiler) parsePrecedence(precedence int) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.maxDepth {
		c.errorAtCurrent(errors.E1009, "maximum nesting depth exceeded")
		return
	}

	c.advance()
	prefix := c.prefixParseFns[c.previous.Type]
	if prefix == nil {
		c.errorAtPrevious(errors.E1004, "expect expression")
		return
	}
	prefix()

	for precedence < c.currentPrecedence() {
		c.advance()
		infix := c.infixParseFns[c.previous.Type]
		if infix == nil {
			return
		}
		infix()
	}
}

// currentPrecedence returns the precedence of the current token.
func (c *Compiler) currentPrecedence() int {
	if p, ok := precedences[c.current.Type]; ok {
		return p
	}
	return LOWEST
}

func (c *Compiler) grouping() {
	c.expression()
	c.consume(token.RPAREN, errors.E1003, "expect ')' after expression")
}

func (c *Compiler) number() {
	value, err := strconv.ParseFloat(c.previous.Literal, 64)
	if err != nil || math.IsInf(value, 0) {
		c.errorAtPrevious(errors.E1008, fmt.Sprintf("invalid number literal %q", c.previous.Literal))
		return
	}
	c.emitConstant(value)
}

func (c *Compiler) unary() {
	// Recursing into the operand moves previous past the operator
	operator := c.previous
	c.expression()
	switch operator.Type {
	case token.MINUS:
		c.emitOp(op.Negate, operator.Line)
	}
}

func (c *Compiler) binary() {
	operator := c.previous
	c.parsePrecedence(precedences[operator.Type])
	switch operator.Type {
	case token.PLUS:
		c.emitOp(op.Add, operator.Line)
	case token.MINUS:
		c.emitOp(op.Subtract, operator.Line)
	case token.ASTERISK:
		c.emitOp(op.Multiply, operator.Line)
	case token.SLASH:
		c.emitOp(op.Divide, operator.Line)
	}
}

func (c *Compiler) emitOp(code op.Code, line int) {
	c.emitByte(byte(code), line)
}

func (c *Compiler) emitByte(b byte, line int) {
	c.chunk.Write(b, line)
	c.logger.Trace().
		Int("offset", c.chunk.Count()-1).
		Uint8("byte", b).
		Int("line", line).
		Msg("emit")
}

func (c *Compiler) emitConstant(value any) {
	line := c.previous.Line
	index := c.makeConstant(value)
	c.emitOp(op.LoadConst, line)
	c.emitByte(index, line)
}

// makeConstant adds value to the chunk's constant pool. When the pool is
// full an error is reported and index 0 is returned so emission can go on.
func (c *Compiler) makeConstant(value any) byte {
	index, err := c.chunk.AddConstant(value)
	if err != nil {
		c.errorAtPrevious(errors.E2008, "too many constants in one unit")
		return 0
	}
	return byte(index)
}

func (c *Compiler) errorAtCurrent(code errors.ErrorCode, message string) {
	c.errorAt(c.current, code, message)
}

func (c *Compiler) errorAtPrevious(code errors.ErrorCode, message string) {
	c.errorAt(c.previous, code, message)
}

func (c *Compiler) errorAt(tok token.Token, code errors.ErrorCode, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	pos := tok.Position()
	err := &errors.CompileError{
		Code:    code,
		Message: message,
		Line:    pos.Line,
		Offset:  pos.Offset,
		Length:  tok.Length,
	}
	switch tok.Type {
	case token.EOF:
		err.Where = "at end"
	case token.ERROR:
		// The message already describes the offending text
	default:
		err.Where = fmt.Sprintf("at '%s'", tok.Literal)
	}
	c.errs = multierror.Append(c.errs, err)
	fmt.Fprintln(c.diagnostics, err.Error())
	c.logger.Debug().Err(err).Str("code", code.String()).Msg("compile error")
}

func lexicalErrorCode(message string) errors.ErrorCode {
	switch message {
	case lexer.ErrUnterminatedString, lexer.ErrUnterminatedAtEOF:
		return errors.E1002
	default:
		return errors.E1001
	}
}
