package bytecode

import (
	"errors"

	"github.com/cascade-lang/cascade/op"
)

// MaxConstants is the capacity of a chunk's constant pool. Instructions
// address the pool with a single byte operand.
const MaxConstants = 256

// ErrTooManyConstants is returned by AddConstant when the pool is full.
var ErrTooManyConstants = errors.New("too many constants in one chunk")

// Chunk is an append-only instruction buffer with a constant pool and a
// per-byte line table. The zero value is an empty chunk ready for use.
type Chunk struct {
	code      []byte
	lines     []int
	constants []any
}

// NewChunk returns an empty chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends one byte of code produced by the given source line.
func (c *Chunk) Write(b byte, line int) {
	c.code = append(c.code, b)
	c.lines = append(c.lines, line)
}

// WriteOp appends an opcode byte produced by the given source line.
func (c *Chunk) WriteOp(code op.Code, line int) {
	c.Write(byte(code), line)
}

// AddConstant appends a value to the constant pool and returns its index.
// The value is refused once the pool holds MaxConstants entries.
func (c *Chunk) AddConstant(value any) (int, error) {
	if len(c.constants) >= MaxConstants {
		return 0, ErrTooManyConstants
	}
	c.constants = append(c.constants, value)
	return len(c.constants) - 1, nil
}

// Count returns the number of code bytes in the chunk.
func (c *Chunk) Count() int {
	return len(c.code)
}

// ByteAt returns the code byte at the given offset.
func (c *Chunk) ByteAt(offset int) byte {
	return c.code[offset]
}

// OpAt returns the code byte at the given offset as an opcode.
func (c *Chunk) OpAt(offset int) op.Code {
	return op.Code(c.code[offset])
}

// LineAt returns the source line of the code byte at the given offset.
// If the offset is out of range, 0 is returned.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.lines) {
		return 0
	}
	return c.lines[offset]
}

// ConstantCount returns the number of constants in the pool.
func (c *Chunk) ConstantCount() int {
	return len(c.constants)
}

// ConstantAt returns the constant at the given pool index.
func (c *Chunk) ConstantAt(index int) any {
	return c.constants[index]
}

// Code returns a copy of the chunk's code bytes.
func (c *Chunk) Code() []byte {
	if c.code == nil {
		return nil
	}
	dst := make([]byte, len(c.code))
	copy(dst, c.code)
	return dst
}

// Reset empties the chunk, keeping its allocated capacity.
func (c *Chunk) Reset() {
	c.code = c.code[:0]
	c.lines = c.lines[:0]
	for i := range c.constants {
		c.constants[i] = nil
	}
	c.constants = c.constants[:0]
}

// Stats returns statistics about this chunk.
func (c *Chunk) Stats() Stats {
	stats := Stats{
		ByteCount:     len(c.code),
		ConstantCount: len(c.constants),
	}
	for offset := 0; offset < len(c.code); {
		info := op.GetInfo(op.Code(c.code[offset]))
		stats.InstructionCount++
		if len(c.lines) > 0 && (offset == 0 || c.lines[offset] != c.lines[offset-1]) {
			stats.LineCount++
		}
		offset += info.Size()
	}
	return stats
}
