package bytecode

// Stats contains statistics about a compiled chunk.
type Stats struct {
	// InstructionCount is the number of instructions, counting each opcode
	// once regardless of its operands.
	InstructionCount int

	// ByteCount is the total number of code bytes.
	ByteCount int

	// ConstantCount is the number of constants in the constant pool.
	ConstantCount int

	// LineCount is the number of runs of consecutive instructions that share
	// a source line.
	LineCount int
}
