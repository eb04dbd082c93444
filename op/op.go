// Package op defines opcodes used by the Cascade compiler and virtual machine.
package op

// Code is a single opcode byte in a chunk's instruction stream.
type Code byte

const (
	Return    Code = 0
	LoadConst Code = 1 // operand: one-byte constant pool index
	Negate    Code = 2

	// Arithmetic
	Add      Code = 3
	Subtract Code = 4
	Multiply Code = 5
	Divide   Code = 6
)

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
}

// Known reports whether the info describes a defined opcode.
func (i Info) Known() bool {
	return i.Name != ""
}

// Size returns the number of bytes the instruction occupies in a chunk,
// counting the opcode byte itself.
func (i Info) Size() int {
	return 1 + i.OperandCount
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op    Code
		name  string
		count int
	}
	ops := []opInfo{
		{Add, "ADD", 0},
		{Divide, "DIVIDE", 0},
		{LoadConst, "LOAD_CONST", 1},
		{Multiply, "MULTIPLY", 0},
		{Negate, "NEGATE", 0},
		{Return, "RETURN", 0},
		{Subtract, "SUBTRACT", 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:         o.name,
			Code:         o.op,
			OperandCount: o.count,
		}
	}
}

// GetInfo returns information about the given opcode. Undefined opcodes
// yield an Info with an empty name.
func GetInfo(op Code) Info {
	return infos[op]
}

// String returns the opcode's name, or a placeholder for undefined opcodes.
func (c Code) String() string {
	if info := GetInfo(c); info.Known() {
		return info.Name
	}
	return "UNKNOWN"
}
