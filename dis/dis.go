// Package dis disassembles compiled Cascade chunks into a readable listing.
package dis

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/cascade-lang/cascade/bytecode"
	"github.com/cascade-lang/cascade/internal/table"
	"github.com/cascade-lang/cascade/op"
)

// Instruction is one decoded instruction of a chunk.
type Instruction struct {
	Offset   int     `json:"offset"`
	Opcode   op.Code `json:"opcode"`
	Name     string  `json:"name"`
	Operands []int   `json:"operands,omitempty"`
	Line     int     `json:"line"`

	// SameLine is set when the instruction shares the previous
	// instruction's source line.
	SameLine bool `json:"same_line"`

	// Constant is the value a LOAD_CONST refers to.
	Constant any `json:"constant,omitempty"`
}

// Disassemble decodes every instruction in chunk. Unknown opcodes are
// listed as single-byte instructions. An error is returned if an operand
// runs past the end of the code or a constant index is out of range.
func Disassemble(chunk *bytecode.Chunk) ([]Instruction, error) {
	var instructions []Instruction
	offset := 0
	count := chunk.Count()
	for offset < count {
		code := chunk.OpAt(offset)
		info := op.GetInfo(code)
		instr := Instruction{
			Offset: offset,
			Opcode: code,
			Name:   code.String(),
			Line:   chunk.LineAt(offset),
		}
		if offset > 0 && chunk.LineAt(offset) == chunk.LineAt(offset-1) {
			instr.SameLine = true
		}
		if offset+info.Size() > count {
			return nil, fmt.Errorf("truncated %s instruction at offset %d", instr.Name, offset)
		}
		for i := 0; i < info.OperandCount; i++ {
			instr.Operands = append(instr.Operands, int(chunk.ByteAt(offset+1+i)))
		}
		if code == op.LoadConst {
			index := instr.Operands[0]
			if index >= chunk.ConstantCount() {
				return nil, fmt.Errorf("constant index %d out of range at offset %d", index, offset)
			}
			instr.Constant = chunk.ConstantAt(index)
		}
		instructions = append(instructions, instr)
		offset += info.Size()
	}
	return instructions, nil
}

// Print writes a listing of instructions under a "== name ==" heading,
// one instruction per line:
//
//	0000    1 LOAD_CONST          0 '1'
//	0002    | LOAD_CONST          1 '2'
func Print(w io.Writer, name string, instructions []Instruction) {
	nameColor := color.New(color.FgCyan).SprintFunc()
	valueColor := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "== %s ==\n", name)
	for _, instr := range instructions {
		line := "   |"
		if !instr.SameLine {
			line = fmt.Sprintf("%4d", instr.Line)
		}
		// Pad before coloring so escape codes don't count toward the width
		opName := fmt.Sprintf("%-16s", instr.Name)
		if len(instr.Operands) == 0 {
			fmt.Fprintf(w, "%04d %s %s\n", instr.Offset, line, nameColor(instr.Name))
			continue
		}
		fmt.Fprintf(w, "%04d %s %s %4d '%s'\n",
			instr.Offset, line, nameColor(opName), instr.Operands[0],
			valueColor(bytecode.FormatValue(instr.Constant)))
	}
}

// PrintTable writes instructions as a bordered table.
func PrintTable(w io.Writer, instructions []Instruction) error {
	t := table.NewTable(w).
		WithHeader([]string{"OFFSET", "LINE", "OPCODE", "OPERANDS", "INFO"}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter, table.AlignCenter, table.AlignCenter,
			table.AlignCenter, table.AlignCenter,
		}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight, table.AlignRight, table.AlignLeft,
			table.AlignRight, table.AlignLeft,
		})
	for _, instr := range instructions {
		var operands, info string
		if len(instr.Operands) > 0 {
			operands = strconv.Itoa(instr.Operands[0])
		}
		if instr.Opcode == op.LoadConst {
			info = bytecode.FormatValue(instr.Constant)
		}
		t.Append([]string{
			strconv.Itoa(instr.Offset),
			strconv.Itoa(instr.Line),
			instr.Name,
			operands,
			info,
		})
	}
	return t.Render()
}
