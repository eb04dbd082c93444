// Package vm provides a VirtualMachine that executes compiled Cascade chunks.
package vm

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/cascade-lang/cascade/bytecode"
	"github.com/cascade-lang/cascade/compiler"
	"github.com/cascade-lang/cascade/errors"
	"github.com/cascade-lang/cascade/op"
)

// StackSize is the number of value slots available to a running chunk.
const StackSize = 256

// ErrHalted is returned when an observer stops execution.
var ErrHalted = stderrors.New("execution halted by observer")

// Result classifies the outcome of Interpret.
type Result int

const (
	OK Result = iota
	CompileError
	RuntimeError
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case CompileError:
		return "compile error"
	case RuntimeError:
		return "runtime error"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// VirtualMachine is a stack machine for Cascade bytecode. A VirtualMachine
// runs one chunk at a time and must not be shared between goroutines.
type VirtualMachine struct {
	chunk *bytecode.Chunk
	ip    int
	sp    int // next free stack slot
	stack [StackSize]any

	stdout   io.Writer
	stderr   io.Writer
	logger   zerolog.Logger
	trace    bool
	maxDepth int

	// observer receives step events. If nil, no callbacks are made.
	observer Observer
}

// New creates a new Virtual Machine.
func New(options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(vm)
	}
	return vm
}

// Interpret compiles source into a fresh chunk and, if compilation
// succeeds, runs it and prints the resulting value to stdout. Compile
// diagnostics are streamed to stderr as they are found and also returned
// as the error.
func (vm *VirtualMachine) Interpret(source string) (Result, any, error) {
	chunk := bytecode.NewChunk()
	c := compiler.New(&compiler.Config{
		Diagnostics: vm.stderr,
		Logger:      &vm.logger,
		MaxDepth:    vm.maxDepth,
	})
	if !c.Compile(source, chunk) {
		return CompileError, nil, c.Err()
	}
	value, err := vm.Run(chunk)
	if err != nil {
		return RuntimeError, nil, err
	}
	fmt.Fprintln(vm.stdout, bytecode.FormatValue(value))
	return OK, value, nil
}

// Run executes chunk from its first instruction and returns the value
// produced by its RETURN instruction.
func (vm *VirtualMachine) Run(chunk *bytecode.Chunk) (any, error) {
	vm.chunk = chunk
	vm.ip = 0
	vm.resetStack()
	defer func() { vm.chunk = nil }()

	observer := vm.observer
	if observer == nil && vm.trace {
		observer = &traceObserver{logger: vm.logger}
	}
	value, err := vm.eval(observer)
	if err != nil {
		vm.logger.Debug().Err(err).Msg("run failed")
		vm.resetStack()
		return nil, err
	}
	return value, nil
}

func (vm *VirtualMachine) eval(observer Observer) (any, error) {
	var cfg ObserverConfig
	if observer != nil {
		cfg = NormalizeConfig(observer.Config())
	}
	var steps int
	lastLine := -1

	for vm.ip < vm.chunk.Count() {
		offset := vm.ip
		opcode := vm.chunk.OpAt(offset)

		if observer != nil && vm.shouldObserve(cfg, steps, lastLine) {
			event := StepEvent{
				Offset:     offset,
				Opcode:     opcode,
				OpcodeName: op.GetInfo(opcode).Name,
				Line:       vm.chunk.LineAt(offset),
				Stack:      vm.stack[:vm.sp],
			}
			if !observer.OnStep(event) {
				return nil, ErrHalted
			}
		}
		steps++
		lastLine = vm.chunk.LineAt(offset)

		vm.ip++

		switch opcode {
		case op.LoadConst:
			index, err := vm.fetch()
			if err != nil {
				return nil, err
			}
			if int(index) >= vm.chunk.ConstantCount() {
				return nil, vm.runtimeError(errors.E3007, "constant index %d out of range", index)
			}
			if err := vm.push(vm.chunk.ConstantAt(int(index))); err != nil {
				return nil, err
			}
		case op.Negate:
			value, err := vm.pop()
			if err != nil {
				return nil, err
			}
			number, ok := value.(float64)
			if !ok {
				return nil, vm.runtimeError(errors.E3001, "operand must be a number")
			}
			if err := vm.push(-number); err != nil {
				return nil, err
			}
		case op.Add, op.Subtract, op.Multiply, op.Divide:
			if err := vm.binaryOp(opcode); err != nil {
				return nil, err
			}
		case op.Return:
			return vm.pop()
		default:
			return nil, vm.runtimeError(errors.E3007, "unknown opcode %d", byte(opcode))
		}
	}
	return nil, vm.runtimeError(errors.E3007, "chunk ended without RETURN")
}

func (vm *VirtualMachine) shouldObserve(cfg ObserverConfig, steps, lastLine int) bool {
	switch cfg.StepMode {
	case StepAll:
		return true
	case StepSampled:
		return steps%cfg.SampleInterval == 0
	case StepOnLine:
		return vm.chunk.LineAt(vm.ip) != lastLine
	default:
		return false
	}
}

func (vm *VirtualMachine) binaryOp(opcode op.Code) error {
	right, err := vm.pop()
	if err != nil {
		return err
	}
	left, err := vm.pop()
	if err != nil {
		return err
	}
	a, aOK := left.(float64)
	b, bOK := right.(float64)
	if !aOK || !bOK {
		return vm.runtimeError(errors.E3001, "operands must be numbers")
	}
	var result float64
	switch opcode {
	case op.Add:
		result = a + b
	case op.Subtract:
		result = a - b
	case op.Multiply:
		result = a * b
	case op.Divide:
		result = a / b
	}
	return vm.push(result)
}

// fetch reads the operand byte of the current instruction.
func (vm *VirtualMachine) fetch() (byte, error) {
	if vm.ip >= vm.chunk.Count() {
		return 0, vm.runtimeError(errors.E3007, "truncated instruction")
	}
	b := vm.chunk.ByteAt(vm.ip)
	vm.ip++
	return b, nil
}

func (vm *VirtualMachine) push(value any) error {
	if vm.sp >= StackSize {
		return vm.runtimeError(errors.E3006, "stack overflow")
	}
	vm.stack[vm.sp] = value
	vm.sp++
	return nil
}

func (vm *VirtualMachine) pop() (any, error) {
	if vm.sp == 0 {
		return nil, vm.runtimeError(errors.E3007, "stack underflow")
	}
	vm.sp--
	value := vm.stack[vm.sp]
	vm.stack[vm.sp] = nil
	return value, nil
}

func (vm *VirtualMachine) resetStack() {
	for i := 0; i < vm.sp; i++ {
		vm.stack[i] = nil
	}
	vm.sp = 0
}

// runtimeError builds an error attributed to the line of the instruction
// being executed.
func (vm *VirtualMachine) runtimeError(code errors.ErrorCode, format string, args ...any) *errors.RuntimeError {
	offset := vm.ip - 1
	if offset < 0 {
		offset = 0
	}
	return errors.RuntimeErrorf(code, vm.chunk.LineAt(offset), format, args...)
}
