package vm

import (
	"io"

	"github.com/rs/zerolog"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithStdout sets the writer results are printed to by callers such as the
// REPL. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.stdout = w
	}
}

// WithStderr sets the writer compile diagnostics are streamed to. Defaults
// to os.Stderr.
func WithStderr(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.stderr = w
	}
}

// WithLogger sets the logger used by the VM and by the compiler it drives.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VirtualMachine) {
		vm.logger = logger
	}
}

// WithTrace enables logging of every executed instruction and the stack at
// debug level.
func WithTrace(enabled bool) Option {
	return func(vm *VirtualMachine) {
		vm.trace = enabled
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}

// WithMaxDepth limits expression nesting in compiled source.
func WithMaxDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		vm.maxDepth = depth
	}
}
