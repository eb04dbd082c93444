// Package cascade compiles and evaluates Cascade arithmetic expressions.
//
// The typical entry point is Eval:
//
//	result, err := cascade.Eval("(1 + 2) * 3") // 9.0
//
// Compile and Run split the two phases so a chunk can be compiled once and
// executed many times:
//
//	chunk, err := cascade.Compile(source)
//	...
//	result, err := cascade.Run(chunk)
package cascade

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/cascade-lang/cascade/bytecode"
	"github.com/cascade-lang/cascade/compiler"
	"github.com/cascade-lang/cascade/vm"
)

// Option configures a Cascade compilation or execution.
type Option func(*options)

type options struct {
	diagnostics io.Writer
	logger      zerolog.Logger
	maxDepth    int
	observer    vm.Observer
}

func collectOptions(opts ...Option) *options {
	o := &options{
		diagnostics: io.Discard,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithDiagnostics streams compile diagnostics to w as they are found, one
// per line. By default they are only returned as the Compile error.
func WithDiagnostics(w io.Writer) Option {
	return func(o *options) {
		o.diagnostics = w
	}
}

// WithLogger sets the logger used while compiling and running.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxDepth limits how deeply expressions may nest.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// Compile compiles source into a chunk. If compilation fails the error
// lists every reported diagnostic, one per line.
//
// The returned chunk is not modified by Run, so several goroutines may run
// the same chunk at once.
func Compile(source string, opts ...Option) (*bytecode.Chunk, error) {
	o := collectOptions(opts...)
	c := compiler.New(&compiler.Config{
		Diagnostics: o.diagnostics,
		Logger:      &o.logger,
		MaxDepth:    o.maxDepth,
	})
	chunk := bytecode.NewChunk()
	if !c.Compile(source, chunk) {
		return nil, c.Err()
	}
	return chunk, nil
}

// Run executes a compiled chunk on a fresh virtual machine and returns the
// resulting value.
func Run(chunk *bytecode.Chunk, opts ...Option) (any, error) {
	o := collectOptions(opts...)
	vmOpts := []vm.Option{vm.WithLogger(o.logger)}
	if o.observer != nil {
		vmOpts = append(vmOpts, vm.WithObserver(o.observer))
	}
	return vm.New(vmOpts...).Run(chunk)
}

// Eval is a convenience function that compiles and runs source code.
// It is equivalent to Compile followed by Run.
func Eval(source string, opts ...Option) (any, error) {
	chunk, err := Compile(source, opts...)
	if err != nil {
		return nil, err
	}
	return Run(chunk, opts...)
}
