package vm

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/cascade-lang/cascade/bytecode"
	"github.com/cascade-lang/cascade/op"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every instruction.
	StepAll StepMode = iota

	// StepNone never calls OnStep.
	StepNone

	// StepSampled calls OnStep every N instructions.
	StepSampled

	// StepOnLine calls OnStep when the source line changes.
	StepOnLine
)

// ObserverConfig specifies what events an observer wants to receive.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int
}

// NewObserverConfig creates a config for the given mode with a default
// sample interval.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer receives execution events from the VM. It can be used for
// tracing, coverage or profiling. Methods are called synchronously, before
// the instruction executes.
type Observer interface {
	// Config is called once when a run starts.
	Config() ObserverConfig

	// OnStep is called according to the configured StepMode. Returning
	// false halts execution with ErrHalted.
	OnStep(event StepEvent) bool
}

// StepEvent describes the instruction about to execute.
type StepEvent struct {
	// Offset of the instruction in the chunk.
	Offset int

	Opcode     op.Code
	OpcodeName string

	// Line is the source line the instruction was compiled from.
	Line int

	// Stack holds the live stack slots, bottom first. It is only valid
	// during the callback and must not be modified.
	Stack []any
}

// NoOpObserver is an Observer that does nothing. Embed it to provide
// defaults for methods you don't need.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig { return NewObserverConfig(StepAll) }

func (NoOpObserver) OnStep(StepEvent) bool { return true }

var _ Observer = NoOpObserver{}

// traceObserver logs every instruction together with the stack contents.
type traceObserver struct {
	logger zerolog.Logger
}

func (o *traceObserver) Config() ObserverConfig { return NewObserverConfig(StepAll) }

func (o *traceObserver) OnStep(event StepEvent) bool {
	o.logger.Debug().
		Int("offset", event.Offset).
		Int("line", event.Line).
		Str("op", event.OpcodeName).
		Str("stack", formatStack(event.Stack)).
		Msg("step")
	return true
}

// formatStack renders stack slots as "[ 1 ][ 2 ]".
func formatStack(stack []any) string {
	var b strings.Builder
	for _, value := range stack {
		b.WriteString("[ ")
		b.WriteString(bytecode.FormatValue(value))
		b.WriteString(" ]")
	}
	return b.String()
}
