package cascade

import (
	"bytes"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cascade-lang/cascade/errors"
	"github.com/cascade-lang/cascade/vm"
)

func TestBasicUsage(t *testing.T) {
	result, err := Eval("1 + 1")
	require.Nil(t, err)
	require.Equal(t, 2.0, result)
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"(1 + 2) * 3", 9},
		{"-(4 / 2)", -2},
		{"10 - 4 - 3", 3},
		{"2 * (3 + 4) * 5", 70},
		{"-2 * -2", 4},
		{"1.5 * 4", 6},
	}
	for _, tt := range tests {
		result, err := Eval(tt.input)
		require.Nil(t, err, "input: %s", tt.input)
		require.Equal(t, tt.expected, result, "input: %s", tt.input)
	}
}

func TestCompileError(t *testing.T) {
	var diag bytes.Buffer
	_, err := Compile("(1 +", WithDiagnostics(&diag))
	require.Error(t, err)
	require.Equal(t, "[line 1] Error at end: expect expression", err.Error())
	require.Equal(t, err.Error()+"\n", diag.String())

	var compileErr *errors.CompileError
	require.True(t, stderrors.As(err, &compileErr))
	require.Equal(t, errors.E1004, compileErr.Code)
}

func TestCompileErrorIsQuietByDefault(t *testing.T) {
	result, err := Eval("1 2")
	require.Nil(t, result)
	require.EqualError(t, err, "[line 1] Error at '2': expect end of expression")
}

func TestMaxDepth(t *testing.T) {
	_, err := Eval("((1))", WithMaxDepth(2))
	require.EqualError(t, err, "[line 1] Error at '1': maximum nesting depth exceeded")
}

type countingObserver struct {
	vm.NoOpObserver
	mu    sync.Mutex
	steps int
}

func (o *countingObserver) OnStep(vm.StepEvent) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.steps++
	return true
}

func TestObserver(t *testing.T) {
	observer := &countingObserver{}
	_, err := Eval("1 + 2", WithObserver(observer))
	require.Nil(t, err)
	require.Equal(t, 4, observer.steps)
}

func TestConcurrentRuns(t *testing.T) {
	chunk, err := Compile("(1 + 2) * (3 + 4)")
	require.Nil(t, err)

	var wg sync.WaitGroup
	results := make([]any, 16)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Run(chunk)
		}(i)
	}
	wg.Wait()
	for i := range results {
		require.Nil(t, errs[i])
		require.Equal(t, 21.0, results[i])
	}
}
