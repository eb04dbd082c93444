package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"

	"github.com/cascade-lang/cascade/bytecode"
	"github.com/cascade-lang/cascade/op"
	"github.com/cascade-lang/cascade/vm"
)

type execResult struct {
	stdout string
	stderr string
	err    error
}

// execute runs the CLI with an isolated home directory.
func execute(t *testing.T, stdin string, args ...string) execResult {
	t.Helper()
	homedir.DisableCache = true
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return execResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return exitOK
	}
	var exitErr *exitError
	require.ErrorAs(t, err, &exitErr)
	return exitErr.code
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunCode(t *testing.T) {
	r := execute(t, "", "--code", "(1 + 2) * 3")
	require.Nil(t, r.err)
	require.Equal(t, "9\n", r.stdout)
	require.Empty(t, r.stderr)
}

func TestRunFile(t *testing.T) {
	path := writeFile(t, "expr.cas", "-(4 / 2)\n")
	r := execute(t, "", path)
	require.Nil(t, r.err)
	require.Equal(t, "-2\n", r.stdout)
}

func TestRunStdin(t *testing.T) {
	r := execute(t, "2 * 21", "--stdin")
	require.Nil(t, r.err)
	require.Equal(t, "42\n", r.stdout)
}

func TestRunCompileError(t *testing.T) {
	r := execute(t, "", "-c", "1 +")
	require.Equal(t, exitDataErr, exitCode(t, r.err))
	require.Equal(t, "[line 1] Error at end: expect expression\n", r.stderr)
	require.Empty(t, r.stdout)
}

func TestExecRuntimeError(t *testing.T) {
	chunk := bytecode.NewChunk()
	_, err := chunk.AddConstant(1.0)
	require.Nil(t, err)
	for i := 0; i <= vm.StackSize; i++ {
		chunk.WriteOp(op.LoadConst, 1)
		chunk.Write(0, 1)
	}
	chunk.WriteOp(op.Return, 1)
	data, err := bytecode.MarshalCBOR(chunk)
	require.Nil(t, err)

	path := filepath.Join(t.TempDir(), "overflow.cbor")
	require.Nil(t, os.WriteFile(path, data, 0o644))
	r := execute(t, "", "exec", path)
	require.Equal(t, exitSoftware, exitCode(t, r.err))
	require.Equal(t, "stack overflow\n[line 1] in script\n", r.stderr)
	require.Empty(t, r.stdout)
}

func TestRunMissingFile(t *testing.T) {
	r := execute(t, "", filepath.Join(t.TempDir(), "missing.cas"))
	require.Equal(t, exitIOErr, exitCode(t, r.err))
}

func TestMultipleInputSources(t *testing.T) {
	path := writeFile(t, "expr.cas", "1")
	r := execute(t, "", "-c", "1", path)
	require.Equal(t, exitUsage, exitCode(t, r.err))
	require.EqualError(t, r.err, "multiple input sources specified")
}

func TestRepl(t *testing.T) {
	r := execute(t, "1 + 2\n\n4 *\n-3\n:quit\n5\n")
	require.Nil(t, r.err)
	require.Equal(t, "3\n-3\n", r.stdout)
	require.Equal(t, "[line 1] Error at end: expect expression\n", r.stderr)

	history, err := os.ReadFile(filepath.Join(os.Getenv("HOME"), ".cascade_history"))
	require.Nil(t, err)
	require.Equal(t, "1 + 2\n4 *\n-3\n", string(history))
}

func TestReplHelp(t *testing.T) {
	r := execute(t, ":help\n")
	require.Nil(t, r.err)
	require.Contains(t, r.stdout, ":quit  leave the REPL")
	require.Contains(t, r.stdout, "Reserved words: and class else false for fun if nil or print return super this true var while\n")
}

func TestNoRepl(t *testing.T) {
	r := execute(t, "1\n", "--no-repl")
	require.Equal(t, exitUsage, exitCode(t, r.err))
	require.ErrorIs(t, r.err, errNoInput)
}

func TestDis(t *testing.T) {
	r := execute(t, "", "dis", "-c", "1 + 2")
	require.Nil(t, r.err)
	expected := `
== code ==
0000    1 LOAD_CONST          0 '1'
0002    | LOAD_CONST          1 '2'
0004    | ADD
0005    | RETURN
`
	require.Equal(t, strings.TrimPrefix(expected, "\n"), r.stdout)
}

func TestDisFileName(t *testing.T) {
	path := writeFile(t, "sum.cas", "7")
	r := execute(t, "", "dis", path)
	require.Nil(t, r.err)
	require.True(t, strings.HasPrefix(r.stdout, "== sum.cas ==\n"))
}

func TestDisTable(t *testing.T) {
	r := execute(t, "", "dis", "--code=-1", "-o", "table")
	require.Nil(t, r.err)
	expected := `
+--------+------+------------+----------+------+
| OFFSET | LINE |   OPCODE   | OPERANDS | INFO |
+--------+------+------------+----------+------+
|      0 |    1 | LOAD_CONST |        0 | 1    |
|      2 |    1 | NEGATE     |          |      |
|      3 |    1 | RETURN     |          |      |
+--------+------+------------+----------+------+
`
	require.Equal(t, strings.TrimPrefix(expected, "\n"), r.stdout)
}

func TestDisJSON(t *testing.T) {
	r := execute(t, "", "dis", "-c", "5", "-o", "json", "--no-color")
	require.Nil(t, r.err)
	require.JSONEq(t, `[
		{"offset":0,"opcode":1,"name":"LOAD_CONST","operands":[0],"line":1,"same_line":false,"constant":5},
		{"offset":2,"opcode":0,"name":"RETURN","line":1,"same_line":true}
	]`, r.stdout)
}

func TestDisUnknownFormat(t *testing.T) {
	r := execute(t, "", "dis", "-c", "5", "-o", "yaml")
	require.Equal(t, exitUsage, exitCode(t, r.err))
	require.EqualError(t, r.err, "unknown output format: yaml")
}

func TestDisCompileError(t *testing.T) {
	r := execute(t, "", "dis", "-c", "(1")
	require.Equal(t, exitDataErr, exitCode(t, r.err))
	require.Equal(t, "[line 1] Error at end: expect ')' after expression\n", r.stderr)
}

func TestCompileAndExec(t *testing.T) {
	for _, format := range []string{"cbor", "json"} {
		t.Run(format, func(t *testing.T) {
			path := writeFile(t, "expr.cas", "(1 + 2) * 3")
			r := execute(t, "", "compile", path, "--format", format)
			require.Nil(t, r.err)

			compiled := strings.TrimSuffix(path, ".cas") + "." + format
			_, err := os.Stat(compiled)
			require.Nil(t, err)

			r = execute(t, "", "exec", compiled)
			require.Nil(t, r.err)
			require.Equal(t, "9\n", r.stdout)
		})
	}
}

func TestCompileOutPath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chunk.bin")
	r := execute(t, "", "compile", "-c", "4 / 2", "-O", out)
	require.Nil(t, r.err)
	r = execute(t, "", "exec", out)
	require.Nil(t, r.err)
	require.Equal(t, "2\n", r.stdout)
}

func TestExecCorruptFile(t *testing.T) {
	path := writeFile(t, "bad.cbor", "not cbor")
	r := execute(t, "", "exec", path)
	require.Equal(t, exitDataErr, exitCode(t, r.err))
	require.Contains(t, r.err.Error(), "loading ")
}

func TestCheck(t *testing.T) {
	r := execute(t, "", "check", "-c", "1 + 2")
	require.Nil(t, r.err)
	require.Empty(t, r.stderr)

	r = execute(t, "", "check", "-c", "(1 + )")
	require.Equal(t, exitDataErr, exitCode(t, r.err))
	require.Contains(t, r.stderr, "error[E1004]: expect expression (at ')')")
	require.Contains(t, r.stderr, " 1 | (1 + )")
}

func TestTokens(t *testing.T) {
	r := execute(t, "", "tokens", "-c", "1 + x")
	require.Nil(t, r.err)
	expected := `
+------+--------+---------+
| LINE | TYPE   | LITERAL |
+------+--------+---------+
|    1 | NUMBER | 1       |
|    1 | +      | +       |
|    1 | IDENT  | x       |
|    1 | EOF    |         |
+------+--------+---------+
`
	require.Equal(t, strings.TrimPrefix(expected, "\n"), r.stdout)
}

func TestTokensJSON(t *testing.T) {
	r := execute(t, "", "tokens", "-c", "nil", "-o", "json", "--no-color")
	require.Nil(t, r.err)
	require.Contains(t, r.stdout, `"Type": "NIL"`)
	require.Contains(t, r.stdout, `"Type": "EOF"`)
}

func TestInvalidLogLevel(t *testing.T) {
	t.Setenv("CASCADE_LOG_LEVEL", "loud")
	r := execute(t, "", "-c", "1")
	require.Equal(t, exitUsage, exitCode(t, r.err))
	require.EqualError(t, r.err, `invalid log level "loud"`)
}

func TestConfigFile(t *testing.T) {
	config := writeFile(t, "cascade.yaml", "max-depth: 2\n")
	r := execute(t, "", "--config", config, "-c", "((1))")
	require.Equal(t, exitDataErr, exitCode(t, r.err))
	require.Equal(t, "[line 1] Error at '1': maximum nesting depth exceeded\n", r.stderr)
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("CASCADE_MAX_DEPTH", "2")
	r := execute(t, "", "-c", "((1))")
	require.Equal(t, exitDataErr, exitCode(t, r.err))
}
