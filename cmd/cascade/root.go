package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cascade-lang/cascade/bytecode"
	"github.com/cascade-lang/cascade/compiler"
	"github.com/cascade-lang/cascade/dis"
	"github.com/cascade-lang/cascade/errors"
	"github.com/cascade-lang/cascade/internal/lexer"
	"github.com/cascade-lang/cascade/internal/table"
	"github.com/cascade-lang/cascade/vm"
)

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "cascade [file]",
		Short:         "Compile and run Cascade expressions",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(cmd); err != nil {
				return exitWith(exitUsage, err)
			}
			return nil
		},
		RunE: a.runHandler,
	}
	pf := root.PersistentFlags()
	pf.Bool("no-color", false, "Disable colored output")
	pf.String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	pf.String("config", "", "Config file (default .cascade.yaml in the working or home directory)")
	pf.Int("max-depth", compiler.DefaultMaxDepth, "Maximum expression nesting depth")

	f := root.Flags()
	f.StringP("code", "c", "", "Code to evaluate")
	f.Bool("stdin", false, "Read code from stdin")
	f.Bool("trace", false, "Log every executed instruction at debug level")
	f.Bool("no-repl", false, "Disable the REPL")
	f.String("history-file", "", "REPL history file (default ~/.cascade_history)")

	root.AddCommand(
		a.disCmd(),
		a.compileCmd(),
		a.execCmd(),
		a.checkCmd(),
		a.tokensCmd(),
	)
	return root
}

func (a *app) newVM(cmd *cobra.Command) *vm.VirtualMachine {
	return vm.New(
		vm.WithStdout(cmd.OutOrStdout()),
		vm.WithStderr(cmd.ErrOrStderr()),
		vm.WithLogger(a.logger),
		vm.WithTrace(a.v.GetBool("trace")),
		vm.WithMaxDepth(a.v.GetInt("max-depth")),
	)
}

func (a *app) newCompiler(cmd *cobra.Command) *compiler.Compiler {
	return compiler.New(&compiler.Config{
		Diagnostics: cmd.ErrOrStderr(),
		Logger:      &a.logger,
		MaxDepth:    a.v.GetInt("max-depth"),
	})
}

func (a *app) shouldRunRepl(cmd *cobra.Command, args []string) bool {
	if a.v.GetBool("no-repl") || len(args) > 0 {
		return false
	}
	for _, name := range []string{"code", "stdin"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			return false
		}
	}
	return true
}

func (a *app) runHandler(cmd *cobra.Command, args []string) error {
	if a.shouldRunRepl(cmd, args) {
		return a.runRepl(cmd)
	}
	source, _, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	result, _, err := a.newVM(cmd).Interpret(source)
	return interpretError(cmd.ErrOrStderr(), result, err)
}

// interpretError maps an Interpret outcome to the process exit status.
// Compile diagnostics have already been streamed to stderr; runtime errors
// are printed here.
func interpretError(stderr io.Writer, result vm.Result, err error) error {
	switch result {
	case vm.CompileError:
		return exitReported(exitDataErr, err)
	case vm.RuntimeError:
		fmt.Fprintln(stderr, red(err.Error()))
		return exitReported(exitSoftware, err)
	}
	return nil
}

// compileSource compiles source, streaming diagnostics to stderr.
func (a *app) compileSource(cmd *cobra.Command, source string) (*bytecode.Chunk, error) {
	chunk := bytecode.NewChunk()
	c := a.newCompiler(cmd)
	if !c.Compile(source, chunk) {
		return nil, exitReported(exitDataErr, c.Err())
	}
	return chunk, nil
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "Code to read instead of a file")
	cmd.Flags().Bool("stdin", false, "Read code from stdin")
}

func (a *app) disCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble compiled bytecode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := checkFormat(a.v.GetString("output"), "text", "table", "json")
			if err != nil {
				return err
			}
			source, name, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			chunk, err := a.compileSource(cmd, source)
			if err != nil {
				return err
			}
			instructions, err := dis.Disassemble(chunk)
			if err != nil {
				return exitWith(exitSoftware, err)
			}
			out := cmd.OutOrStdout()
			switch format {
			case "table":
				return dis.PrintTable(out, instructions)
			case "json":
				data, err := getOutputJSON(instructions)
				if err != nil {
					return exitWith(exitSoftware, err)
				}
				fmt.Fprintln(out, string(data))
			default:
				dis.Print(out, name, instructions)
			}
			return nil
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().StringP("output", "o", "text", "Output format (text, table, json)")
	return cmd
}

func (a *app) compileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [file]",
		Short: "Compile source to a bytecode file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := checkFormat(a.v.GetString("format"), "cbor", "json")
			if err != nil {
				return err
			}
			source, _, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			chunk, err := a.compileSource(cmd, source)
			if err != nil {
				return err
			}
			var data []byte
			if format == "json" {
				data, err = bytecode.Marshal(chunk)
			} else {
				data, err = bytecode.MarshalCBOR(chunk)
			}
			if err != nil {
				return exitWith(exitSoftware, err)
			}
			path := a.v.GetString("out")
			if path == "" {
				if len(args) == 0 {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				path = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "." + format
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return exitWith(exitIOErr, err)
			}
			stats := chunk.Stats()
			a.logger.Info().
				Str("path", path).
				Int("size", len(data)).
				Int("instructions", stats.InstructionCount).
				Int("constants", stats.ConstantCount).
				Msg("chunk written")
			return nil
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().StringP("out", "O", "", "Output path (default: input name with the format extension)")
	cmd.Flags().StringP("format", "f", "cbor", "Encoding (cbor, json)")
	return cmd
}

func (a *app) execCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <chunk file>",
		Short: "Run a compiled bytecode file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return exitWith(exitIOErr, err)
			}
			var chunk *bytecode.Chunk
			if filepath.Ext(args[0]) == ".json" {
				chunk, err = bytecode.Unmarshal(data)
			} else {
				chunk, err = bytecode.UnmarshalCBOR(data)
			}
			if err != nil {
				return exitWith(exitDataErr, fmt.Errorf("loading %s: %w", args[0], err))
			}
			value, err := a.newVM(cmd).Run(chunk)
			if err != nil {
				return interpretError(cmd.ErrOrStderr(), vm.RuntimeError, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), bytecode.FormatValue(value))
			return nil
		},
	}
}

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Report compile errors with source context",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			c := compiler.New(&compiler.Config{
				Diagnostics: io.Discard,
				Logger:      &a.logger,
				MaxDepth:    a.v.GetInt("max-depth"),
			})
			if c.Compile(source, bytecode.NewChunk()) {
				return nil
			}
			formatter := errors.NewFormatter(!a.v.GetBool("no-color") && isTerminal(cmd.ErrOrStderr()))
			fmt.Fprint(cmd.ErrOrStderr(), formatter.FormatMultiple(c.Errors(), source))
			return exitReported(exitDataErr, c.Err())
		},
	}
	addSourceFlags(cmd)
	return cmd
}

func (a *app) tokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "List the tokens of a source file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := checkFormat(a.v.GetString("output"), "table", "json")
			if err != nil {
				return err
			}
			source, _, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			tokens := lexer.Tokenize(source)
			out := cmd.OutOrStdout()
			if format == "json" {
				data, err := getOutputJSON(tokens)
				if err != nil {
					return exitWith(exitSoftware, err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			t := table.NewTable(out).
				WithHeader([]string{"LINE", "TYPE", "LITERAL"}).
				WithColumnAlignment([]table.Alignment{table.AlignRight, table.AlignLeft, table.AlignLeft})
			for _, tok := range tokens {
				t.Append([]string{fmt.Sprint(tok.Line), string(tok.Type), tok.Literal})
			}
			return t.Render()
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().StringP("output", "o", "table", "Output format (table, json)")
	return cmd
}
