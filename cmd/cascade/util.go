package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes follow the BSD sysexits conventions.
const (
	exitOK       = 0
	exitUsage    = 64
	exitDataErr  = 65
	exitSoftware = 70
	exitIOErr    = 74
)

// exitError carries a process exit code out of a command. When reported
// is set the error has already been shown to the user.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

func exitReported(code int, err error) error {
	return &exitError{code: code, err: err, reported: true}
}

var red = color.New(color.FgRed).SprintFunc()

func isTerminalFile(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func isTerminalIO() bool {
	return isTerminalFile(os.Stdin) && isTerminalFile(os.Stdout)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags(v *viper.Viper) {
	if v.GetBool("no-color") || !isTerminalFile(os.Stdout) {
		color.NoColor = true
	}
}

// errNoInput is returned when a command needs source and none was given.
var errNoInput = errors.New("no input provided")

// readSource determines the code to operate on. There are three
// possibilities: --code <code>, --stdin, or a path as args[0]. The second
// result names the source for listings.
func readSource(cmd *cobra.Command, args []string) (string, string, error) {
	var codeFlagSet, stdinFlagSet bool
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		codeFlagSet = true
	}
	if f := cmd.Flags().Lookup("stdin"); f != nil && f.Changed {
		stdinFlagSet = true
	}
	pathSupplied := len(args) > 0

	count := 0
	for _, set := range []bool{codeFlagSet, stdinFlagSet, pathSupplied} {
		if set {
			count++
		}
	}
	if count > 1 {
		return "", "", exitWith(exitUsage, errors.New("multiple input sources specified"))
	}
	switch {
	case stdinFlagSet:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", exitWith(exitIOErr, err)
		}
		return string(data), "stdin", nil
	case pathSupplied:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", exitWith(exitIOErr, err)
		}
		return string(data), filepath.Base(args[0]), nil
	case codeFlagSet:
		code, _ := cmd.Flags().GetString("code")
		return code, "code", nil
	}
	return "", "", exitWith(exitUsage, errNoInput)
}

// getOutputJSON renders value as indented JSON, colorized when color is
// enabled.
func getOutputJSON(value any) ([]byte, error) {
	if color.NoColor {
		return json.MarshalIndent(value, "", "  ")
	}
	return prettyjson.Marshal(value)
}

func checkFormat(format string, allowed ...string) (string, error) {
	format = strings.ToLower(format)
	for _, a := range allowed {
		if format == a {
			return format, nil
		}
	}
	return "", exitWith(exitUsage, fmt.Errorf("unknown output format: %s", format))
}
