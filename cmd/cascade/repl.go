package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cascade-lang/cascade/internal/token"
	"github.com/cascade-lang/cascade/vm"
)

const replPrompt = "> "

// runRepl reads one expression per line and prints its value. Errors are
// reported and the loop continues.
func (a *app) runRepl(cmd *cobra.Command) error {
	in := cmd.InOrStdin()
	out := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	interactive := in == os.Stdin && isTerminalIO()

	history := historyPath(a.v)
	machine := a.newVM(cmd)

	if interactive {
		fmt.Fprintf(out, "Cascade %s\nType :help for commands\n", version)
	}
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, replPrompt)
		}
		if !scanner.Scan() {
			if interactive {
				fmt.Fprintln(out)
			}
			if err := scanner.Err(); err != nil {
				return exitWith(exitIOErr, err)
			}
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case ":quit", ":exit":
			return nil
		case ":help":
			fmt.Fprintln(out, "Enter an arithmetic expression such as (1 + 2) * 3.")
			fmt.Fprintln(out, ":help  show this message")
			fmt.Fprintln(out, ":quit  leave the REPL")
			fmt.Fprintf(out, "Reserved words: %s\n", strings.Join(token.Keywords(), " "))
			continue
		}
		if err := appendToHistory(history, line); err != nil {
			a.logger.Debug().Err(err).Str("path", history).Msg("history not saved")
		}
		result, _, err := machine.Interpret(line)
		if result == vm.RuntimeError {
			fmt.Fprintln(stderr, red(err.Error()))
		}
	}
}

func appendToHistory(path, line string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.WriteString(f, line+"\n")
	return err
}
