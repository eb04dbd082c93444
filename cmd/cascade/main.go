// Command cascade compiles and runs Cascade expressions.
package main

import (
	"errors"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if err == nil {
		return
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil && !exitErr.reported {
			fmt.Fprintln(os.Stderr, red(exitErr.err.Error()))
		}
		os.Exit(exitErr.code)
	}
	// Flag and argument errors are printed by cobra
	os.Exit(exitUsage)
}
