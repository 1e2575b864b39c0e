// Package main provides the deplot command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mkuiper/deplot/internal/detable"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var cfgErr *detable.ConfigError
		if errors.As(err, &cfgErr) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}
