// Package main provides the entry point for hc-state.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/hcstate-go/internal/cli/command"
	"github.com/yndnr/hcstate-go/internal/core/domain"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(domain.ExitCode(err))
	}
}
