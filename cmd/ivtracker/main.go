package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/wonny/ivtracker/cmd/ivtracker/commands"
)

// main is the entry point for the ivtracker CLI
// ⭐ single CLI entry point: go run ./cmd/ivtracker [command]
func main() {
	if err := commands.Execute(); err != nil {
		var exitErr *commands.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
