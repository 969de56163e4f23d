package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"lovelyhashcat/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode separates usage and setup mistakes from runtime failures.
func exitCode(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidExecutable),
		errors.Is(err, services.ErrConfiguration):
		return 2
	default:
		return 1
	}
}
