package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-zajac/ghanalyzer/internal/app"
)

// Exit codes.
const (
	exitError        = 1
	exitInvalidInput = 2
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(os.Stdout, os.Stderr)
	defer c.close()

	return c.rootCommand().ExecuteContext(ctx)
}

func exitCode(err error) int {
	if app.IsInvalidRequestError(err) {
		return exitInvalidInput
	}
	return exitError
}
