package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

// interruptContextForCLI returns a context canceled on SIGINT/SIGTERM,
// bound to the CLI invocation's own context.
func interruptContextForCLI(cctx *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
}
