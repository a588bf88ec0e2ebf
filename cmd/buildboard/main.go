// Package main is the entry point for the buildboard CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"buildboard/internal/cli"
	"buildboard/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, cli.NewWorkspace)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
