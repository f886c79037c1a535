// Command useful runs the reference hosts from the command line.
//
// Usage:
//
//	useful purge --db records.db --ttl 720h
//	useful purge --db records.db --ttl 720h --substitute
//	useful slots
//	useful sinks
//
// Configuration is layered: built-in defaults, then the file named by
// --config (.toml, .yaml or .yml), then USEFUL_* environment variables.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command tree and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
