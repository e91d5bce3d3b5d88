// Package main is the entry point for the signpost web server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xy-planning-network/signpost/cmd/signpost/commands"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli := commands.New()
	cli.SetArgs(args)
	if err := cli.Execute(ctx); err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	return 0
}
