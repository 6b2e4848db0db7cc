// ./main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/openpolicylab/debatesim/cmd"
	"github.com/openpolicylab/debatesim/internal/observability"
)

// main is the entry point for the debatesim CLI application.
func main() {
	// Ctrl-C cancels the context; in-flight turns observe it and unwind.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()
	stop()
	if err != nil {
		os.Exit(1)
	}
}
