package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gerunddev/mindflat/internal/commands"
	"github.com/gerunddev/mindflat/internal/styles"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.NewRoot(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("✗ "+err.Error()))
		stop()
		os.Exit(1)
	}
}
