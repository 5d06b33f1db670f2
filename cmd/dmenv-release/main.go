package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/valter-silva-au/dmenv/internal/observability"
	"github.com/valter-silva-au/dmenv/internal/toolcli"
)

// Set by goreleaser ldflags at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := toolcli.NewReleaseCmd(version).ExecuteContext(ctx)
	stop()
	if err != nil {
		observability.NewPrinter().Error(err)
		os.Exit(1)
	}
}
