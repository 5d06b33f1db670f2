package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/valter-silva-au/dmenv/internal/observability"
	"github.com/valter-silva-au/dmenv/internal/toolcli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := toolcli.NewInstallerCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		observability.NewPrinter().Error(err)
		os.Exit(1)
	}
}
