package main

import (
	"os"

	app "github.com/valter-silva-au/dmenv/internal"
	"github.com/valter-silva-au/dmenv/internal/cli"
	"github.com/valter-silva-au/dmenv/internal/observability"
)

// Set by goreleaser ldflags at build time.
var (
	version = "0.20.0"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	app.NewApp(app.ResolveConfigDir(), version)

	if err := cli.Execute(); err != nil {
		observability.NewPrinter().Error(err)
		os.Exit(1)
	}
}
