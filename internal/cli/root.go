package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dmenv/internal/observability"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// AppVersion returns the version injected via ldflags.
func AppVersion() string {
	return appVersion
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "dmenv",
	Short: "Simple and practical virtualenv manager for Python",
	Long: `dmenv creates a virtualenv for your Python project, keeps its
dependencies pinned in a lock file and runs programs from it.

Dependencies are declared in setup.py (or setup.cfg). 'dmenv lock' installs
them and writes requirements.lock; 'dmenv install' reproduces the same
virtualenv on another machine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := observability.LogConfig{}
		if verbose {
			cfg.Level = "debug"
		}
		observability.Configure(cfg)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dmenv %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&projectOpts.Project, "project", "", "path to the project (defaults to the working directory)")
	flags.StringVar(&projectOpts.Python, "python", "", "python interpreter used to create the virtualenv")
	flags.StringVar(&projectOpts.Env, "env", "", "named environment from dmenv.toml")
	flags.BoolVar(&projectOpts.Production, "production", false, "use production.lock and the 'prod' extra")
	flags.BoolVar(&projectOpts.SystemSitePackages, "system-site-packages", false, "give the virtualenv access to the system site-packages")
	flags.BoolVar(&verbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// commandContext returns the command's context, or a background context when
// the command is invoked directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
