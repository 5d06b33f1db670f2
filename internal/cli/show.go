package cli

import (
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dmenv/internal/core"
)

var showLockFormat string

var showDepsCmd = &cobra.Command{
	Use:   "show:deps",
	Short: "Show the dependencies installed in the virtualenv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		p, err := openProject(ctx)
		if err != nil {
			return err
		}
		return p.ShowDeps(ctx)
	},
}

var showOutdatedCmd = &cobra.Command{
	Use:   "show:outdated",
	Short: "Show outdated dependencies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		p, err := openProject(ctx)
		if err != nil {
			return err
		}
		return p.ShowOutdated(ctx)
	},
}

var showVenvPathCmd = &cobra.Command{
	Use:   "show:venv_path",
	Short: "Show the path of the virtualenv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(commandContext(cmd))
		if err != nil {
			return err
		}
		return p.ShowVenvPath()
	},
}

var showBinPathCmd = &cobra.Command{
	Use:   "show:bin_path",
	Short: "Show the path of the virtualenv's binaries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(commandContext(cmd))
		if err != nil {
			return err
		}
		return p.ShowVenvBinPath()
	},
}

var showLockCmd = &cobra.Command{
	Use:   "show:lock",
	Short: "Show the dependencies pinned in the lock file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(commandContext(cmd))
		if err != nil {
			return err
		}
		return p.ShowLock(cmd.OutOrStdout(), showLockFormat)
	},
}

func init() {
	showLockCmd.Flags().StringVar(&showLockFormat, "format", core.FormatTable, "output format: table, yaml or json")
	rootCmd.AddCommand(showDepsCmd, showOutdatedCmd, showVenvPathCmd, showBinPathCmd, showLockCmd)
}
