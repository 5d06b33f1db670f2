package toolcli

import (
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dmenv/internal/installer"
)

// install is swapped in tests.
var install = installer.Install

// NewInstallerCmd builds the dmenv-installer command.
func NewInstallerCmd() *cobra.Command {
	var (
		opts    installer.Options
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "dmenv-installer",
		Short: "Download dmenv and install it on the PATH",
		Long: `dmenv-installer downloads the dmenv release for this platform.

Without --dest, the writable directories of PATH are listed and the binary
is installed in the one you pick.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Printer = printerFor(cmd)
			_, err := install(cmd.Context(), opts)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.Dest, "dest", "", "where to write the binary")
	cmd.Flags().BoolVar(&opts.Upgrade, "upgrade", false, "replace an existing binary")
	cmd.Flags().StringVar(&opts.Version, "version", installer.Version, "release to install")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", installer.DefaultBaseURL, "release host")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	return cmd
}
