// Package toolcli holds the command trees of the maintainer tools shipped
// next to dmenv: dmenv-release and dmenv-installer.
package toolcli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dmenv/internal/observability"
	"github.com/valter-silva-au/dmenv/internal/release"
	"golang.org/x/term"
)

type installerRunner interface {
	Run(ctx context.Context) (string, error)
}

// newInstallerBumper is swapped in tests.
var newInstallerBumper = func(c release.InstallerBumperConfig) installerRunner {
	return release.NewInstallerBumper(c)
}

// NewReleaseCmd builds the dmenv-release command tree.
func NewReleaseCmd(version string) *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:           "dmenv-release",
		Short:         "Bump the dmenv version and publish a release",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(verbose)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", release.DefaultConfigFile, "path to tbump.toml")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	var opts release.BumpOptions
	bumpCmd := &cobra.Command{
		Use:   "bump NEW_VERSION",
		Short: "Patch the version files, commit, tag, push and run the release steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := release.LoadConfig(configPath)
			if err != nil {
				return err
			}
			b := release.NewBumper(release.BumperConfig{Config: cfg, Printer: printerFor(cmd)})
			result, err := b.Bump(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if opts.DryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d patch(es) would be applied\n", len(result.Plan))
			}
			return nil
		},
	}
	bumpCmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "only show the patches")
	bumpCmd.Flags().BoolVar(&opts.OnlyPatch, "only-patch", false, "patch the files and stop")
	bumpCmd.Flags().BoolVar(&opts.NoPush, "no-push", false, "commit and tag without pushing")

	var versionFile, baseURL string
	installerCmd := &cobra.Command{
		Use:   "installer",
		Short: "Point the installer at the current release once it is published",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := newInstallerBumper(release.InstallerBumperConfig{
				ConfigPath:  configPath,
				VersionFile: versionFile,
				BaseURL:     baseURL,
				Printer:     printerFor(cmd),
				Interactive: term.IsTerminal(int(os.Stdout.Fd())),
			})
			_, err := b.Run(cmd.Context())
			return err
		},
	}
	installerCmd.Flags().StringVar(&versionFile, "version-file", "", "file holding the installer version (default "+release.DefaultInstallerVersionFile+")")
	installerCmd.Flags().StringVar(&baseURL, "base-url", "", "release host")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate tbump.toml and show the current version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := release.LoadConfig(configPath)
			if err != nil {
				return err
			}
			v, err := cfg.ParseVersion(cfg.Version.Current)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "current: %s (major=%d minor=%d patch=%d)\n", v.Raw, v.Major, v.Minor, v.Patch)
			fmt.Fprintf(cmd.OutOrStdout(), "files: %d, before_push: %d, after_push: %d\n", len(cfg.Files), len(cfg.BeforePush), len(cfg.AfterPush))
			return nil
		},
	}

	root.AddCommand(bumpCmd, installerCmd, checkCmd)
	return root
}

func configureLogging(verbose bool) {
	cfg := observability.LogConfig{}
	if verbose {
		cfg.Level = "debug"
	}
	observability.Configure(cfg)
}

func printerFor(cmd *cobra.Command) *observability.Printer {
	return &observability.Printer{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
}
