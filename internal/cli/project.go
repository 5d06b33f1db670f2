package cli

import (
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dmenv/pkg/models"
)

var (
	installNoDevelop bool
	lockOpts         models.LockOptions
	bumpGit          bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the virtualenv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(commandContext(cmd))
		if err != nil {
			return err
		}
		return p.Clean()
	},
}

var developCmd = &cobra.Command{
	Use:   "develop",
	Short: "Run setup.py develop inside the virtualenv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		p, err := openProject(ctx)
		if err != nil {
			return err
		}
		return p.Develop(ctx)
	},
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install dependencies from the lock file",
	Long: `Create the virtualenv if needed, install every dependency pinned in the
lock file, then run 'setup.py develop' unless --no-develop is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		p, err := openProject(ctx)
		if err != nil {
			return err
		}
		action := models.RunSetupPyDevelop
		if installNoDevelop {
			action = models.NoPostInstall
		}
		return p.Install(ctx, action)
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Install dependencies from setup.py and pin them in the lock file",
	Long: `Create the virtualenv if needed, upgrade pip, install the project with its
dev (or prod) extra, then merge the output of 'pip freeze' into the lock.

Dependencies new to the lock get an environment marker built from
--python-version and --platform.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		p, err := openProject(ctx)
		if err != nil {
			return err
		}
		return p.Lock(ctx, lockOpts)
	},
}

var tidyCmd = &cobra.Command{
	Use:   "tidy",
	Short: "Re-generate the lock file from a fresh virtualenv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		p, err := openProject(ctx)
		if err != nil {
			return err
		}
		return p.Tidy(ctx, lockOpts)
	},
}

var bumpInLockCmd = &cobra.Command{
	Use:   "bump-in-lock NAME VERSION",
	Short: "Bump a dependency in the lock file",
	Long: `Set the pinned version of NAME in the lock file. With --git, VERSION is
the new git ref of a git dependency.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(commandContext(cmd))
		if err != nil {
			return err
		}
		return p.BumpInLock(args[0], args[1], bumpGit)
	},
}

var upgradePipCmd = &cobra.Command{
	Use:   "upgrade-pip",
	Short: "Upgrade pip inside the virtualenv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		p, err := openProject(ctx)
		if err != nil {
			return err
		}
		return p.UpgradePip(ctx)
	},
}

var processScriptsCmd = &cobra.Command{
	Use:   "process-scripts",
	Short: "Expose the project's console scripts in bin/",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(commandContext(cmd))
		if err != nil {
			return err
		}
		return p.ProcessScripts()
	},
}

func addLockFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&lockOpts.PythonVersion, "python-version", "", `restrict new dependencies to a python version (e.g. "3.6" or "<3.7")`)
	cmd.Flags().StringVar(&lockOpts.SysPlatform, "platform", "", `restrict new dependencies to a platform (e.g. "win32")`)
}

func init() {
	installCmd.Flags().BoolVar(&installNoDevelop, "no-develop", false, "do not run setup.py develop")
	addLockFlags(lockCmd)
	addLockFlags(tidyCmd)
	bumpInLockCmd.Flags().BoolVar(&bumpGit, "git", false, "bump a git dependency")

	rootCmd.AddCommand(cleanCmd, developCmd, installCmd, lockCmd, tidyCmd, bumpInLockCmd, upgradePipCmd, processScriptsCmd)
}
