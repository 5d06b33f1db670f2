package cli

import (
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dmenv/pkg/models"
)

var initOpts models.InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a setup.py (or setup.cfg) for the project",
	Long: `Generate a setup.py with dev and prod extras, ready to be used by
'dmenv lock'. With --setup-cfg, metadata goes to setup.cfg and setup.py is a
minimal shim.

Existing files are never overwritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(commandContext(cmd))
		if err != nil {
			return err
		}
		return p.Init(initOpts)
	},
}

func init() {
	initCmd.Flags().StringVar(&initOpts.Name, "name", "", "project name (defaults to the project directory name)")
	initCmd.Flags().StringVar(&initOpts.Version, "version", "", "initial version (defaults to 0.1.0)")
	initCmd.Flags().StringVar(&initOpts.Author, "author", "", "author of the project")
	initCmd.Flags().BoolVar(&initOpts.SetupCfg, "setup-cfg", false, "write metadata to setup.cfg")
	rootCmd.AddCommand(initCmd)
}
