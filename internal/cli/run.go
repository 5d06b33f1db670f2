package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dmenv/internal/integration"
)

// osExit is swapped in tests.
var osExit = os.Exit

var runNoExec bool

var runCmd = &cobra.Command{
	Use:   "run [--no-exec] CMD [ARGS...]",
	Short: "Run a program from the virtualenv",
	Long: `Run a program installed in the virtualenv. On Linux and macOS dmenv
replaces itself with the program; with --no-exec (and on Windows) it runs a
child process and exits with the child's exit code.

Flags after CMD are passed to the program.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		p, err := openProject(ctx)
		if err != nil {
			return err
		}

		if runNoExec {
			err = p.RunNoExec(ctx, args)
		} else {
			err = p.Run(ctx, args)
		}

		var failed *integration.CommandFailedError
		if errors.As(err, &failed) {
			code := failed.ExitCode
			if code <= 0 {
				code = 1
			}
			osExit(code)
			return nil
		}
		return err
	},
}

func init() {
	runCmd.Flags().BoolVar(&runNoExec, "no-exec", false, "run a child process instead of replacing dmenv")
	runCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(runCmd)
}
