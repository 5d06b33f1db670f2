package release

import (
	"context"
	"io"
	"os/exec"
	"runtime"
)

// StepRunner runs a shell command line in dir.
type StepRunner func(ctx context.Context, dir, cmdline string) error

// ShellRunner returns a StepRunner using sh -c, or cmd /C on Windows, with
// the command output going to out.
func ShellRunner(out io.Writer) StepRunner {
	return func(ctx context.Context, dir, cmdline string) error {
		var cmd *exec.Cmd
		if runtime.GOOS == "windows" {
			cmd = exec.CommandContext(ctx, "cmd", "/C", cmdline)
		} else {
			cmd = exec.CommandContext(ctx, "sh", "-c", cmdline)
		}
		cmd.Dir = dir
		cmd.Stdout = out
		cmd.Stderr = out
		return cmd.Run()
	}
}
