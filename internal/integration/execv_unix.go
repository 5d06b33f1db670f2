//go:build !windows

package integration

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ExecSupported reports whether Execv can replace the current process.
const ExecSupported = true

// Execv replaces the current process with path. It only returns on error.
func Execv(path string, argv, env []string) error {
	if err := unix.Exec(path, argv, env); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
