//go:build windows

package integration

import "errors"

// ExecSupported reports whether Execv can replace the current process.
const ExecSupported = false

// Execv is not available on Windows; callers run a child process instead.
func Execv(path string, argv, env []string) error {
	return errors.New("execv is not supported on windows")
}
