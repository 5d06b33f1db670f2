package integration

import (
	"fmt"
	"strings"
)

// MissingVenvError is returned by operations that need an existing virtualenv.
type MissingVenvError struct {
	Path string
}

func (e *MissingVenvError) Error() string {
	return fmt.Sprintf("virtualenv in %s does not exist", e.Path)
}

// BinaryNotFoundError is returned when a program is absent from the virtualenv.
type BinaryNotFoundError struct {
	Path string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("cannot run: '%s' does not exist", e.Path)
}

// CommandFailedError is returned when a child process exits with a non-zero code.
type CommandFailedError struct {
	Cmd      []string
	ExitCode int
	Stderr   string
}

func (e *CommandFailedError) Error() string {
	msg := fmt.Sprintf("command failed: %s (exit code %d)", strings.Join(e.Cmd, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + strings.TrimSpace(e.Stderr)
	}
	return msg
}
