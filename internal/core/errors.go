package core

import (
	"errors"
	"fmt"
)

// ErrPipUpgradeFailed is returned when pip cannot upgrade itself, which
// usually means the virtualenv is broken.
var ErrPipUpgradeFailed = errors.New("could not upgrade pip. Try using `dmenv clean`")

// ErrSetupPyExists is returned by Init when it would overwrite a file.
var ErrSetupPyExists = errors.New("setup.py already exists. Aborting")

// MissingSetupPyError is returned by operations that need setup.py.
type MissingSetupPyError struct {
	Path string
}

func (e *MissingSetupPyError) Error() string {
	return fmt.Sprintf("%s not found. You may want to run `dmenv init` now", e.Path)
}

// MissingLockError is returned when the lock file has not been generated yet.
type MissingLockError struct {
	Path string
}

func (e *MissingLockError) Error() string {
	return fmt.Sprintf("%s does not exist. Please run `dmenv lock`", e.Path)
}
