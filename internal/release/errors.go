package release

import (
	"errors"
	"fmt"

	"github.com/valter-silva-au/dmenv/internal/integration"
)

var (
	// ErrDetachedHead is returned when the release is attempted outside a branch.
	ErrDetachedHead = integration.ErrDetachedHead
	// ErrDirtyTree is returned when the working tree has uncommitted changes.
	ErrDirtyTree = errors.New("git repository is dirty")
	// ErrNoUpstream is returned when the current branch tracks nothing.
	ErrNoUpstream = errors.New("current branch has no upstream")
)

// StepFailedError reports a before_push or after_push command that exited
// with an error.
type StepFailedError struct {
	Name string
	Cmd  string
	Err  error
}

func (e *StepFailedError) Error() string {
	return fmt.Sprintf("step %q (%s) failed: %v", e.Name, e.Cmd, e.Err)
}

func (e *StepFailedError) Unwrap() error {
	return e.Err
}

// TagExistsError is returned when the release tag is already present.
type TagExistsError struct {
	Tag string
}

func (e *TagExistsError) Error() string {
	return fmt.Sprintf("tag %s already exists", e.Tag)
}

// PatternNotFoundError is returned when a [[file]] does not contain the
// string that should be replaced.
type PatternNotFoundError struct {
	Path    string
	Pattern string
}

func (e *PatternNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q not found", e.Path, e.Pattern)
}
