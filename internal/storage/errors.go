package storage

import "fmt"

// DependencyNotFoundError is returned when a lock has no entry for a name.
type DependencyNotFoundError struct {
	Name string
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("dependency %s not found in lock", e.Name)
}

// GitDependencyError is returned when a version bump targets a git dependency.
type GitDependencyError struct {
	Name string
}

func (e *GitDependencyError) Error() string {
	return fmt.Sprintf("%s is a git dependency, use --git to bump it", e.Name)
}

// NotGitDependencyError is returned when a git bump targets a pinned version.
type NotGitDependencyError struct {
	Name string
}

func (e *NotGitDependencyError) Error() string {
	return fmt.Sprintf("%s is not a git dependency", e.Name)
}

// NothingToBumpError is returned when the lock already has the requested pin.
type NothingToBumpError struct {
	Name    string
	Version string
}

func (e *NothingToBumpError) Error() string {
	return fmt.Sprintf("%s is already at %s", e.Name, e.Version)
}
