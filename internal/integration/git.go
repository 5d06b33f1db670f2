package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrDetachedHead is returned by CurrentBranch when HEAD is not a branch.
var ErrDetachedHead = errors.New("not on a branch (detached HEAD)")

// Git runs the git CLI inside a working tree. It backs the release tooling.
type Git interface {
	CurrentBranch(ctx context.Context) (string, error)
	IsDirty(ctx context.Context) (bool, error)
	// Upstream returns the tracking ref of the current branch (e.g.
	// "origin/master") or "" when none is configured.
	Upstream(ctx context.Context) (string, error)
	// BehindUpstream returns how many upstream commits are missing locally.
	BehindUpstream(ctx context.Context) (int, error)
	TagExists(ctx context.Context, tag string) (bool, error)
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	Tag(ctx context.Context, name, message string) error
	Push(ctx context.Context, remote string, refs ...string) error
}

type gitCLI struct {
	dir string
}

// NewGit creates a Git bound to the working tree at dir.
func NewGit(dir string) Git {
	return &gitCLI{dir: dir}
}

// run executes git with args and returns trimmed stdout. A non-zero exit is
// reported as CommandFailedError carrying git's stderr.
func (g *gitCLI) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := commandError(cmd, cmd.Run(), stderr.String()); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (g *gitCLI) CurrentBranch(ctx context.Context) (string, error) {
	branch, err := g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("getting current branch: %w", err)
	}
	if branch == "HEAD" {
		return "", ErrDetachedHead
	}
	return branch, nil
}

func (g *gitCLI) IsDirty(ctx context.Context) (bool, error) {
	out, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("getting git status: %w", err)
	}
	return out != "", nil
}

func (g *gitCLI) Upstream(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}")
	if err != nil {
		var failed *CommandFailedError
		if errors.As(err, &failed) {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

func (g *gitCLI) BehindUpstream(ctx context.Context) (int, error) {
	out, err := g.run(ctx, "rev-list", "HEAD..@{upstream}")
	if err != nil {
		return 0, fmt.Errorf("comparing with upstream: %w", err)
	}
	if out == "" {
		return 0, nil
	}
	return len(strings.Split(out, "\n")), nil
}

func (g *gitCLI) TagExists(ctx context.Context, tag string) (bool, error) {
	_, err := g.run(ctx, "rev-parse", "-q", "--verify", "refs/tags/"+tag)
	if err == nil {
		return true, nil
	}
	var failed *CommandFailedError
	if errors.As(err, &failed) && failed.ExitCode == 1 {
		return false, nil
	}
	return false, fmt.Errorf("checking tag %s: %w", tag, err)
}

func (g *gitCLI) Add(ctx context.Context, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	if _, err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	return nil
}

func (g *gitCLI) Commit(ctx context.Context, message string) error {
	if _, err := g.run(ctx, "commit", "--message", message); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	return nil
}

func (g *gitCLI) Tag(ctx context.Context, name, message string) error {
	if _, err := g.run(ctx, "tag", "--annotate", "--message", message, name); err != nil {
		return fmt.Errorf("git tag %s: %w", name, err)
	}
	return nil
}

func (g *gitCLI) Push(ctx context.Context, remote string, refs ...string) error {
	args := append([]string{"push", remote}, refs...)
	if _, err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("git push %s: %w", remote, err)
	}
	return nil
}

// RemoteOf returns the remote part of an upstream ref like "origin/master".
func RemoteOf(upstream string) string {
	remote, _, _ := strings.Cut(upstream, "/")
	return remote
}
