package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/valter-silva-au/dmenv/internal/fsutil"
	"github.com/valter-silva-au/dmenv/internal/integration"
	"github.com/valter-silva-au/dmenv/internal/observability"
)

// BumpOptions alter how far a bump goes.
type BumpOptions struct {
	DryRun    bool // only compute and show the patches
	OnlyPatch bool // patch files, skip git and steps
	NoPush    bool // commit and tag, but do not push
}

// Patch is a planned replacement in one file.
type Patch struct {
	Path        string
	Old         string
	New         string
	Occurrences int
}

// BumpResult describes what a bump did, or would do for a dry run.
type BumpResult struct {
	Plan     []Patch
	StepsRun []string
}

// BumperConfig holds the collaborators of a Bumper.
type BumperConfig struct {
	Config  *Config
	Dir     string // files are resolved against Dir; defaults to the config directory
	Git     integration.Git
	Runner  StepRunner
	Printer *observability.Printer
}

// Bumper bumps the version of a repository as described by tbump.toml.
type Bumper struct {
	cfg     *Config
	dir     string
	git     integration.Git
	run     StepRunner
	printer *observability.Printer
	log     zerolog.Logger
}

// NewBumper creates a Bumper, filling defaults for unset collaborators.
// Dir is made absolute so that files resolve the same way for git, which
// runs inside Dir, as for the process.
func NewBumper(c BumperConfig) *Bumper {
	dir := c.Dir
	if dir == "" {
		dir = filepath.Dir(c.Config.Path())
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	printer := c.Printer
	if printer == nil {
		printer = observability.NewPrinter()
	}
	git := c.Git
	if git == nil {
		git = integration.NewGit(dir)
	}
	run := c.Runner
	if run == nil {
		run = ShellRunner(printer.Out)
	}
	return &Bumper{
		cfg:     c.Config,
		dir:     dir,
		git:     git,
		run:     run,
		printer: printer,
		log:     observability.WithComponent("release"),
	}
}

// Bump moves the repository from the configured current version to next.
//
// Nothing is written before every file is known to contain the current
// version, and nothing is committed or pushed unless every before_push step
// succeeded.
func (b *Bumper) Bump(ctx context.Context, next string, opts BumpOptions) (*BumpResult, error) {
	current := b.cfg.Version.Current
	if _, err := b.cfg.ParseVersion(next); err != nil {
		return nil, fmt.Errorf("invalid new version: %w", err)
	}
	if next == current {
		return nil, fmt.Errorf("new version %s is the current version", next)
	}
	b.printer.Info1(fmt.Sprintf("Bumping from %s to %s", current, next))

	tag := Render(b.cfg.Git.TagTemplate, current, next)
	var branch, remote string
	if !opts.OnlyPatch {
		var err error
		branch, remote, err = b.checkGitState(ctx, tag)
		if err != nil {
			return nil, err
		}
	}

	plan, contents, err := b.plan(current, next)
	if err != nil {
		return nil, err
	}
	result := &BumpResult{Plan: plan}
	for _, p := range plan {
		b.printer.Info2(fmt.Sprintf("%s: %q => %q (%d)", b.relative(p.Path), p.Old, p.New, p.Occurrences))
	}
	if opts.DryRun {
		return result, nil
	}

	if err := b.apply(plan, contents); err != nil {
		return result, err
	}
	if opts.OnlyPatch {
		return result, nil
	}

	for _, step := range b.cfg.BeforePush {
		if err := b.runStep(ctx, step, current, next); err != nil {
			return result, err
		}
		result.StepsRun = append(result.StepsRun, step.Name)
	}

	message := Render(b.cfg.Git.MessageTemplate, current, next)
	if err := b.commitAndTag(ctx, plan, message, tag); err != nil {
		return result, err
	}

	if !opts.NoPush {
		b.printer.Info1(fmt.Sprintf("Pushing %s and %s to %s", branch, tag, remote))
		if err := b.git.Push(ctx, remote, branch, tag); err != nil {
			return result, err
		}
	}

	for _, step := range b.cfg.AfterPush {
		if err := b.runStep(ctx, step, current, next); err != nil {
			return result, err
		}
		result.StepsRun = append(result.StepsRun, step.Name)
	}
	return result, nil
}

func (b *Bumper) checkGitState(ctx context.Context, tag string) (branch, remote string, err error) {
	branch, err = b.git.CurrentBranch(ctx)
	if err != nil {
		return "", "", err
	}
	dirty, err := b.git.IsDirty(ctx)
	if err != nil {
		return "", "", err
	}
	if dirty {
		return "", "", ErrDirtyTree
	}
	upstream, err := b.git.Upstream(ctx)
	if err != nil {
		return "", "", err
	}
	if upstream == "" {
		return "", "", ErrNoUpstream
	}
	exists, err := b.git.TagExists(ctx, tag)
	if err != nil {
		return "", "", err
	}
	if exists {
		return "", "", &TagExistsError{Tag: tag}
	}
	b.log.Debug().Str("branch", branch).Str("upstream", upstream).Msg("git state ok")
	return branch, integration.RemoteOf(upstream), nil
}

// plan computes every patch in memory. Several [[file]] entries may name
// the same file; they are applied in order on the same contents.
func (b *Bumper) plan(current, next string) ([]Patch, map[string]string, error) {
	contents := make(map[string]string)
	read := func(path string) (string, error) {
		if text, ok := contents[path]; ok {
			return text, nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	var plan []Patch
	for _, f := range b.cfg.Files {
		path := b.resolve(f.Src)
		text, err := read(path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", f.Src, err)
		}
		old, replacement := current, next
		if f.Search != "" {
			old = Render(f.Search, current, current)
			replacement = Render(f.Search, next, next)
		}
		n := strings.Count(text, old)
		if n == 0 {
			return nil, nil, &PatternNotFoundError{Path: f.Src, Pattern: old}
		}
		contents[path] = strings.ReplaceAll(text, old, replacement)
		plan = append(plan, Patch{Path: path, Old: old, New: replacement, Occurrences: n})
	}

	if cfgPath := b.configPath(); cfgPath != "" {
		text, err := read(cfgPath)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", cfgPath, err)
		}
		rewritten, err := RewriteCurrent(text, next)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", cfgPath, err)
		}
		contents[cfgPath] = rewritten
	}
	return plan, contents, nil
}

func (b *Bumper) apply(plan []Patch, contents map[string]string) error {
	b.printer.Info1("Patching files")
	for path, text := range contents {
		perm := os.FileMode(0o644)
		if info, err := os.Stat(path); err == nil {
			perm = info.Mode().Perm()
		}
		if err := fsutil.WriteFileAtomic(path, []byte(text), perm); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	b.log.Debug().Int("patches", len(plan)).Int("files", len(contents)).Msg("patched")
	return nil
}

func (b *Bumper) runStep(ctx context.Context, step Step, current, next string) error {
	cmdline := Render(step.Cmd, current, next)
	b.printer.Info1(step.Name)
	b.printer.Exec([]string{cmdline})
	if err := b.run(ctx, b.dir, cmdline); err != nil {
		return &StepFailedError{Name: step.Name, Cmd: cmdline, Err: err}
	}
	return nil
}

func (b *Bumper) commitAndTag(ctx context.Context, plan []Patch, message, tag string) error {
	paths := make([]string, 0, len(plan)+1)
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, b.relative(path))
		}
	}
	for _, p := range plan {
		add(p.Path)
	}
	if cfgPath := b.configPath(); cfgPath != "" {
		add(cfgPath)
	}

	b.printer.Info1(fmt.Sprintf("Making bump commit and tag %s", tag))
	if err := b.git.Add(ctx, paths...); err != nil {
		return err
	}
	if err := b.git.Commit(ctx, message); err != nil {
		return err
	}
	return b.git.Tag(ctx, tag, tag)
}

func (b *Bumper) resolve(src string) string {
	if filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(b.dir, filepath.FromSlash(src))
}

// configPath returns the absolute path of tbump.toml, or "" for a config
// that was not loaded from a file.
func (b *Bumper) configPath() string {
	path := b.cfg.Path()
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func (b *Bumper) relative(path string) string {
	if rel, err := filepath.Rel(b.dir, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

var currentLine = regexp.MustCompile(`(?m)^(\s*current\s*=\s*)"[^"]*"`)

// RewriteCurrent replaces the value of version.current in the text of
// tbump.toml, keeping the rest of the file untouched.
func RewriteCurrent(contents, next string) (string, error) {
	loc := currentLine.FindStringSubmatchIndex(contents)
	if loc == nil {
		return "", errors.New("no current = \"...\" line found")
	}
	rewritten := contents[:loc[3]] + fmt.Sprintf("%q", next) + contents[loc[1]:]

	var check struct {
		Version VersionConfig `toml:"version"`
	}
	if err := decodeTOML(rewritten, &check); err != nil {
		return "", err
	}
	if check.Version.Current != next {
		return "", fmt.Errorf("rewritten file has current = %q, expected %q", check.Version.Current, next)
	}
	return rewritten, nil
}
