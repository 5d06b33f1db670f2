package release

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/valter-silva-au/dmenv/internal/observability"
)

// fakeGit implements integration.Git with configurable results and records
// every mutating call in a shared event log.
type fakeGit struct {
	events *[]string

	branch    string
	branchErr error
	dirty     bool
	upstream  string
	behind    int
	tags      map[string]bool
	pushErr   error
}

func (g *fakeGit) record(format string, args ...any) {
	*g.events = append(*g.events, fmt.Sprintf(format, args...))
}

func (g *fakeGit) CurrentBranch(context.Context) (string, error) { return g.branch, g.branchErr }
func (g *fakeGit) IsDirty(context.Context) (bool, error)         { return g.dirty, nil }
func (g *fakeGit) Upstream(context.Context) (string, error)      { return g.upstream, nil }
func (g *fakeGit) BehindUpstream(context.Context) (int, error)   { return g.behind, nil }
func (g *fakeGit) TagExists(_ context.Context, tag string) (bool, error) {
	return g.tags[tag], nil
}
func (g *fakeGit) Add(_ context.Context, paths ...string) error {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	g.record("add %s", strings.Join(names, " "))
	return nil
}
func (g *fakeGit) Commit(_ context.Context, message string) error {
	g.record("commit %s", message)
	return nil
}
func (g *fakeGit) Tag(_ context.Context, name, _ string) error {
	g.record("tag %s", name)
	return nil
}
func (g *fakeGit) Push(_ context.Context, remote string, refs ...string) error {
	g.record("push %s %s", remote, strings.Join(refs, " "))
	return g.pushErr
}

var errNotARepository = errors.New("fatal: not a git repository")

type bumpFixture struct {
	dir    string
	cfg    *Config
	git    *fakeGit
	events []string
	failOn string
	out    bytes.Buffer
}

const sampleCargo = `[package]
name = "dmenv"
version = "0.20.0"

[dependencies]
semver = "0.20.0"
`

func newBumpFixture(t *testing.T) *bumpFixture {
	t.Helper()
	f := &bumpFixture{dir: t.TempDir()}
	f.git = &fakeGit{events: &f.events, branch: "master", upstream: "origin/master"}

	files := []struct{ name, contents string }{
		{DefaultConfigFile, sampleConfig},
		{"Cargo.toml", sampleCargo},
		{filepath.Join("src", "version.rs"), "pub const VERSION: &str = \"0.20.0\";\n"},
	}
	for _, file := range files {
		path := filepath.Join(f.dir, file.name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(file.contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := LoadConfig(filepath.Join(f.dir, DefaultConfigFile))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	f.cfg = cfg
	return f
}

func (f *bumpFixture) bumper() *Bumper {
	return NewBumper(BumperConfig{
		Config:  f.cfg,
		Git:     f.git,
		Printer: &observability.Printer{Out: &f.out, Err: &f.out},
		Runner: func(_ context.Context, dir, cmdline string) error {
			f.events = append(f.events, "run "+cmdline)
			if dir != f.dir {
				return fmt.Errorf("step ran in %s", dir)
			}
			if cmdline == f.failOn {
				return errors.New("exit status 1")
			}
			return nil
		},
	})
}

func (f *bumpFixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func (f *bumpFixture) assertUntouched(t *testing.T) {
	t.Helper()
	if got := f.read(t, "Cargo.toml"); got != sampleCargo {
		t.Errorf("Cargo.toml should be untouched, got:\n%s", got)
	}
	if got := f.read(t, DefaultConfigFile); got != sampleConfig {
		t.Errorf("%s should be untouched", DefaultConfigFile)
	}
}

// --- Bump tests ---

func TestBump_FullRelease(t *testing.T) {
	f := newBumpFixture(t)

	result, err := f.bumper().Bump(context.Background(), "0.21.0", BumpOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantEvents := []string{
		"run grep -q 0.21.0 Changelog.md",
		"run cargo test --release",
		"add Cargo.toml version.rs tbump.toml",
		"commit Bump to 0.21.0",
		"tag v0.21.0",
		"push origin master v0.21.0",
		"run cargo publish",
	}
	if diff := cmp.Diff(wantEvents, f.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	wantSteps := []string{"Check Changelog", "Run tests", "Publish to crates.io"}
	if diff := cmp.Diff(wantSteps, result.StepsRun); diff != "" {
		t.Errorf("StepsRun mismatch (-want +got):\n%s", diff)
	}

	wantCargo := strings.Replace(sampleCargo, `version = "0.20.0"`, `version = "0.21.0"`, 1)
	if got := f.read(t, "Cargo.toml"); got != wantCargo {
		t.Errorf("Cargo.toml:\n%s", got)
	}
	if got := f.read(t, filepath.Join("src", "version.rs")); !strings.Contains(got, `"0.21.0"`) {
		t.Errorf("version.rs not patched: %s", got)
	}
	if !strings.Contains(f.read(t, DefaultConfigFile), `current = "0.21.0"`) {
		t.Error("tbump.toml current not rewritten")
	}
}

func TestBump_Plan(t *testing.T) {
	f := newBumpFixture(t)

	result, err := f.bumper().Bump(context.Background(), "1.0.0", BumpOptions{DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Patch{
		{Path: filepath.Join(f.dir, "Cargo.toml"), Old: `version = "0.20.0"`, New: `version = "1.0.0"`, Occurrences: 1},
		{Path: filepath.Join(f.dir, "src", "version.rs"), Old: "0.20.0", New: "1.0.0", Occurrences: 1},
	}
	if diff := cmp.Diff(want, result.Plan); diff != "" {
		t.Errorf("Plan mismatch (-want +got):\n%s", diff)
	}
	if len(f.events) != 0 {
		t.Errorf("dry run must not run anything, got %v", f.events)
	}
	f.assertUntouched(t)
}

func TestBump_BeforePushFailureAbortsBeforeGit(t *testing.T) {
	f := newBumpFixture(t)
	f.failOn = "cargo test --release"

	result, err := f.bumper().Bump(context.Background(), "0.21.0", BumpOptions{})

	var stepErr *StepFailedError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepFailedError, got %v", err)
	}
	if stepErr.Name != "Run tests" {
		t.Errorf("failed step = %q", stepErr.Name)
	}
	wantEvents := []string{"run grep -q 0.21.0 Changelog.md", "run cargo test --release"}
	if diff := cmp.Diff(wantEvents, f.events); diff != "" {
		t.Errorf("nothing may be committed or pushed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Check Changelog"}, result.StepsRun); diff != "" {
		t.Errorf("StepsRun mismatch (-want +got):\n%s", diff)
	}
}

func TestBump_OnlyPatch(t *testing.T) {
	f := newBumpFixture(t)
	f.git.branchErr = errors.New("detached")
	f.git.dirty = true

	if _, err := f.bumper().Bump(context.Background(), "0.21.0", BumpOptions{OnlyPatch: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.events) != 0 {
		t.Errorf("only-patch must not touch git or run steps, got %v", f.events)
	}
	if !strings.Contains(f.read(t, "Cargo.toml"), `version = "0.21.0"`) {
		t.Error("Cargo.toml not patched")
	}
}

func TestBump_NoPush(t *testing.T) {
	f := newBumpFixture(t)

	if _, err := f.bumper().Bump(context.Background(), "0.21.0", BumpOptions{NoPush: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range f.events {
		if strings.HasPrefix(e, "push") {
			t.Errorf("unexpected push: %s", e)
		}
	}
	if last := f.events[len(f.events)-1]; last != "run cargo publish" {
		t.Errorf("after_push should still run, last event %q", last)
	}
}

func TestBump_PushFailureSkipsAfterPush(t *testing.T) {
	f := newBumpFixture(t)
	f.git.pushErr = errors.New("rejected")

	if _, err := f.bumper().Bump(context.Background(), "0.21.0", BumpOptions{}); err == nil {
		t.Fatal("expected error")
	}
	for _, e := range f.events {
		if e == "run cargo publish" {
			t.Error("after_push must not run when push fails")
		}
	}
}

func TestBump_GitStateErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(g *fakeGit)
		check func(error) bool
	}{
		{"detached", func(g *fakeGit) { g.branchErr = ErrDetachedHead }, func(err error) bool { return errors.Is(err, ErrDetachedHead) }},
		{"not a repository", func(g *fakeGit) { g.branchErr = errNotARepository }, func(err error) bool {
			return errors.Is(err, errNotARepository) && !errors.Is(err, ErrDetachedHead)
		}},
		{"dirty", func(g *fakeGit) { g.dirty = true }, func(err error) bool { return errors.Is(err, ErrDirtyTree) }},
		{"no upstream", func(g *fakeGit) { g.upstream = "" }, func(err error) bool { return errors.Is(err, ErrNoUpstream) }},
		{"tag exists", func(g *fakeGit) { g.tags = map[string]bool{"v0.21.0": true} }, func(err error) bool {
			var tagErr *TagExistsError
			return errors.As(err, &tagErr) && tagErr.Tag == "v0.21.0"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBumpFixture(t)
			tt.setup(f.git)

			_, err := f.bumper().Bump(context.Background(), "0.21.0", BumpOptions{})
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(f.events) != 0 {
				t.Errorf("events = %v", f.events)
			}
			f.assertUntouched(t)
		})
	}
}

func TestBump_InvalidNewVersion(t *testing.T) {
	for _, v := range []string{"0.21", "v0.21.0", "0.20.0"} {
		f := newBumpFixture(t)
		if _, err := f.bumper().Bump(context.Background(), v, BumpOptions{}); err == nil {
			t.Errorf("Bump(%q): expected error", v)
		}
		f.assertUntouched(t)
	}
}

func TestBump_PatternNotFoundWritesNothing(t *testing.T) {
	f := newBumpFixture(t)
	if err := os.WriteFile(filepath.Join(f.dir, "src", "version.rs"), []byte("no version here\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := f.bumper().Bump(context.Background(), "0.21.0", BumpOptions{})

	var notFound *PatternNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected PatternNotFoundError, got %v", err)
	}
	if notFound.Path != "src/version.rs" {
		t.Errorf("Path = %q", notFound.Path)
	}
	f.assertUntouched(t)
}

func TestBump_SameFileTwice(t *testing.T) {
	f := newBumpFixture(t)
	f.cfg.Files = []FileConfig{
		{Src: "Cargo.toml", Search: `version = "{current_version}"`},
		{Src: "Cargo.toml", Search: `semver = "{current_version}"`},
	}

	if _, err := f.bumper().Bump(context.Background(), "0.21.0", BumpOptions{OnlyPatch: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.read(t, "Cargo.toml"); got != strings.ReplaceAll(sampleCargo, "0.20.0", "0.21.0") {
		t.Errorf("Cargo.toml:\n%s", got)
	}
}
