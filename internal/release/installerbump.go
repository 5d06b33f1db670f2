package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/briandowns/spinner"
	"github.com/valter-silva-au/dmenv/internal/fsutil"
	"github.com/valter-silva-au/dmenv/internal/installer"
	"github.com/valter-silva-au/dmenv/internal/integration"
	"github.com/valter-silva-au/dmenv/internal/observability"
	"golang.org/x/sync/errgroup"
)

// DefaultInstallerVersionFile holds the version the installer downloads.
const DefaultInstallerVersionFile = "internal/installer/version.go"

// ReleaseBranch is the only branch the installer may be bumped from.
const ReleaseBranch = "master"

// DeliveryMissingError is returned when a release artifact cannot be found.
type DeliveryMissingError struct {
	URL    string
	Status int
}

func (e *DeliveryMissingError) Error() string {
	return fmt.Sprintf("%s: HTTP %d", e.URL, e.Status)
}

// InstallerBumperConfig holds the collaborators of an InstallerBumper.
type InstallerBumperConfig struct {
	ConfigPath  string // tbump.toml
	VersionFile string // defaults to DefaultInstallerVersionFile next to ConfigPath
	BaseURL     string // release host, defaults to installer.DefaultBaseURL
	Client      *http.Client
	Git         integration.Git
	Printer     *observability.Printer
	// Interactive shows a spinner while the deliveries are checked.
	Interactive bool
}

// InstallerBumper points the installer at the latest published release.
type InstallerBumper struct {
	cfg InstallerBumperConfig
}

// NewInstallerBumper creates an InstallerBumper, filling defaults.
func NewInstallerBumper(c InstallerBumperConfig) *InstallerBumper {
	if c.ConfigPath == "" {
		c.ConfigPath = DefaultConfigFile
	}
	dir := filepath.Dir(c.ConfigPath)
	if c.VersionFile == "" {
		c.VersionFile = filepath.Join(dir, filepath.FromSlash(DefaultInstallerVersionFile))
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if c.Git == nil {
		c.Git = integration.NewGit(dir)
	}
	if c.Printer == nil {
		c.Printer = observability.NewPrinter()
	}
	return &InstallerBumper{cfg: c}
}

// Run checks that the current release is published for every platform and
// rewrites the installer version. It returns the version written.
func (b *InstallerBumper) Run(ctx context.Context) (string, error) {
	if err := b.checkGitState(ctx); err != nil {
		return "", err
	}

	cfg, err := LoadConfig(b.cfg.ConfigPath)
	if err != nil {
		return "", err
	}
	version := "v" + cfg.Version.Current
	b.cfg.Printer.Info1("Bumping installer to " + version)

	if err := b.checkDeliveries(ctx, version); err != nil {
		return "", err
	}
	if err := PatchInstallerVersion(b.cfg.VersionFile, version); err != nil {
		return "", err
	}
	b.cfg.Printer.Info2("Patched " + b.cfg.VersionFile)
	return version, nil
}

func (b *InstallerBumper) checkGitState(ctx context.Context) error {
	branch, err := b.cfg.Git.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if branch != ReleaseBranch {
		return fmt.Errorf("not on %s (on %s)", ReleaseBranch, branch)
	}
	behind, err := b.cfg.Git.BehindUpstream(ctx)
	if err != nil {
		return err
	}
	if behind > 0 {
		return fmt.Errorf("behind upstream by %d commit(s)", behind)
	}
	return nil
}

// checkDeliveries HEADs the artifact of every platform concurrently.
func (b *InstallerBumper) checkDeliveries(ctx context.Context, version string) error {
	urls := make([]string, len(installer.Platforms))
	for i, goos := range installer.Platforms {
		u, err := installer.URL(b.cfg.BaseURL, version, goos)
		if err != nil {
			return err
		}
		urls[i] = u
	}

	if b.cfg.Interactive {
		s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(b.cfg.Printer.Out))
		s.Suffix = " Checking release deliveries..."
		s.Start()
		defer s.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range urls {
		g.Go(func() error {
			return b.head(gctx, u)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, u := range urls {
		b.cfg.Printer.Info2("Checked " + u + ": ok")
	}
	return nil
}

func (b *InstallerBumper) head(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	resp, err := b.cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("checking %s: %w", url, err)
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DeliveryMissingError{URL: url, Status: resp.StatusCode}
	}
	return nil
}

var installerVersionLine = regexp.MustCompile(`(?m)^(\s*(?:const\s+)?Version\s*=\s*)"[^"]*"`)

// PatchInstallerVersion rewrites the Version = "..." line of path.
func PatchInstallerVersion(path, version string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	loc := installerVersionLine.FindSubmatchIndex(data)
	if loc == nil {
		return errors.New(path + ": no Version = \"...\" line found")
	}
	patched := make([]byte, 0, len(data)+len(version))
	patched = append(patched, data[:loc[3]]...)
	patched = fmt.Appendf(patched, "%q", version)
	patched = append(patched, data[loc[1]:]...)

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return fsutil.WriteFileAtomic(path, patched, perm)
}
