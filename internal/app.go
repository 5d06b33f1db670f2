// Package internal provides the App struct that wires the components of
// dmenv together and initializes the CLI layer.
package internal

import (
	"context"
	"fmt"
	"os"

	"github.com/valter-silva-au/dmenv/internal/cli"
	"github.com/valter-silva-au/dmenv/internal/core"
	"github.com/valter-silva-au/dmenv/internal/integration"
	"github.com/valter-silva-au/dmenv/internal/observability"
	"github.com/valter-silva-au/dmenv/internal/storage"
	"github.com/valter-silva-au/dmenv/pkg/models"
)

// App holds the service dependencies shared by every dmenv command.
type App struct {
	ConfigDir    string
	DmenvVersion string

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	LockStore storage.LockStore

	// Integration services
	Detector integration.PythonDetector

	// cacheDir overrides the user cache directory; used by tests.
	cacheDir string
}

// NewApp creates the App and wires it into the CLI package. configDir is the
// directory holding dmenv.toml.
func NewApp(configDir, version string) *App {
	app := &App{
		ConfigDir:    configDir,
		DmenvVersion: version,
		ConfigMgr:    core.NewConfigurationManager(configDir),
		LockStore:    storage.NewLockStore(),
		Detector:     integration.NewPythonDetector(),
	}

	// --- Wire CLI package-level variables ---
	cli.ProjectOpener = app.OpenProject

	return app
}

// OpenProject resolves the interpreter, the settings and the paths selected
// by opts, then builds the Project.
func (a *App) OpenProject(ctx context.Context, opts models.ProjectOptions) (core.Project, error) {
	log := observability.WithComponent("app")

	cfg, err := a.ConfigMgr.Load()
	if err != nil {
		return nil, err
	}
	settings := cfg.Settings
	settings.Production = opts.Production
	if opts.SystemSitePackages {
		settings.SystemSitePackages = true
	}

	binary, err := core.ResolvePythonBinary(opts.Python, cfg, opts.Env)
	if err != nil {
		return nil, err
	}
	info, err := a.Detector.Detect(ctx, binary)
	if err != nil {
		return nil, err
	}

	projectDir := opts.Project
	if projectDir == "" {
		projectDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
	}
	paths, err := core.PathsResolver{
		Project:       projectDir,
		PythonVersion: info.Version,
		Settings:      settings,
		CacheDir:      a.cacheDir,
	}.Paths()
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("python", info.Binary).
		Str("version", info.Version).
		Str("venv", paths.Venv).
		Str("lock", paths.Lock).
		Msg("project resolved")

	printer := observability.NewPrinter()
	stdout := os.Stdout
	if opts.ProgressToStderr {
		printer.Out = os.Stderr
		stdout = os.Stderr
	}

	return core.NewProject(core.ProjectConfig{
		Paths:        paths,
		Python:       *info,
		Settings:     settings,
		DmenvVersion: a.DmenvVersion,
		Printer:      printer,
		Stdout:       stdout,
		Stderr:       os.Stderr,
		Store:        a.LockStore,
	}), nil
}

// ResolveConfigDir returns the directory holding dmenv.toml, falling back to
// the working directory when no user configuration directory exists.
func ResolveConfigDir() string {
	dir, err := core.DefaultConfigDir()
	if err != nil {
		cwd, _ := os.Getwd()
		return cwd
	}
	return dir
}
