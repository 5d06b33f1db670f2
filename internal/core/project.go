package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/valter-silva-au/dmenv/internal/fsutil"
	"github.com/valter-silva-au/dmenv/internal/integration"
	"github.com/valter-silva-au/dmenv/internal/observability"
	"github.com/valter-silva-au/dmenv/internal/storage"
	"github.com/valter-silva-au/dmenv/pkg/models"
)

// Project is the set of operations dmenv performs on a Python project.
//
// Only Install, Lock and Tidy create the virtualenv. Every other operation
// that needs it fails with integration.MissingVenvError when it is absent.
type Project interface {
	Paths() models.Paths
	Metadata() models.Metadata

	Init(opts models.InitOptions) error
	Clean() error
	Develop(ctx context.Context) error
	Install(ctx context.Context, action models.PostInstallAction) error
	UpgradePip(ctx context.Context) error
	Lock(ctx context.Context, opts models.LockOptions) error
	Tidy(ctx context.Context, opts models.LockOptions) error
	BumpInLock(name, version string, git bool) error
	Run(ctx context.Context, args []string) error
	RunNoExec(ctx context.Context, args []string) error
	ProcessScripts() error

	ShowDeps(ctx context.Context) error
	ShowOutdated(ctx context.Context) error
	ShowVenvPath() error
	ShowVenvBinPath() error
	ShowLock(w io.Writer, format string) error
	LockEntries() ([]models.LockEntry, error)
}

// ExecFunc replaces the current process.
type ExecFunc func(path string, argv []string, env []string) error

// ProjectConfig holds everything a Project needs.
type ProjectConfig struct {
	Paths        models.Paths
	Python       models.PythonInfo
	Settings     models.Settings
	DmenvVersion string
	Printer      *observability.Printer
	Stdout       io.Writer
	Stderr       io.Writer
	Store        storage.LockStore
	// Exec replaces the process in Run. When nil, Run uses execv where the
	// platform supports it and a child process elsewhere.
	Exec ExecFunc
}

type project struct {
	cfg    ProjectConfig
	runner integration.VenvRunner
	log    zerolog.Logger
}

// NewProject creates a Project. Nil fields get their defaults.
func NewProject(cfg ProjectConfig) Project {
	if cfg.Printer == nil {
		cfg.Printer = observability.NewPrinter()
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Store == nil {
		cfg.Store = storage.NewLockStore()
	}
	if cfg.Exec == nil && integration.ExecSupported {
		cfg.Exec = integration.Execv
	}
	runner := integration.NewVenvRunner(integration.VenvRunnerConfig{
		ProjectPath: cfg.Paths.Project,
		VenvPath:    cfg.Paths.Venv,
		Printer:     cfg.Printer,
		Stdout:      cfg.Stdout,
		Stderr:      cfg.Stderr,
	})
	return &project{
		cfg:    cfg,
		runner: runner,
		log:    observability.WithComponent("project"),
	}
}

func (p *project) Paths() models.Paths {
	return p.cfg.Paths
}

func (p *project) Metadata() models.Metadata {
	return models.Metadata{
		DmenvVersion:   p.cfg.DmenvVersion,
		PythonVersion:  p.cfg.Python.Version,
		PythonPlatform: p.cfg.Python.Platform,
	}
}

func (p *project) Init(opts models.InitOptions) error {
	written, err := initProject(p.cfg.Paths, opts)
	if err != nil {
		return err
	}
	for _, path := range written {
		p.cfg.Printer.Info1("Generated a new " + filepath.Base(path))
	}
	return nil
}

func (p *project) Clean() error {
	return cleanVenv(p.cfg.Printer, p.cfg.Paths.Venv)
}

func (p *project) Develop(ctx context.Context) error {
	p.cfg.Printer.Info2("Running setup.py develop")
	if err := p.requireSetupPy(); err != nil {
		return err
	}
	return p.runner.Run(ctx, "python", "setup.py", "develop", "--no-deps")
}

func (p *project) Install(ctx context.Context, action models.PostInstallAction) error {
	p.cfg.Printer.Info1("Preparing project for development")
	if _, err := os.Stat(p.cfg.Paths.Lock); err != nil {
		return &MissingLockError{Path: p.cfg.Paths.Lock}
	}
	unlock, err := p.lockVenv()
	if err != nil {
		return err
	}
	defer unlock()
	if err := p.ensureVenv(ctx); err != nil {
		return err
	}

	p.cfg.Printer.Info2("Installing dependencies from " + p.cfg.Paths.Lock)
	// The runner works from the project directory, so pip gets the lock's
	// base name.
	lockName := filepath.Base(p.cfg.Paths.Lock)
	if err := p.runner.Run(ctx, "python", "-m", "pip", "install", "--requirement", lockName); err != nil {
		return err
	}

	if action == models.RunSetupPyDevelop {
		return p.Develop(ctx)
	}
	return nil
}

func (p *project) UpgradePip(ctx context.Context) error {
	p.cfg.Printer.Info2("Upgrading pip")
	if err := p.runner.Run(ctx, "python", "-m", "pip", "install", "pip", "--upgrade"); err != nil {
		p.log.Debug().Err(err).Msg("pip upgrade failed")
		return ErrPipUpgradeFailed
	}
	return nil
}

func (p *project) Lock(ctx context.Context, opts models.LockOptions) error {
	unlock, err := p.lockVenv()
	if err != nil {
		return err
	}
	defer unlock()
	return p.lock(ctx, opts)
}

func (p *project) Tidy(ctx context.Context, opts models.LockOptions) error {
	p.cfg.Printer.Info1("Re-generating lock from scratch")
	unlock, err := p.lockVenv()
	if err != nil {
		return err
	}
	defer unlock()
	if err := p.Clean(); err != nil {
		return err
	}
	return p.lock(ctx, opts)
}

func (p *project) lock(ctx context.Context, opts models.LockOptions) error {
	p.cfg.Printer.Info1("Locking dependencies")
	if err := p.requireSetupPy(); err != nil {
		return err
	}
	if err := p.ensureVenv(ctx); err != nil {
		return err
	}
	if err := p.UpgradePip(ctx); err != nil {
		return err
	}
	if err := p.installEditable(ctx); err != nil {
		return err
	}
	return p.lockDependencies(ctx, opts)
}

func (p *project) BumpInLock(name, version string, git bool) error {
	p.cfg.Printer.Info1(fmt.Sprintf("Bumping %s to %s ...", name, version))
	lock, err := p.readLock()
	if err != nil {
		return err
	}
	if git {
		err = lock.GitBump(name, version)
	} else {
		err = lock.Bump(name, version)
	}
	if err != nil {
		return err
	}
	if err := p.cfg.Store.Write(p.cfg.Paths.Lock, lock, p.Metadata()); err != nil {
		return err
	}
	p.cfg.Printer.Info2("Updated " + p.cfg.Paths.Lock)
	return nil
}

func (p *project) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("missing command to run")
	}
	if err := expectVenv(p.cfg.Paths.Venv); err != nil {
		return err
	}
	if p.cfg.Exec == nil {
		return p.RunNoExec(ctx, args)
	}

	bin, err := p.runner.ResolvePath(args[0])
	if err != nil {
		return err
	}
	argv := append([]string{bin}, args[1:]...)
	p.cfg.Printer.Exec(argv)
	if err := os.Chdir(p.cfg.Paths.Project); err != nil {
		return fmt.Errorf("changing to project directory: %w", err)
	}
	return p.cfg.Exec(bin, argv, p.runner.BuildEnv(os.Environ()))
}

func (p *project) RunNoExec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("missing command to run")
	}
	if err := expectVenv(p.cfg.Paths.Venv); err != nil {
		return err
	}
	return p.runner.Run(ctx, args[0], args[1:]...)
}

func (p *project) ProcessScripts() error {
	if err := expectVenv(p.cfg.Paths.Venv); err != nil {
		return err
	}
	p.cfg.Printer.Info1("Processing console scripts")
	_, err := processScripts(p.cfg.Printer, p.cfg.Paths, p.runner)
	return err
}

func (p *project) ShowDeps(ctx context.Context) error {
	return p.runner.Run(ctx, "pip", "list")
}

func (p *project) ShowOutdated(ctx context.Context) error {
	return p.runner.Run(ctx, "pip", "list", "--outdated", "--format", "columns")
}

func (p *project) ShowVenvPath() error {
	p.cfg.Printer.Println(p.cfg.Paths.Venv)
	return nil
}

func (p *project) ShowVenvBinPath() error {
	if err := expectVenv(p.cfg.Paths.Venv); err != nil {
		return err
	}
	p.cfg.Printer.Println(p.runner.BinariesPath())
	return nil
}

func (p *project) ShowLock(w io.Writer, format string) error {
	entries, err := p.LockEntries()
	if err != nil {
		return err
	}
	return WriteLockEntries(w, entries, format)
}

func (p *project) LockEntries() ([]models.LockEntry, error) {
	lock, err := p.readLock()
	if err != nil {
		return nil, err
	}
	return lock.Entries(), nil
}

func (p *project) requireSetupPy() error {
	if _, err := os.Stat(p.cfg.Paths.SetupPy); err != nil {
		return &MissingSetupPyError{Path: filepath.Base(p.cfg.Paths.SetupPy)}
	}
	return nil
}

func (p *project) readLock() (*storage.Lock, error) {
	lock, err := p.cfg.Store.Read(p.cfg.Paths.Lock)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &MissingLockError{Path: p.cfg.Paths.Lock}
	}
	return lock, err
}

// lockVenv serializes the dmenv processes that create or install into the
// same virtualenv. The lock file sits next to the virtualenv so that Clean
// can remove the virtualenv while the lock is held.
func (p *project) lockVenv() (func() error, error) {
	path := p.cfg.Paths.Venv + ".lock"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return fsutil.LockFile(path)
}

func (p *project) ensureVenv(ctx context.Context) error {
	if _, err := os.Stat(p.cfg.Paths.Venv); err == nil {
		p.cfg.Printer.Info2("Using existing virtualenv: " + p.cfg.Paths.Venv)
		return nil
	}
	return createVenv(ctx, p.cfg.Printer, p.cfg.Stdout, p.cfg.Paths.Venv, p.cfg.Python, p.cfg.Settings)
}

func (p *project) installEditable(ctx context.Context) error {
	extra := p.cfg.Settings.Extra()
	p.cfg.Printer.Info2(fmt.Sprintf("Installing deps from setup.py using '%s' extra dependencies", extra))
	return p.runner.Run(ctx, "python", "-m", "pip", "install", "--editable", ".["+extra+"]")
}

func (p *project) lockDependencies(ctx context.Context, opts models.LockOptions) error {
	p.cfg.Printer.Info2("Generating " + p.cfg.Paths.Lock)
	out, err := p.runner.Output(ctx, "pip", "freeze", "--exclude-editable", "--all", "--local")
	if err != nil {
		return err
	}
	frozen, err := storage.ParseFrozen(out)
	if err != nil {
		return err
	}
	lock, err := p.cfg.Store.ReadOrEmpty(p.cfg.Paths.Lock)
	if err != nil {
		return err
	}
	lock.Freeze(frozen, opts)
	if err := p.cfg.Store.Write(p.cfg.Paths.Lock, lock, p.Metadata()); err != nil {
		return err
	}
	p.log.Debug().Int("dependencies", len(lock.Deps)).Str("lock", p.cfg.Paths.Lock).Msg("lock written")
	p.cfg.Printer.Info1("Requirements written to " + p.cfg.Paths.Lock)
	return nil
}
