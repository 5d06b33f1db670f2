package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/valter-silva-au/dmenv/internal/observability"
)

// VenvRunner runs programs installed in a virtualenv, from the project
// directory.
type VenvRunner interface {
	// VenvPath returns the virtualenv root.
	VenvPath() string
	// BinariesPath returns bin/ (Scripts\ on Windows) inside the virtualenv.
	BinariesPath() string
	// ResolvePath returns the path of a program inside the virtualenv.
	ResolvePath(name string) (string, error)
	// BuildEnv returns base with VIRTUAL_ENV set and the virtualenv first on PATH.
	BuildEnv(base []string) []string
	// Run runs a program with the parent's standard streams.
	Run(ctx context.Context, name string, args ...string) error
	// Output runs a program and returns its standard output.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// VenvRunnerConfig holds the parameters of a VenvRunner.
type VenvRunnerConfig struct {
	ProjectPath string
	VenvPath    string
	Printer     *observability.Printer
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	// Logger receives a debug line per invocation; defaults to the
	// "venv" component logger.
	Logger *zerolog.Logger
}

type venvRunner struct {
	cfg VenvRunnerConfig
	log zerolog.Logger
}

// NewVenvRunner creates a VenvRunner. Nil streams default to the process'
// standard streams.
func NewVenvRunner(cfg VenvRunnerConfig) VenvRunner {
	if cfg.Printer == nil {
		cfg.Printer = observability.NewPrinter()
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	log := observability.WithComponent("venv")
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &venvRunner{cfg: cfg, log: log}
}

func (r *venvRunner) VenvPath() string {
	return r.cfg.VenvPath
}

func (r *venvRunner) BinariesPath() string {
	return filepath.Join(r.cfg.VenvPath, BinariesSubdir())
}

func (r *venvRunner) ResolvePath(name string) (string, error) {
	if _, err := os.Stat(r.cfg.VenvPath); err != nil {
		return "", &MissingVenvError{Path: r.cfg.VenvPath}
	}
	path := filepath.Join(r.BinariesPath(), name+ExeSuffix())
	if _, err := os.Stat(path); err != nil {
		return "", &BinaryNotFoundError{Path: path}
	}
	return path, nil
}

func (r *venvRunner) BuildEnv(base []string) []string {
	env := make([]string, 0, len(base)+2)
	pathValue := r.BinariesPath()
	for _, kv := range base {
		key, value, _ := strings.Cut(kv, "=")
		switch {
		case strings.EqualFold(key, "PATH"):
			if value != "" {
				pathValue += string(os.PathListSeparator) + value
			}
		case key == "VIRTUAL_ENV", key == "PYTHONHOME":
			// dropped: VIRTUAL_ENV is set below, PYTHONHOME breaks venvs
		default:
			env = append(env, kv)
		}
	}
	return append(env, "VIRTUAL_ENV="+r.cfg.VenvPath, "PATH="+pathValue)
}

func (r *venvRunner) command(ctx context.Context, name string, args []string) (*exec.Cmd, error) {
	bin, err := r.ResolvePath(name)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = r.cfg.ProjectPath
	cmd.Env = r.BuildEnv(os.Environ())
	r.log.Debug().Str("bin", bin).Strs("args", args).Str("dir", cmd.Dir).Msg("running")
	return cmd, nil
}

func (r *venvRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd, err := r.command(ctx, name, args)
	if err != nil {
		return err
	}
	r.cfg.Printer.Cmd(cmd.Path, args)
	cmd.Stdin = r.cfg.Stdin
	cmd.Stdout = r.cfg.Stdout
	cmd.Stderr = r.cfg.Stderr
	return commandError(cmd, cmd.Run(), "")
}

func (r *venvRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd, err := r.command(ctx, name, args)
	if err != nil {
		return "", err
	}
	r.cfg.Printer.Cmd(cmd.Path, args)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := commandError(cmd, cmd.Run(), stderr.String()); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

// commandError converts the result of cmd.Run into a CommandFailedError when
// the process ran but exited non-zero.
func commandError(cmd *exec.Cmd, err error, stderr string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandFailedError{Cmd: cmd.Args, ExitCode: exitCode(exitErr), Stderr: stderr}
	}
	return fmt.Errorf("executing %s: %w", cmd.Path, err)
}

// exitCode follows the shell convention of 128+signal for a child killed by
// a signal, where ExitCode reports -1.
func exitCode(exitErr *exec.ExitError) int {
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 1
}

// BinariesSubdir is the virtualenv directory holding executables.
func BinariesSubdir() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

// ExeSuffix is appended to program names inside a virtualenv.
func ExeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
