package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/valter-silva-au/dmenv/internal/integration"
	"github.com/valter-silva-au/dmenv/internal/observability"
	"github.com/valter-silva-au/dmenv/pkg/models"
)

// createVenv runs `python -m venv` with the interpreter the project is bound to.
func createVenv(ctx context.Context, p *observability.Printer, out io.Writer, path string, python models.PythonInfo, settings models.Settings) error {
	p.Info1("Creating virtualenv in: " + path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating virtualenv parent directory: %w", err)
	}

	args := []string{"-m", "venv"}
	if settings.SystemSitePackages {
		args = append(args, "--system-site-packages")
	}
	args = append(args, path)

	p.Cmd(python.Binary, args)
	cmd := exec.CommandContext(ctx, python.Binary, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to create virtualenv in %s: %w", path, err)
	}
	return nil
}

// cleanVenv removes the virtualenv. A missing virtualenv is not an error.
func cleanVenv(p *observability.Printer, path string) error {
	p.Info1("Cleaning " + path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing virtualenv %s: %w", path, err)
	}
	return nil
}

// expectVenv fails with MissingVenvError unless the virtualenv exists.
func expectVenv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return &integration.MissingVenvError{Path: path}
	}
	return nil
}
