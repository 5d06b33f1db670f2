package integration

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/valter-silva-au/dmenv/pkg/models"
)

// pythonInfoScript prints the interpreter version and sys.platform on two lines.
const pythonInfoScript = `import sys; v = sys.version_info; print("%d.%d.%d" % (v[0], v[1], v[2])); print(sys.platform)`

// PythonDetector finds out which Python version and platform an interpreter
// reports.
type PythonDetector interface {
	Detect(ctx context.Context, binary string) (*models.PythonInfo, error)
}

type pythonDetector struct {
	// commandRunner is injected for testability. It returns the standard
	// output of binary run with args.
	commandRunner func(ctx context.Context, binary string, args ...string) (string, error)
}

// NewPythonDetector creates a PythonDetector that runs the interpreter.
func NewPythonDetector() PythonDetector {
	return &pythonDetector{commandRunner: runCaptured}
}

// NewPythonDetectorWithRunner creates a PythonDetector with a custom command
// runner for testing.
func NewPythonDetectorWithRunner(runner func(ctx context.Context, binary string, args ...string) (string, error)) PythonDetector {
	return &pythonDetector{commandRunner: runner}
}

func runCaptured(ctx context.Context, binary string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &CommandFailedError{Cmd: cmd.Args, ExitCode: exitCode(exitErr), Stderr: string(exitErr.Stderr)}
		}
		return "", fmt.Errorf("executing %s: %w", binary, err)
	}
	return string(out), nil
}

// Detect runs the interpreter and parses the version and platform it reports.
func (d *pythonDetector) Detect(ctx context.Context, binary string) (*models.PythonInfo, error) {
	out, err := d.commandRunner(ctx, binary, "-c", pythonInfoScript)
	if err != nil {
		return nil, fmt.Errorf("detecting python version of %s: %w", binary, err)
	}

	lines := strings.Fields(strings.TrimSpace(out))
	if len(lines) != 2 {
		return nil, fmt.Errorf("unexpected output from %s: %q", binary, out)
	}
	version, err := ParsePythonVersion(lines[0])
	if err != nil {
		return nil, err
	}
	return &models.PythonInfo{Binary: binary, Version: version, Platform: lines[1]}, nil
}

var pythonVersionPattern = regexp.MustCompile(`^(?:Python\s+)?(\d+)\.(\d+)(?:\.(\d+))?`)

// ParsePythonVersion normalizes "3.7.1", "Python 3.7.1" or "3.8.0rc1" to
// MAJOR.MINOR.PATCH.
func ParsePythonVersion(s string) (string, error) {
	m := pythonVersionPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", fmt.Errorf("invalid python version %q: expected MAJOR.MINOR[.PATCH]", s)
	}
	patch := m[3]
	if patch == "" {
		patch = "0"
	}
	return fmt.Sprintf("%s.%s.%s", m[1], m[2], patch), nil
}

// LookupPython returns the first candidate found on PATH.
func LookupPython(candidates ...string) (string, error) {
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no python interpreter found on PATH (tried %s)", strings.Join(candidates, ", "))
}
