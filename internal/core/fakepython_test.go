package core

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/valter-silva-au/dmenv/internal/observability"
	"github.com/valter-silva-au/dmenv/pkg/models"
)

// fakePythonScript creates a virtualenv containing copies of the fake
// python and pip when called as `python -m venv PATH`.
const fakePythonScript = `#!/bin/sh
echo "python $*" >> "$FAKE_LOG"
if [ "$1" = "-m" ] && [ "$2" = "venv" ]; then
  shift 2
  if [ "$1" = "--system-site-packages" ]; then shift; fi
  mkdir -p "$1/bin"
  cp "$FAKE_TOOLS/python" "$1/bin/python"
  cp "$FAKE_TOOLS/pip" "$1/bin/pip"
  exit 0
fi
if [ "$1" = "-m" ] && [ "$2" = "pip" ] && [ "$5" = "--upgrade" ] && [ -n "$FAKE_PIP_UPGRADE_FAIL" ]; then
  exit 1
fi
if [ "$1" = "failing" ]; then
  exit 4
fi
exit 0
`

const fakePipScript = `#!/bin/sh
echo "pip $*" >> "$FAKE_LOG"
if [ "$1" = "freeze" ]; then
  cat "$FAKE_FREEZE"
fi
`

type fakePython struct {
	binary string
	log    string
	freeze string
}

func (f *fakePython) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.log)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func (f *fakePython) setFreeze(t *testing.T, output string) {
	t.Helper()
	if err := os.WriteFile(f.freeze, []byte(output), 0o644); err != nil {
		t.Fatal(err)
	}
}

func setupFakePython(t *testing.T) *fakePython {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake python interpreter needs a POSIX shell")
	}
	tools := t.TempDir()
	for name, body := range map[string]string{"python": fakePythonScript, "pip": fakePipScript} {
		if err := os.WriteFile(filepath.Join(tools, name), []byte(body), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	f := &fakePython{
		binary: filepath.Join(tools, "python"),
		log:    filepath.Join(tools, "calls.log"),
		freeze: filepath.Join(tools, "freeze.txt"),
	}
	f.setFreeze(t, "")
	t.Setenv("FAKE_TOOLS", tools)
	t.Setenv("FAKE_LOG", f.log)
	t.Setenv("FAKE_FREEZE", f.freeze)
	t.Setenv("FAKE_PIP_UPGRADE_FAIL", "")
	return f
}

type testProject struct {
	Project
	fake    *fakePython
	paths   models.Paths
	printed *bytes.Buffer
	execs   [][]string
}

func newTestProject(t *testing.T, settings models.Settings) *testProject {
	t.Helper()
	fake := setupFakePython(t)
	paths, err := PathsResolver{Project: t.TempDir(), PythonVersion: "3.7.1", Settings: settings}.Paths()
	if err != nil {
		t.Fatal(err)
	}

	tp := &testProject{fake: fake, paths: paths, printed: &bytes.Buffer{}}
	tp.Project = NewProject(ProjectConfig{
		Paths:        paths,
		Python:       models.PythonInfo{Binary: fake.binary, Version: "3.7.1", Platform: "linux"},
		Settings:     settings,
		DmenvVersion: "0.20.0",
		Printer:      &observability.Printer{Out: tp.printed, Err: tp.printed},
		Stdout:       &bytes.Buffer{},
		Stderr:       &bytes.Buffer{},
		Exec: func(path string, argv, env []string) error {
			tp.execs = append(tp.execs, argv)
			return nil
		},
	})
	return tp
}

func (tp *testProject) writeProjectFile(t *testing.T, name, contents string) {
	t.Helper()
	path := filepath.Join(tp.paths.Project, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (tp *testProject) readLock(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(tp.paths.Lock)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func assertCalled(t *testing.T, calls []string, want string) {
	t.Helper()
	for _, c := range calls {
		if c == want {
			return
		}
	}
	t.Errorf("expected call %q, got:\n%s", want, strings.Join(calls, "\n"))
}

func assertNotCalled(t *testing.T, calls []string, unwanted string) {
	t.Helper()
	for _, c := range calls {
		if c == unwanted {
			t.Errorf("unexpected call %q", unwanted)
		}
	}
}
