package cli

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/valter-silva-au/dmenv/internal/core"
	"github.com/valter-silva-au/dmenv/internal/integration"
	"github.com/valter-silva-au/dmenv/pkg/models"
)

// --- init tests ---

func TestInitCmd_PassesOptions(t *testing.T) {
	var got models.InitOptions
	mock := &projectMock{initFn: func(opts models.InitOptions) error {
		got = opts
		return nil
	}}

	_, _, err := executeWith(t, mock, "init", "--name", "foo", "--version", "0.42", "--author", "Jane", "--setup-cfg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.InitOptions{Name: "foo", Version: "0.42", Author: "Jane", SetupCfg: true}
	if got != want {
		t.Errorf("InitOptions = %+v, want %+v", got, want)
	}
}

func TestInitCmd_PropagatesError(t *testing.T) {
	mock := &projectMock{initFn: func(models.InitOptions) error { return core.ErrSetupPyExists }}

	_, _, err := executeWith(t, mock, "init")
	if !errors.Is(err, core.ErrSetupPyExists) {
		t.Errorf("expected ErrSetupPyExists, got %v", err)
	}
}

// --- install tests ---

func TestInstallCmd_PostInstallAction(t *testing.T) {
	tests := []struct {
		args []string
		want models.PostInstallAction
	}{
		{[]string{"install"}, models.RunSetupPyDevelop},
		{[]string{"install", "--no-develop"}, models.NoPostInstall},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			var got models.PostInstallAction = -1
			mock := &projectMock{installFn: func(action models.PostInstallAction) error {
				got = action
				return nil
			}}
			if _, _, err := executeWith(t, mock, tt.args...); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("action = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- lock / tidy tests ---

func TestLockCmd_PassesLockOptions(t *testing.T) {
	var got models.LockOptions
	mock := &projectMock{lockFn: func(opts models.LockOptions) error {
		got = opts
		return nil
	}}

	_, _, err := executeWith(t, mock, "lock", "--python-version", "<3.7", "--platform", "win32")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.LockOptions{PythonVersion: "<3.7", SysPlatform: "win32"}
	if got != want {
		t.Errorf("LockOptions = %+v, want %+v", got, want)
	}
}

func TestTidyCmd(t *testing.T) {
	var got models.LockOptions
	mock := &projectMock{tidyFn: func(opts models.LockOptions) error {
		got = opts
		return nil
	}}

	if _, _, err := executeWith(t, mock, "tidy", "--platform", "linux"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SysPlatform != "linux" {
		t.Errorf("SysPlatform = %q", got.SysPlatform)
	}
}

// --- bump-in-lock tests ---

func TestBumpInLockCmd(t *testing.T) {
	type bump struct {
		name, version string
		git           bool
	}
	var got []bump
	mock := &projectMock{bumpFn: func(name, version string, git bool) error {
		got = append(got, bump{name, version, git})
		return nil
	}}

	if _, _, err := executeWith(t, mock, "bump-in-lock", "attrs", "19.1.0"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := executeWith(t, mock, "bump-in-lock", "--git", "lib", "v2"); err != nil {
		t.Fatal(err)
	}

	want := []bump{{"attrs", "19.1.0", false}, {"lib", "v2", true}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(bump{})); diff != "" {
		t.Errorf("bumps mismatch (-want +got):\n%s", diff)
	}
}

func TestBumpInLockCmd_RequiresTwoArgs(t *testing.T) {
	mock := &projectMock{}
	if _, _, err := executeWith(t, mock, "bump-in-lock", "attrs"); err == nil {
		t.Error("expected error with a single argument")
	}
	if len(mock.calls) != 0 {
		t.Errorf("project should not be used, calls = %v", mock.calls)
	}
}

// --- simple command tests ---

func TestSimpleCommands(t *testing.T) {
	for _, name := range []string{
		"clean", "develop", "upgrade-pip", "process-scripts",
		"show:deps", "show:outdated", "show:venv_path", "show:bin_path",
	} {
		t.Run(name, func(t *testing.T) {
			mock := &projectMock{}
			if _, _, err := executeWith(t, mock, name); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff([]string{name}, mock.calls); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestShowLockCmd_Format(t *testing.T) {
	var gotFormat string
	mock := &projectMock{showLockFn: func(w io.Writer, format string) error {
		gotFormat = format
		_, err := io.WriteString(w, "attrs==19.1.0\n")
		return err
	}}

	out, _, err := executeWith(t, mock, "show:lock", "--format", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if gotFormat != "yaml" {
		t.Errorf("format = %q, want yaml", gotFormat)
	}
	if !strings.Contains(out, "attrs==19.1.0") {
		t.Errorf("output should go to the command's writer, got %q", out)
	}

	if _, _, err := executeWith(t, mock, "show:lock"); err != nil {
		t.Fatal(err)
	}
	if gotFormat != core.FormatTable {
		t.Errorf("default format = %q, want table", gotFormat)
	}
}

// --- run tests ---

func TestRunCmd_PassesFlagsThrough(t *testing.T) {
	var got []string
	mock := &projectMock{runFn: func(args []string) error {
		got = args
		return nil
	}}

	if _, _, err := executeWith(t, mock, "run", "pytest", "-k", "slow", "--verbose"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"pytest", "-k", "slow", "--verbose"}, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCmd_NoExec(t *testing.T) {
	mock := &projectMock{}

	if _, _, err := executeWith(t, mock, "run", "--no-exec", "python", "--version"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"run-no-exec"}, mock.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCmd_ForwardsExitCode(t *testing.T) {
	origExit := osExit
	defer func() { osExit = origExit }()
	exitCode := -1
	osExit = func(code int) { exitCode = code }

	mock := &projectMock{runNoExecFn: func(args []string) error {
		return &integration.CommandFailedError{Cmd: args, ExitCode: 3}
	}}

	if _, _, err := executeWith(t, mock, "run", "--no-exec", "pytest"); err != nil {
		t.Fatalf("exit code should be forwarded instead of returned, got %v", err)
	}
	if exitCode != 3 {
		t.Errorf("exit code = %d, want 3", exitCode)
	}
}

func TestRunCmd_UnknownExitCodeBecomesFailure(t *testing.T) {
	origExit := osExit
	defer func() { osExit = origExit }()
	exitCode := 0
	osExit = func(code int) { exitCode = code }

	mock := &projectMock{runNoExecFn: func(args []string) error {
		return &integration.CommandFailedError{Cmd: args, ExitCode: -1}
	}}

	if _, _, err := executeWith(t, mock, "run", "--no-exec", "pytest"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exitCode != 1 {
		t.Errorf("exit code = %d, want 1", exitCode)
	}
}

func TestRunCmd_OtherErrors(t *testing.T) {
	mock := &projectMock{runFn: func([]string) error {
		return &integration.MissingVenvError{Path: "/src/demo/.venv/dev/3.7.1"}
	}}

	_, _, err := executeWith(t, mock, "run", "pytest")
	var missing *integration.MissingVenvError
	if !errors.As(err, &missing) {
		t.Errorf("expected MissingVenvError, got %v", err)
	}
}

func TestRunCmd_RequiresCommand(t *testing.T) {
	if _, _, err := executeWith(t, &projectMock{}, "run"); err == nil {
		t.Error("expected error without a command")
	}
}
