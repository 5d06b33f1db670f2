package cli

import (
	"context"
	"io"

	"github.com/valter-silva-au/dmenv/pkg/models"
)

// projectMock implements core.Project with overridable function fields.
type projectMock struct {
	initFn      func(opts models.InitOptions) error
	installFn   func(action models.PostInstallAction) error
	lockFn      func(opts models.LockOptions) error
	tidyFn      func(opts models.LockOptions) error
	bumpFn      func(name, version string, git bool) error
	runFn       func(args []string) error
	runNoExecFn func(args []string) error
	showLockFn  func(w io.Writer, format string) error

	calls []string
}

func (m *projectMock) record(name string) { m.calls = append(m.calls, name) }

func (m *projectMock) Paths() models.Paths       { return models.Paths{} }
func (m *projectMock) Metadata() models.Metadata { return models.Metadata{} }

func (m *projectMock) Init(opts models.InitOptions) error {
	m.record("init")
	if m.initFn != nil {
		return m.initFn(opts)
	}
	return nil
}

func (m *projectMock) Clean() error {
	m.record("clean")
	return nil
}

func (m *projectMock) Develop(context.Context) error {
	m.record("develop")
	return nil
}

func (m *projectMock) Install(_ context.Context, action models.PostInstallAction) error {
	m.record("install")
	if m.installFn != nil {
		return m.installFn(action)
	}
	return nil
}

func (m *projectMock) UpgradePip(context.Context) error {
	m.record("upgrade-pip")
	return nil
}

func (m *projectMock) Lock(_ context.Context, opts models.LockOptions) error {
	m.record("lock")
	if m.lockFn != nil {
		return m.lockFn(opts)
	}
	return nil
}

func (m *projectMock) Tidy(_ context.Context, opts models.LockOptions) error {
	m.record("tidy")
	if m.tidyFn != nil {
		return m.tidyFn(opts)
	}
	return nil
}

func (m *projectMock) BumpInLock(name, version string, git bool) error {
	m.record("bump-in-lock")
	if m.bumpFn != nil {
		return m.bumpFn(name, version, git)
	}
	return nil
}

func (m *projectMock) Run(_ context.Context, args []string) error {
	m.record("run")
	if m.runFn != nil {
		return m.runFn(args)
	}
	return nil
}

func (m *projectMock) RunNoExec(_ context.Context, args []string) error {
	m.record("run-no-exec")
	if m.runNoExecFn != nil {
		return m.runNoExecFn(args)
	}
	return nil
}

func (m *projectMock) ProcessScripts() error {
	m.record("process-scripts")
	return nil
}

func (m *projectMock) ShowDeps(context.Context) error {
	m.record("show:deps")
	return nil
}

func (m *projectMock) ShowOutdated(context.Context) error {
	m.record("show:outdated")
	return nil
}

func (m *projectMock) ShowVenvPath() error {
	m.record("show:venv_path")
	return nil
}

func (m *projectMock) ShowVenvBinPath() error {
	m.record("show:bin_path")
	return nil
}

func (m *projectMock) ShowLock(w io.Writer, format string) error {
	m.record("show:lock")
	if m.showLockFn != nil {
		return m.showLockFn(w, format)
	}
	return nil
}

func (m *projectMock) LockEntries() ([]models.LockEntry, error) {
	return nil, nil
}
