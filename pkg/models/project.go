package models

const (
	// DevLockFilename is the lock file used during development.
	DevLockFilename = "requirements.lock"
	// ProdLockFilename is the lock file used with --production.
	ProdLockFilename = "production.lock"
)

// PythonInfo describes the interpreter a project is bound to.
type PythonInfo struct {
	Binary   string `json:"binary"`
	Version  string `json:"version"`  // e.g. "3.7.1"
	Platform string `json:"platform"` // value of sys.platform
}

// Metadata is written in the header of every generated lock file.
type Metadata struct {
	DmenvVersion   string
	PythonVersion  string
	PythonPlatform string
}

// Paths holds every filesystem location a project operation needs.
type Paths struct {
	Project  string
	Venv     string
	Lock     string
	SetupPy  string
	SetupCfg string
}

// InitOptions holds the parameters used to generate a new setup.py.
type InitOptions struct {
	Name     string
	Version  string
	Author   string
	SetupCfg bool
}

// LockOptions adds environment markers to dependencies that are new to the
// lock file.
type LockOptions struct {
	PythonVersion string
	SysPlatform   string
}

// PostInstallAction tells Install what to do once the lock is installed.
type PostInstallAction int

const (
	RunSetupPyDevelop PostInstallAction = iota
	NoPostInstall
)

// FrozenDependency is one line of pip freeze output: either "name==version"
// or a direct reference "name @ url", in which case Version is empty.
type FrozenDependency struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
}

// LockEntry is the structured view of one lock line, used by show:lock and
// the MCP tools.
type LockEntry struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind" yaml:"kind"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Ref     string `json:"ref,omitempty" yaml:"ref,omitempty"`
	Marker  string `json:"marker,omitempty" yaml:"marker,omitempty"`
}

// ProjectOptions are the global command-line options that select a project
// and the interpreter bound to it.
type ProjectOptions struct {
	Project            string
	Python             string
	Env                string
	Production         bool
	SystemSitePackages bool
	// ProgressToStderr keeps stdout free for machine-readable output, such
	// as the MCP stdio transport.
	ProgressToStderr bool
}
