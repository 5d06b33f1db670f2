package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/dmenv/pkg/models"
)

// PathsResolver computes where the virtualenv and the lock file of a
// project live.
type PathsResolver struct {
	Project       string
	PythonVersion string
	Settings      models.Settings
	// CacheDir overrides os.UserCacheDir when VenvOutsideProject is set.
	CacheDir string
}

// Paths returns the resolved paths. Virtualenvs are keyed by flavour and
// Python version so that switching interpreters never reuses a stale venv:
//
//	<project>/.venv/dev/3.7.1
//	<cache>/dmenv/venv/prod/3.7.1/<project name>
func (r PathsResolver) Paths() (models.Paths, error) {
	project, err := filepath.Abs(r.Project)
	if err != nil {
		return models.Paths{}, fmt.Errorf("resolving project path: %w", err)
	}

	var venv string
	if r.Settings.VenvOutsideProject {
		cache := r.CacheDir
		if cache == "" {
			cache, err = os.UserCacheDir()
			if err != nil {
				return models.Paths{}, fmt.Errorf("locating user cache directory: %w", err)
			}
		}
		venv = filepath.Join(cache, "dmenv", "venv", r.Settings.VenvKind(), r.PythonVersion, filepath.Base(project))
	} else {
		venv = filepath.Join(project, ".venv", r.Settings.VenvKind(), r.PythonVersion)
	}

	lockName := models.DevLockFilename
	if r.Settings.Production {
		lockName = models.ProdLockFilename
	}

	return models.Paths{
		Project:  project,
		Venv:     venv,
		Lock:     filepath.Join(project, lockName),
		SetupPy:  filepath.Join(project, "setup.py"),
		SetupCfg: filepath.Join(project, "setup.cfg"),
	}, nil
}
