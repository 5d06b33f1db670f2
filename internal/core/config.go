// Package core implements dmenv's project operations: creating and
// cleaning virtualenvs, generating and installing lock files, and running
// programs from the virtualenv.
package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/dmenv/internal/integration"
	"github.com/valter-silva-au/dmenv/pkg/models"
)

// ConfigFileName is the base name of the user configuration file.
const ConfigFileName = "dmenv"

// lookupPython is swapped in tests.
var lookupPython = integration.LookupPython

// ConfigurationManager loads the user configuration from dmenv.toml.
type ConfigurationManager interface {
	Load() (*models.Config, error)
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading TOML configuration files.
type viperConfigManager struct {
	dir string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// dmenv.toml from dir.
func NewConfigurationManager(dir string) ConfigurationManager {
	return &viperConfigManager{dir: dir}
}

// DefaultConfigDir returns $DMENV_CONFIG_DIR, or the dmenv directory inside
// the user configuration directory.
func DefaultConfigDir() (string, error) {
	if dir := os.Getenv("DMENV_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(base, "dmenv"), nil
}

// Load reads dmenv.toml. If the file does not exist, defaults are returned.
// DMENV_VENV_OUTSIDE_PROJECT, when set to any non-empty value, forces
// settings.venv_outside_project.
func (cm *viperConfigManager) Load() (*models.Config, error) {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("toml")
	v.AddConfigPath(cm.dir)

	v.SetDefault("settings.venv_outside_project", false)
	v.SetDefault("settings.system_site_packages", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s.toml: %w", ConfigFileName, err)
		}
	}

	cfg := &models.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding %s.toml: %w", ConfigFileName, err)
	}
	if cfg.Envs == nil {
		cfg.Envs = make(map[string]models.EnvConfig)
	}
	if os.Getenv("DMENV_VENV_OUTSIDE_PROJECT") != "" {
		cfg.Settings.VenvOutsideProject = true
	}
	return cfg, nil
}

// PythonForEnv returns the interpreter configured for the named environment.
// Viper lowercases keys, so environment names are matched case-insensitively.
func PythonForEnv(cfg *models.Config, env string) (string, bool) {
	if cfg == nil || env == "" {
		return "", false
	}
	e, ok := cfg.Envs[strings.ToLower(env)]
	if !ok || e.Python == "" {
		return "", false
	}
	return e.Python, true
}

// ResolvePythonBinary picks the interpreter used to create virtualenvs:
// the explicit flag, then the configured environment, then $DMENV_PYTHON,
// then python3 or python on PATH.
func ResolvePythonBinary(flag string, cfg *models.Config, env string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if python, ok := PythonForEnv(cfg, env); ok {
		return python, nil
	}
	if env != "" {
		return "", fmt.Errorf("no python configured for environment %q in %s.toml", env, ConfigFileName)
	}
	if python := os.Getenv("DMENV_PYTHON"); python != "" {
		return python, nil
	}
	return lookupPython("python3", "python")
}
