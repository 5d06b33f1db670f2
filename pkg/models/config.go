package models

// EnvConfig holds the settings of a named environment from dmenv.toml.
type EnvConfig struct {
	Python string `toml:"python" mapstructure:"python"`
}

// Config holds the user configuration read from dmenv.toml via Viper.
type Config struct {
	Envs     map[string]EnvConfig `toml:"env" mapstructure:"env"`
	Settings Settings             `toml:"settings" mapstructure:"settings"`
}

// Settings tweaks how virtualenvs and lock files are laid out.
type Settings struct {
	// Production selects production.lock and the "prod" extra.
	Production bool `toml:"-" mapstructure:"-"`
	// SystemSitePackages creates virtualenvs with --system-site-packages.
	SystemSitePackages bool `toml:"system_site_packages" mapstructure:"system_site_packages"`
	// VenvOutsideProject stores virtualenvs in the user cache directory
	// instead of <project>/.venv.
	VenvOutsideProject bool `toml:"venv_outside_project" mapstructure:"venv_outside_project"`
}

// VenvKind returns the sub-directory name used for the virtualenv flavour.
func (s Settings) VenvKind() string {
	if s.Production {
		return "prod"
	}
	return "dev"
}

// Extra returns the setup.py extra installed when locking.
func (s Settings) Extra() string {
	if s.Production {
		return "prod"
	}
	return "dev"
}
