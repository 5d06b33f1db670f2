package core

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/valter-silva-au/dmenv/pkg/models"
)

//go:embed templates
var templateFS embed.FS

// DefaultProjectVersion is used by Init when no version is given.
const DefaultProjectVersion = "0.1.0"

type setupValues struct {
	Name        string
	Version     string
	Author      string
	Description string
}

func renderTemplate(name string, values setupValues) ([]byte, error) {
	raw, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", name, err)
	}
	tmpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// initProject writes setup.py, or setup.cfg plus a setup.py shim, into the
// project. Nothing is written if one of the targets already exists.
func initProject(paths models.Paths, opts models.InitOptions) ([]string, error) {
	if opts.Name == "" {
		opts.Name = filepath.Base(paths.Project)
	}
	if opts.Version == "" {
		opts.Version = DefaultProjectVersion
	}
	values := setupValues{
		Name:        opts.Name,
		Version:     opts.Version,
		Author:      opts.Author,
		Description: opts.Name,
	}

	targets := []string{paths.SetupPy}
	if opts.SetupCfg {
		targets = append(targets, paths.SetupCfg)
	}
	for _, target := range targets {
		if _, err := os.Stat(target); err == nil {
			if target == paths.SetupPy {
				return nil, ErrSetupPyExists
			}
			return nil, fmt.Errorf("%s already exists. Aborting", filepath.Base(target))
		}
	}

	contents := make(map[string][]byte, len(targets))
	if opts.SetupCfg {
		cfg, err := renderTemplate("setup.cfg.tmpl", values)
		if err != nil {
			return nil, err
		}
		shim, err := templateFS.ReadFile("templates/setup_shim.py")
		if err != nil {
			return nil, fmt.Errorf("reading setup.py shim: %w", err)
		}
		contents[paths.SetupCfg] = cfg
		contents[paths.SetupPy] = shim
	} else {
		py, err := renderTemplate("setup.py.tmpl", values)
		if err != nil {
			return nil, err
		}
		contents[paths.SetupPy] = py
	}

	var written []string
	for _, target := range targets {
		if err := os.WriteFile(target, contents[target], 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}
