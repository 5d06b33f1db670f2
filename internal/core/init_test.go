package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/dmenv/pkg/models"
)

func TestProject_Init_SetupPy(t *testing.T) {
	tp := newTestProject(t, models.Settings{})

	err := tp.Init(models.InitOptions{Name: "foo", Version: "0.42", Author: "Jane Doe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(tp.paths.SetupPy)
	if err != nil {
		t.Fatal(err)
	}
	contents := string(data)
	for _, want := range []string{`name="foo"`, `version="0.42"`, `author="Jane Doe"`, `"dev": [`} {
		if !strings.Contains(contents, want) {
			t.Errorf("setup.py missing %s:\n%s", want, contents)
		}
	}
	if !strings.Contains(tp.printed.String(), "Generated a new setup.py") {
		t.Errorf("printed: %q", tp.printed.String())
	}
}

func TestProject_Init_Defaults(t *testing.T) {
	tp := newTestProject(t, models.Settings{})

	if err := tp.Init(models.InitOptions{}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(tp.paths.SetupPy)
	name := filepath.Base(tp.paths.Project)
	if !strings.Contains(string(data), `name="`+name+`"`) {
		t.Errorf("name should default to %q:\n%s", name, data)
	}
	if !strings.Contains(string(data), `version="0.1.0"`) {
		t.Errorf("version should default to 0.1.0:\n%s", data)
	}
}

func TestProject_Init_SetupCfg(t *testing.T) {
	tp := newTestProject(t, models.Settings{})

	if err := tp.Init(models.InitOptions{Name: "foo", SetupCfg: true}); err != nil {
		t.Fatal(err)
	}

	cfg, err := os.ReadFile(tp.paths.SetupCfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(cfg), "name = foo") {
		t.Errorf("setup.cfg:\n%s", cfg)
	}
	shim, err := os.ReadFile(tp.paths.SetupPy)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(shim)) != "from setuptools import setup\n\nsetup()" {
		t.Errorf("unexpected shim:\n%s", shim)
	}
}

func TestProject_Init_RefusesToOverwrite(t *testing.T) {
	tp := newTestProject(t, models.Settings{})
	tp.writeProjectFile(t, "setup.py", "# mine\n")

	err := tp.Init(models.InitOptions{Name: "foo"})
	if !errors.Is(err, ErrSetupPyExists) {
		t.Fatalf("expected ErrSetupPyExists, got %v", err)
	}
	data, _ := os.ReadFile(tp.paths.SetupPy)
	if string(data) != "# mine\n" {
		t.Error("existing setup.py was modified")
	}
}

func TestProject_Init_SetupCfgExists(t *testing.T) {
	tp := newTestProject(t, models.Settings{})
	tp.writeProjectFile(t, "setup.cfg", "[metadata]\n")

	if err := tp.Init(models.InitOptions{SetupCfg: true}); err == nil {
		t.Fatal("expected error when setup.cfg exists")
	}
	if _, err := os.Stat(tp.paths.SetupPy); !os.IsNotExist(err) {
		t.Error("setup.py shim must not be written when setup.cfg exists")
	}
}
