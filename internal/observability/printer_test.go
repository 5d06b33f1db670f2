package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Printer{Out: &out, Err: &errOut}, &out, &errOut
}

func TestPrinter_Markers(t *testing.T) {
	p, out, _ := newTestPrinter()

	p.Info1("Locking dependencies")
	p.Info2("Upgrading pip")
	p.Cmd("/venv/bin/python", []string{"-m", "pip", "freeze"})
	p.Exec([]string{"/venv/bin/pytest", "-k", "lock"})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), out.String())
	}
	checks := []struct {
		marker string
		text   string
	}{
		{"::", "Locking dependencies"},
		{"->", "Upgrading pip"},
		{"->", "-m pip freeze"},
		{"$", "/venv/bin/pytest -k lock"},
	}
	for i, c := range checks {
		if !strings.Contains(lines[i], c.marker) || !strings.Contains(lines[i], c.text) {
			t.Errorf("line %d = %q, want marker %q and text %q", i, lines[i], c.marker, c.text)
		}
	}
}

func TestPrinter_ErrorGoesToErrStream(t *testing.T) {
	p, out, errOut := newTestPrinter()

	p.Error(errors.New("setup.py not found"))

	if out.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "setup.py not found") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestPrinter_PrintlnIsBare(t *testing.T) {
	p, out, _ := newTestPrinter()
	p.Println("/home/user/project/.venv/dev/3.7.1")
	if out.String() != "/home/user/project/.venv/dev/3.7.1\n" {
		t.Errorf("got %q", out.String())
	}
}
