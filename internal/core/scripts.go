package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/valter-silva-au/dmenv/internal/integration"
	"github.com/valter-silva-au/dmenv/internal/observability"
	"github.com/valter-silva-au/dmenv/pkg/models"
)

// ScriptsDir is the project sub-directory receiving console scripts.
const ScriptsDir = "bin"

// findEntryPoints returns the entry_points.txt files written by
// `setup.py develop`, either at the project root or under src/.
func findEntryPoints(project string) ([]string, error) {
	var found []string
	for _, pattern := range []string{
		filepath.Join(project, "*.egg-info", "entry_points.txt"),
		filepath.Join(project, "src", "*.egg-info", "entry_points.txt"),
	} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		found = append(found, matches...)
	}
	return found, nil
}

// ParseConsoleScripts returns the script names declared in the
// [console_scripts] section of an entry_points.txt file.
func ParseConsoleScripts(r io.Reader) ([]string, error) {
	var names []string
	inSection := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";"):
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			inSection = strings.TrimSpace(line[1:len(line)-1]) == "console_scripts"
		case inSection:
			name, _, ok := strings.Cut(line, "=")
			if !ok {
				return nil, fmt.Errorf("invalid console_scripts entry %q", line)
			}
			names = append(names, strings.TrimSpace(name))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// processScripts exposes the console scripts of the project in
// <project>/bin, as symlinks to the virtualenv binaries (copies on Windows).
func processScripts(p *observability.Printer, paths models.Paths, runner integration.VenvRunner) ([]string, error) {
	files, err := findEntryPoints(paths.Project)
	if err != nil {
		return nil, fmt.Errorf("looking for entry points: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no *.egg-info/entry_points.txt found in %s. Try running `dmenv develop` first", paths.Project)
	}

	seen := make(map[string]bool)
	var names []string
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", file, err)
		}
		scripts, err := ParseConsoleScripts(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		for _, name := range scripts {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	dir := filepath.Join(paths.Project, ScriptsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var created []string
	for _, name := range names {
		src, err := runner.ResolvePath(name)
		if err != nil {
			return created, err
		}
		dest := filepath.Join(dir, filepath.Base(src))
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			return created, fmt.Errorf("removing %s: %w", dest, err)
		}
		if err := exposeScript(src, dest); err != nil {
			return created, err
		}
		p.Info2(fmt.Sprintf("Created %s", dest))
		created = append(created, dest)
	}
	return created, nil
}

func exposeScript(src, dest string) error {
	if runtime.GOOS != "windows" {
		if err := os.Symlink(src, dest); err != nil {
			return fmt.Errorf("linking %s: %w", dest, err)
		}
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.WriteFile(dest, data, 0o755); err != nil {
		return fmt.Errorf("copying %s: %w", dest, err)
	}
	return nil
}
