package storage

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/valter-silva-au/dmenv/pkg/models"
)

// headerPrefix starts the metadata line dmenv writes at the top of a lock.
const headerPrefix = "# Generated with dmenv"

// DependencyKind distinguishes pinned versions from VCS references.
type DependencyKind int

const (
	// KindSimple is a "name==version" pin.
	KindSimple DependencyKind = iota
	// KindGit is a git URL pinned to a ref.
	KindGit
)

func (k DependencyKind) String() string {
	if k == KindGit {
		return "git"
	}
	return "simple"
}

// Dependency is a single requirement line of a lock file.
type Dependency struct {
	Name    string
	Kind    DependencyKind
	Version string // KindSimple only
	URL     string // KindGit: the URL without the "@ref" suffix
	Ref     string // KindGit: branch, tag or sha; may be empty
	// Direct marks PEP 508 "name @ url" lines as opposed to "url#egg=name".
	Direct bool
	Marker string
}

// String renders the dependency the way pip expects it in a requirements file.
func (d Dependency) String() string {
	var b strings.Builder
	switch {
	case d.Kind == KindSimple:
		b.WriteString(d.Name)
		b.WriteString("==")
		b.WriteString(d.Version)
	case d.Direct:
		b.WriteString(d.Name)
		b.WriteString(" @ ")
		b.WriteString(d.gitSpec())
	default:
		b.WriteString(d.gitSpec())
		b.WriteString("#egg=")
		b.WriteString(d.Name)
	}
	if d.Marker != "" {
		b.WriteString("; ")
		b.WriteString(d.Marker)
	}
	return b.String()
}

func (d Dependency) gitSpec() string {
	if d.Ref == "" {
		return d.URL
	}
	return d.URL + "@" + d.Ref
}

// Lock is the in-memory form of requirements.lock / production.lock.
//
// Comment and option lines other than the generated header are kept
// verbatim and rendered before the dependencies.
type Lock struct {
	Header    string
	Preserved []string
	Deps      []Dependency
}

var (
	simplePattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*==\s*([^\s;]+)$`)
	directPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s+@\s+(\S+)$`)
	separatorRun  = regexp.MustCompile(`[-_.]+`)
)

// CanonicalName normalizes a distribution name as described in PEP 503.
func CanonicalName(name string) string {
	return strings.ToLower(separatorRun.ReplaceAllString(name, "-"))
}

// ParseLock parses the contents of a lock file.
func ParseLock(contents string) (*Lock, error) {
	lock := &Lock{}
	for i, raw := range strings.Split(contents, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, headerPrefix):
			lock.Header = line
		case strings.HasPrefix(line, "#"), strings.HasPrefix(line, "-"):
			lock.Preserved = append(lock.Preserved, line)
		default:
			dep, err := ParseDependency(line)
			if err != nil {
				return nil, fmt.Errorf("parsing lock line %d: %w", i+1, err)
			}
			lock.Deps = append(lock.Deps, dep)
		}
	}
	return lock, nil
}

// ParseDependency parses a single requirement line.
func ParseDependency(line string) (Dependency, error) {
	req, marker := splitMarker(line)

	if strings.HasPrefix(req, "git+") {
		url, egg, ok := strings.Cut(req, "#egg=")
		if !ok || egg == "" {
			return Dependency{}, fmt.Errorf("git dependency %q has no #egg= fragment", line)
		}
		dep := Dependency{Name: egg, Kind: KindGit, Marker: marker}
		dep.URL, dep.Ref = splitRef(url)
		return dep, nil
	}

	if m := directPattern.FindStringSubmatch(req); m != nil {
		dep := Dependency{Name: m[1], Kind: KindGit, Direct: true, Marker: marker}
		dep.URL, dep.Ref = splitRef(m[2])
		return dep, nil
	}

	if m := simplePattern.FindStringSubmatch(req); m != nil {
		return Dependency{Name: m[1], Kind: KindSimple, Version: m[2], Marker: marker}, nil
	}

	return Dependency{}, fmt.Errorf("cannot parse requirement %q", line)
}

func splitMarker(line string) (req, marker string) {
	req, marker, _ = strings.Cut(line, ";")
	return strings.TrimSpace(req), strings.TrimSpace(marker)
}

// splitRef separates "git+https://host/repo@ref" into URL and ref. An "@"
// belonging to the userinfo part of the URL (git+ssh://git@host/...) is not
// mistaken for a ref separator.
func splitRef(url string) (string, string) {
	schemeEnd := strings.Index(url, "://")
	start := 0
	if schemeEnd >= 0 {
		start = schemeEnd + 3
	}
	rest := url[start:]
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return url, ""
	}
	at := strings.LastIndex(rest[slash:], "@")
	if at < 0 {
		return url, ""
	}
	cut := start + slash + at
	return url[:cut], url[cut+1:]
}

func (l *Lock) find(name string) int {
	canonical := CanonicalName(name)
	for i, d := range l.Deps {
		if CanonicalName(d.Name) == canonical {
			return i
		}
	}
	return -1
}

func (l *Lock) findAll(name string) []int {
	canonical := CanonicalName(name)
	var matches []int
	for i, d := range l.Deps {
		if CanonicalName(d.Name) == canonical {
			matches = append(matches, i)
		}
	}
	return matches
}

// pickEntry chooses which of several entries for one name a freeze
// updates. A lone entry is always chosen. Otherwise the entry with the
// given marker wins, then the unmarked one; -1 means none applies.
func pickEntry(deps []Dependency, matches []int, marker string) int {
	if len(matches) == 1 {
		return matches[0]
	}
	unmarked := -1
	for _, i := range matches {
		switch deps[i].Marker {
		case marker:
			return i
		case "":
			unmarked = i
		}
	}
	return unmarked
}

// Bump pins a simple dependency to a new version.
func (l *Lock) Bump(name, version string) error {
	i := l.find(name)
	if i < 0 {
		return &DependencyNotFoundError{Name: name}
	}
	dep := &l.Deps[i]
	if dep.Kind != KindSimple {
		return &GitDependencyError{Name: name}
	}
	if dep.Version == version {
		return &NothingToBumpError{Name: name, Version: version}
	}
	dep.Version = version
	return nil
}

// GitBump moves a git dependency to a new ref.
func (l *Lock) GitBump(name, ref string) error {
	i := l.find(name)
	if i < 0 {
		return &DependencyNotFoundError{Name: name}
	}
	dep := &l.Deps[i]
	if dep.Kind != KindGit {
		return &NotGitDependencyError{Name: name}
	}
	if dep.Ref == ref {
		return &NothingToBumpError{Name: name, Version: ref}
	}
	dep.Ref = ref
	return nil
}

// Freeze merges the output of pip freeze into the lock.
//
// Existing pins keep their markers and get the frozen version; git
// dependencies are left alone. When a name is pinned several times under
// different markers, only the entry whose marker equals the one derived
// from opts (or the unmarked entry) is updated; if there is none and opts
// yield a marker, a new entry is added for it. New dependencies get the
// marker derived from opts. Dependencies no longer frozen are dropped
// unless they carry a marker, since they may only be installed on another
// platform.
func (l *Lock) Freeze(frozen []models.FrozenDependency, opts models.LockOptions) {
	marker := MarkerFromOptions(opts)
	seen := make(map[string]bool, len(frozen))

	for _, f := range frozen {
		canonical := CanonicalName(f.Name)
		seen[canonical] = true

		if matches := l.findAll(f.Name); len(matches) > 0 {
			i := pickEntry(l.Deps, matches, marker)
			if i >= 0 && l.Deps[i].Kind == KindSimple && f.Version != "" {
				l.Deps[i].Version = f.Version
			}
			if i >= 0 || marker == "" {
				continue
			}
		}

		dep := Dependency{Name: f.Name, Kind: KindSimple, Version: f.Version, Marker: marker}
		if f.URL != "" {
			dep = Dependency{Name: f.Name, Kind: KindGit, Direct: true, Marker: marker}
			dep.URL, dep.Ref = splitRef(f.URL)
		}
		l.Deps = append(l.Deps, dep)
	}

	kept := l.Deps[:0]
	for _, d := range l.Deps {
		if seen[CanonicalName(d.Name)] || d.Marker != "" {
			kept = append(kept, d)
		}
	}
	l.Deps = kept
}

// Render serializes the lock with a fresh metadata header. Dependencies are
// sorted by canonical name so that diffs between two locks stay small.
func (l *Lock) Render(meta models.Metadata) string {
	var b strings.Builder
	b.WriteString(Header(meta))
	b.WriteString("\n")
	for _, line := range l.Preserved {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for _, d := range l.sorted() {
		b.WriteString(d.String())
		b.WriteString("\n")
	}
	return b.String()
}

func (l *Lock) sorted() []Dependency {
	deps := make([]Dependency, len(l.Deps))
	copy(deps, l.Deps)
	sort.SliceStable(deps, func(i, j int) bool {
		return CanonicalName(deps[i].Name) < CanonicalName(deps[j].Name)
	})
	return deps
}

// Header returns the first line of a generated lock file.
func Header(meta models.Metadata) string {
	return fmt.Sprintf("%s %s, python %s, on %s", headerPrefix, meta.DmenvVersion, meta.PythonVersion, meta.PythonPlatform)
}

// markerOperators is ordered so that two-character operators match first.
var markerOperators = []string{"~=", "==", "!=", "<=", ">=", "<", ">"}

// MarkerFromOptions builds a PEP 508 environment marker from lock options.
// A bare version such as "3.6" means python_version == "3.6".
func MarkerFromOptions(opts models.LockOptions) string {
	var parts []string
	if v := strings.TrimSpace(opts.PythonVersion); v != "" {
		op := "=="
		for _, candidate := range markerOperators {
			if strings.HasPrefix(v, candidate) {
				op = candidate
				v = strings.TrimSpace(strings.TrimPrefix(v, candidate))
				break
			}
		}
		parts = append(parts, fmt.Sprintf("python_version %s %q", op, v))
	}
	if p := strings.TrimSpace(opts.SysPlatform); p != "" {
		parts = append(parts, fmt.Sprintf("sys_platform == %q", p))
	}
	return strings.Join(parts, " and ")
}

// Entries returns the dependencies in render order as structured entries.
func (l *Lock) Entries() []models.LockEntry {
	deps := l.sorted()
	entries := make([]models.LockEntry, 0, len(deps))
	for _, d := range deps {
		entries = append(entries, models.LockEntry{
			Name:    d.Name,
			Kind:    d.Kind.String(),
			Version: d.Version,
			URL:     d.URL,
			Ref:     d.Ref,
			Marker:  d.Marker,
		})
	}
	return entries
}
