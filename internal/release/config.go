// Package release implements the version-bump workflow driven by tbump.toml
// and the bump of the version embedded in the installer.
package release

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultConfigFile is the configuration read by dmenv-release.
const DefaultConfigFile = "tbump.toml"

// Config is the contents of tbump.toml.
type Config struct {
	Version    VersionConfig `toml:"version"`
	Git        GitConfig     `toml:"git"`
	Files      []FileConfig  `toml:"file"`
	BeforePush []Step        `toml:"before_push"`
	AfterPush  []Step        `toml:"after_push"`

	path    string
	pattern *regexp.Regexp
}

// VersionConfig holds the current version and the regex that parses it.
type VersionConfig struct {
	Current string `toml:"current"`
	Regex   string `toml:"regex"`
}

// GitConfig holds the templates of the release commit and tag.
type GitConfig struct {
	MessageTemplate string `toml:"message_template"`
	TagTemplate     string `toml:"tag_template"`
}

// FileConfig is a file containing the version. When Search is set, only
// occurrences of the rendered Search template are replaced.
type FileConfig struct {
	Src    string `toml:"src"`
	Search string `toml:"search"`
}

// Step is a shell command run before or after pushing.
type Step struct {
	Name string `toml:"name"`
	Cmd  string `toml:"cmd"`
}

// Version is a version string matched by the configured regex.
type Version struct {
	Raw    string
	Major  int
	Minor  int
	Patch  int
	Groups map[string]string
}

// LoadConfig reads and validates tbump.toml.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg, err := ParseConfig(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// ParseConfig decodes and validates the contents of tbump.toml.
func ParseConfig(contents string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(contents, &cfg)
	if err != nil {
		return nil, fmt.Errorf("decoding toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.Version.Current == "" {
		errs = append(errs, errors.New("version.current is empty"))
	}
	pattern, err := CompileVersionRegex(c.Version.Regex)
	if err != nil {
		errs = append(errs, err)
	} else {
		c.pattern = pattern
		if c.Version.Current != "" {
			if _, err := c.ParseVersion(c.Version.Current); err != nil {
				errs = append(errs, fmt.Errorf("version.current: %w", err))
			}
		}
	}
	if c.Git.MessageTemplate == "" {
		errs = append(errs, errors.New("git.message_template is empty"))
	}
	if c.Git.TagTemplate == "" {
		errs = append(errs, errors.New("git.tag_template is empty"))
	}
	if len(c.Files) == 0 {
		errs = append(errs, errors.New("at least one [[file]] is required"))
	}
	for i, f := range c.Files {
		if f.Src == "" {
			errs = append(errs, fmt.Errorf("file #%d: src is empty", i+1))
		}
	}
	for kind, steps := range map[string][]Step{"before_push": c.BeforePush, "after_push": c.AfterPush} {
		for i, s := range steps {
			if s.Name == "" || s.Cmd == "" {
				errs = append(errs, fmt.Errorf("%s #%d: name and cmd are required", kind, i+1))
			}
		}
	}
	return errors.Join(errs...)
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// ParseVersion matches s against the whole version regex.
func (c *Config) ParseVersion(s string) (Version, error) {
	m := c.pattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%q does not match %s", s, c.pattern)
	}
	v := Version{Raw: s, Groups: make(map[string]string)}
	for i, name := range c.pattern.SubexpNames() {
		if name != "" {
			v.Groups[name] = m[i]
		}
	}
	for name, dst := range map[string]*int{"major": &v.Major, "minor": &v.Minor, "patch": &v.Patch} {
		n, err := strconv.Atoi(v.Groups[name])
		if err != nil {
			return Version{}, fmt.Errorf("%s of %q is not a number: %q", name, s, v.Groups[name])
		}
		*dst = n
	}
	return v, nil
}

// CompileVersionRegex compiles a tbump version regex. The regex is written
// in verbose mode: whitespace and # comments outside character classes are
// ignored. It must define the named groups major, minor and patch, and it
// is anchored so that it matches whole versions only.
func CompileVersionRegex(raw string) (*regexp.Regexp, error) {
	expr := stripVerbose(raw)
	if expr == "" {
		return nil, errors.New("version.regex is empty")
	}
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, fmt.Errorf("version.regex: %w", err)
	}
	names := make(map[string]bool)
	for _, name := range re.SubexpNames() {
		names[name] = true
	}
	for _, required := range []string{"major", "minor", "patch"} {
		if !names[required] {
			return nil, fmt.Errorf("version.regex: missing named group %q", required)
		}
	}
	return re, nil
}

// stripVerbose removes the whitespace and comments that verbose-mode
// regexes allow, keeping escaped characters and character classes intact.
func stripVerbose(raw string) string {
	var b strings.Builder
	inClass := false
	escaped := false
	inComment := false
	for _, r := range raw {
		switch {
		case inComment:
			if r == '\n' {
				inComment = false
			}
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			b.WriteRune(r)
			escaped = true
		case inClass:
			b.WriteRune(r)
			if r == ']' {
				inClass = false
			}
		case r == '[':
			b.WriteRune(r)
			inClass = true
		case r == '#':
			inComment = true
		case r == ' ', r == '\t', r == '\n', r == '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Render substitutes {current_version} and {new_version} in a template.
func Render(template, current, next string) string {
	return strings.NewReplacer("{current_version}", current, "{new_version}", next).Replace(template)
}

func decodeTOML(contents string, v any) error {
	if _, err := toml.Decode(contents, v); err != nil {
		return fmt.Errorf("decoding toml: %w", err)
	}
	return nil
}
