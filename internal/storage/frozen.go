package storage

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/dmenv/pkg/models"
)

// ignoredFrozen lists distributions pip freeze reports but that must never
// end up in a lock. pkg-resources shows up on Debian's patched pip.
var ignoredFrozen = map[string]bool{
	"pkg-resources": true,
}

// ParseFrozen converts pip freeze output into frozen dependencies.
// Editable installs (-e) and comments are skipped.
func ParseFrozen(output string) ([]models.FrozenDependency, error) {
	var deps []models.FrozenDependency
	for i, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-e") {
			continue
		}

		if m := simplePattern.FindStringSubmatch(line); m != nil {
			if !ignoredFrozen[CanonicalName(m[1])] {
				deps = append(deps, models.FrozenDependency{Name: m[1], Version: m[2]})
			}
			continue
		}
		if m := directPattern.FindStringSubmatch(line); m != nil {
			if !ignoredFrozen[CanonicalName(m[1])] {
				deps = append(deps, models.FrozenDependency{Name: m[1], URL: m[2]})
			}
			continue
		}
		return nil, fmt.Errorf("parsing pip freeze output line %d: unexpected %q", i+1, line)
	}
	return deps, nil
}
