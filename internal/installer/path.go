package installer

import (
	"os"
	"path/filepath"
)

// WritablePathEntries returns the directories of a PATH value the current
// user can write to, in PATH order and without duplicates.
func WritablePathEntries(pathEnv string) []string {
	var entries []string
	seen := make(map[string]bool)
	for _, entry := range filepath.SplitList(pathEnv) {
		if entry == "" || seen[entry] {
			continue
		}
		seen[entry] = true
		info, err := os.Stat(entry)
		if err != nil || !info.IsDir() {
			continue
		}
		if writable(entry) {
			entries = append(entries, entry)
		}
	}
	return entries
}

// BinaryName is the file name dmenv is installed as.
func BinaryName(goos string) string {
	if goos == "windows" {
		return "dmenv.exe"
	}
	return "dmenv"
}
