//go:build windows

package installer

import "os"

// writable probes the directory with a temporary file since Windows has no
// access(2).
func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".dmenv-probe*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
