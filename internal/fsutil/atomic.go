//go:build !windows

// Package fsutil holds filesystem helpers shared by the lock store, the
// release tooling and the installer.
package fsutil

import (
	"io"
	"os"

	"github.com/google/renameio/v2"
)

// WriteFileAtomic replaces path with data so that readers see either the
// old or the new contents, never a partial write.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(path, data, perm)
}

// PendingFile is a temporary file that replaces its target on
// CloseAtomicallyReplace. Cleanup discards it and is a no-op after a
// successful replace.
type PendingFile interface {
	io.Writer
	CloseAtomicallyReplace() error
	Cleanup() error
}

// NewPendingFile creates a PendingFile next to path, so that large contents
// can be streamed to disk and still appear atomically.
func NewPendingFile(path string, perm os.FileMode) (PendingFile, error) {
	f, err := renameio.NewPendingFile(path, renameio.WithPermissions(perm))
	if err != nil {
		return nil, err
	}
	return f, nil
}
