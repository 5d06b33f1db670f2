//go:build windows

package fsutil

import (
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes to a sibling temporary file and renames it over
// path. renameio does not support Windows, where os.Rename is the closest
// equivalent.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// PendingFile is a temporary file that replaces its target on
// CloseAtomicallyReplace. Cleanup discards it and is a no-op after a
// successful replace.
type PendingFile interface {
	io.Writer
	CloseAtomicallyReplace() error
	Cleanup() error
}

type pendingFile struct {
	*os.File
	path string
	perm os.FileMode
	done bool
}

// NewPendingFile creates a PendingFile next to path.
func NewPendingFile(path string, perm os.FileMode) (PendingFile, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return nil, err
	}
	return &pendingFile{File: tmp, path: path, perm: perm}, nil
}

func (p *pendingFile) CloseAtomicallyReplace() error {
	if err := p.Sync(); err != nil {
		return err
	}
	if err := p.Close(); err != nil {
		return err
	}
	if err := os.Chmod(p.Name(), p.perm); err != nil {
		return err
	}
	if err := os.Rename(p.Name(), p.path); err != nil {
		return err
	}
	p.done = true
	return nil
}

func (p *pendingFile) Cleanup() error {
	if p.done {
		return nil
	}
	p.Close()
	return os.Remove(p.Name())
}
