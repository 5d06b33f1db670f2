package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/valter-silva-au/dmenv/internal/fsutil"
	"github.com/valter-silva-au/dmenv/pkg/models"
)

// LockStore reads and writes lock files on disk.
type LockStore interface {
	// Read parses the lock at path. A missing file is reported with an error
	// satisfying errors.Is(err, os.ErrNotExist).
	Read(path string) (*Lock, error)
	// ReadOrEmpty is like Read but returns an empty lock for a missing file.
	ReadOrEmpty(path string) (*Lock, error)
	// Write renders the lock with the given metadata and replaces path
	// atomically.
	Write(path string, lock *Lock, meta models.Metadata) error
}

type fileLockStore struct{}

// NewLockStore creates a LockStore backed by the local filesystem.
func NewLockStore() LockStore {
	return &fileLockStore{}
}

func (s *fileLockStore) Read(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lock %s: %w", path, err)
	}
	lock, err := ParseLock(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lock, nil
}

func (s *fileLockStore) ReadOrEmpty(path string) (*Lock, error) {
	lock, err := s.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Lock{}, nil
	}
	return lock, err
}

func (s *fileLockStore) Write(path string, lock *Lock, meta models.Metadata) error {
	if err := fsutil.WriteFileAtomic(path, []byte(lock.Render(meta)), 0o644); err != nil {
		return fmt.Errorf("writing lock %s: %w", path, err)
	}
	return nil
}
