// Package lockedfile provides a file-based mutex for serializing access to a
// shared workspace across orchestrator processes.
package lockedfile

import (
	"fmt"
	"os"
)

// Mutex is an advisory lock keyed by a file path. The zero value is not
// usable; create one with MutexAt.
type Mutex struct {
	path string
}

// MutexAt returns a Mutex that locks the file at the given path, creating it
// if needed.
func MutexAt(path string) *Mutex {
	return &Mutex{path: path}
}

// Lock acquires the lock, blocking until it is available, and returns the
// function that releases it.
func (m *Mutex) Lock() (unlock func(), err error) {
	f, err := os.OpenFile(m.path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := lock(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to lock %s: %w", m.path, err)
	}
	return func() {
		unlockFile(f)
		f.Close()
	}, nil
}
