// Package lockedfile provides an inter-process mutex backed by a lock file.
package lockedfile

import (
	"io/fs"
	"os"
)

// A Mutex is held by at most one process at a time. The file at Path is
// created if needed and never removed.
type Mutex struct {
	Path string
}

// MutexAt returns a mutex locking the file at path.
func MutexAt(path string) *Mutex {
	return &Mutex{Path: path}
}

// Lock blocks until the mutex is held and returns the function releasing it.
func (mu *Mutex) Lock() (unlock func(), err error) {
	f, err := os.OpenFile(mu.Path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, err
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, &fs.PathError{Op: "lock", Path: mu.Path, Err: err}
	}
	return func() {
		unlockFile(f)
		f.Close()
	}, nil
}
