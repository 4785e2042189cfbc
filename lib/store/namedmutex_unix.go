//go:build unix || linux || darwin
// +build unix linux darwin

package store

import (
	"os"

	"golang.org/x/sys/unix"
)

// interprocessLock is an exclusive advisory lock held via flock(2) on a
// sidecar file next to the storage file. It is what makes the named mutex
// from the database format honored across processes, not just goroutines
// inside one: two mapkv processes opening the same storage path contend on
// the same lock file and serialize their access to the mapped region.
type interprocessLock struct {
	f *os.File
}

func newInterprocessLock(path string) (*interprocessLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return &interprocessLock{f: f}, nil
}

func (l *interprocessLock) Lock() error {
	return unix.Flock(int(l.f.Fd()), unix.LOCK_EX)
}

func (l *interprocessLock) Unlock() error {
	return unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
}

func (l *interprocessLock) Close() error {
	return l.f.Close()
}
