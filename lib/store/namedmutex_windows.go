//go:build windows

package store

import (
	"os"

	"golang.org/x/sys/windows"
)

// interprocessLock is an exclusive advisory lock held via LockFileEx on a
// sidecar file next to the storage file, the Windows equivalent of the
// flock(2)-based lock used on unix. It serializes access to the mapped
// region across every process that opens the same storage path.
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
	ol := new(windows.Overlapped)
	return windows.LockFileEx(
		windows.Handle(l.f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK,
		0, 1, 0,
		ol,
	)
}

func (l *interprocessLock) Unlock() error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(l.f.Fd()), 0, 1, 0, ol)
}

func (l *interprocessLock) Close() error {
	return l.f.Close()
}
