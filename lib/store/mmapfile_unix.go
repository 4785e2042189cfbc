//go:build unix || linux || darwin
// +build unix linux darwin

package store

import (
	"golang.org/x/sys/unix"
)

// mmapRegion maps the first size bytes of fd into memory.
// PROT_READ|PROT_WRITE and MAP_SHARED ensure writes are visible to every
// other process mapping the same file, which is what lets several mapkv
// processes (or a debug tool) observe a consistent view once they hold the
// named mutex.
func mmapRegion(fd uintptr, size int) ([]byte, error) {
	return unix.Mmap(int(fd), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// munmapRegion unmaps a region previously returned by mmapRegion.
func munmapRegion(data []byte) error {
	return unix.Munmap(data)
}
