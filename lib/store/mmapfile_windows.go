//go:build windows

package store

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// mmapRegion maps the first size bytes of fd into memory. Windows has no
// direct equivalent of mmap(2): a file mapping object is created first and a
// view of it is then mapped into the process address space.
func mmapRegion(fd uintptr, size int) ([]byte, error) {
	h, err := windows.CreateFileMapping(windows.Handle(fd), nil, windows.PAGE_READWRITE, 0, uint32(size), nil)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// munmapRegion unmaps a region previously returned by mmapRegion.
func munmapRegion(data []byte) error {
	addr := uintptr(unsafe.Pointer(&data[0]))
	return windows.UnmapViewOfFile(addr)
}
