package store

import (
	"fmt"
	"os"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// Store is mapkv's persistence engine. It keeps every key and value in a
// single memory-mapped file so that writes survive a process restart without
// a separate write-ahead log, and guards access to that file with a mutex
// that is honored both by goroutines inside this process and by any other
// process that opens the same path.
//
// A Store is safe for concurrent use by multiple goroutines. It is opened
// once with Open and should be threaded explicitly through the rest of an
// application rather than kept as a package-level singleton.
type Store struct {
	mu    sync.Mutex
	ilock *interprocessLock
	path  string
	file  *os.File

	table *mmapTable

	// index caches key -> directory slot so repeated lookups don't need to
	// re-probe the table; it is rebuilt from the table on Open and kept in
	// sync by every mutating call.
	index *xsync.MapOf[string, uint32]
}

// Open opens the storage file at path, creating and initializing it if it
// does not already exist, and returns a ready-to-use Store. The returned
// Store must eventually be released with Close.
func Open(path string) (*Store, error) {
	ilock, err := newInterprocessLock(path + ".DATABASE_MUTEX.lock")
	if err != nil {
		return nil, fmt.Errorf("store: open lock file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		ilock.Close()
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		ilock.Close()
		return nil, err
	}

	isNew := info.Size() == 0
	size := uint64(info.Size())
	if isNew {
		size = totalSize(initialDirSlots, initialDataCap)
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			ilock.Close()
			return nil, err
		}
	}

	data, err := mmapRegion(f.Fd(), int(size))
	if err != nil {
		f.Close()
		ilock.Close()
		return nil, fmt.Errorf("store: mmap %s: %w", path, err)
	}

	var table *mmapTable
	if isNew {
		table = newMmapTable(data, initialDirSlots, initialDataCap)
		table.writeHeader(0, 0)
	} else {
		table = readTableMeta(data)
		if err := table.checkHeader(); err != nil {
			munmapRegion(data)
			f.Close()
			ilock.Close()
			return nil, err
		}
	}

	s := &Store{
		ilock: ilock,
		path:  path,
		file:  f,
		table: table,
		index: xsync.NewMapOf[string, uint32](),
	}
	s.rebuildIndex()
	return s, nil
}

// totalSize computes the file size needed to hold a header, a directory of
// dirSlots slots and a data region of dataCap bytes.
func totalSize(dirSlots uint32, dataCap uint64) uint64 {
	return uint64(headerSize) + uint64(dirSlots)*slotSize + dataCap
}

// readTableMeta reconstructs a mmapTable from the header fields of an
// already-mapped, already-validated region.
func readTableMeta(data []byte) *mmapTable {
	t := newMmapTable(data, 0, 0)
	t.dirSlots = beUint32(data[offDirSlots:])
	t.dataCap = beUint64(data[offDataCap:])
	return t
}

func (s *Store) rebuildIndex() {
	s.index.Clear()
	for i := uint32(0); i < s.table.dirSlots; i++ {
		state, _, off := s.table.getSlot(i)
		if state == slotOccupied {
			key, _ := s.table.readRecord(off)
			s.index.Store(key, i)
		}
	}
}

// Close flushes and unmaps the storage file. The Store must not be used
// afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if err := munmapRegion(s.table.data); err != nil {
		errs = append(errs, err)
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.ilock.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("store: close: %v", errs)
	}
	return nil
}

// withLock serializes fn against both other goroutines in this process
// (via mu) and other processes sharing the same storage file (via the
// flock-based interprocess lock), mirroring a scoped lock taken around
// every database operation.
func (s *Store) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ilock.Lock(); err != nil {
		return err
	}
	defer s.ilock.Unlock()
	return fn()
}

// Ins inserts a new key/value pair. It reports ErrInvalidKeyLength or
// ErrInvalidValueLength if either is too large, and ErrInsertKeyAlreadyExists
// if the key is already present. The error return is reserved for the
// underlying file growing or remapping; a non-nil error leaves the Store's
// Error result meaningless.
func (s *Store) Ins(key, value string) (Error, error) {
	if e := ValidateKey(key); e != ErrNone {
		return e, nil
	}
	if e := ValidateValue(value); e != ErrNone {
		return e, nil
	}

	var result Error
	ioErr := s.withLock(func() error {
		if _, ok := s.index.Load(key); ok {
			result = ErrInsertKeyAlreadyExists
			return nil
		}

		if err := s.ensureDirectoryRoom(); err != nil {
			return err
		}
		if err := s.ensureDataRoom(recordSize(key, value)); err != nil {
			return err
		}

		idx, _, ok := s.table.findSlot(key)
		if !ok {
			// The load-factor check above should have left room; fall back to
			// a forced grow rather than corrupt the table.
			if err := s.growDirectory(); err != nil {
				return err
			}
			idx, _, _ = s.table.findSlot(key)
		}
		off := s.table.appendRecord(key, value)
		s.table.setSlot(idx, slotOccupied, hashKey(key), off)
		s.table.setItemCount(s.table.itemCount() + 1)
		s.index.Store(key, idx)
		result = ErrNone
		return nil
	})
	return result, ioErr
}

// Upd replaces the value stored for an existing key. It reports
// ErrUpdateKeyNotFound if the key is absent and ErrUpdateValueAlreadyExists
// if the new value is byte-for-byte identical to the current one.
func (s *Store) Upd(key, value string) (Error, error) {
	if e := ValidateKey(key); e != ErrNone {
		return e, nil
	}
	if e := ValidateValue(value); e != ErrNone {
		return e, nil
	}

	var result Error
	ioErr := s.withLock(func() error {
		idx, ok := s.index.Load(key)
		if !ok {
			result = ErrUpdateKeyNotFound
			return nil
		}

		_, _, off := s.table.getSlot(idx)
		_, existing := s.table.readRecord(off)
		if existing == value {
			result = ErrUpdateValueAlreadyExists
			return nil
		}

		if err := s.ensureDataRoom(recordSize(key, value)); err != nil {
			return err
		}
		newOff := s.table.appendRecord(key, value)
		s.table.setSlot(idx, slotOccupied, hashKey(key), newOff)
		result = ErrNone
		return nil
	})
	return result, ioErr
}

// Del removes a key. It reports ErrDeleteKeyNotFound if the key is absent.
func (s *Store) Del(key string) (Error, error) {
	if e := ValidateKey(key); e != ErrNone {
		return e, nil
	}

	var result Error
	ioErr := s.withLock(func() error {
		idx, ok := s.index.Load(key)
		if !ok {
			result = ErrDeleteKeyNotFound
			return nil
		}
		_, tag, off := s.table.getSlot(idx)
		s.table.setSlot(idx, slotTombstone, tag, off)
		s.table.setItemCount(s.table.itemCount() - 1)
		s.index.Delete(key)
		result = ErrNone
		return nil
	})
	return result, ioErr
}

// Get retrieves the value stored for key. It reports ErrGetKeyNotFound if
// the key is absent.
func (s *Store) Get(key string) (string, Error, error) {
	if e := ValidateKey(key); e != ErrNone {
		return "", e, nil
	}

	var value string
	var result Error
	ioErr := s.withLock(func() error {
		idx, ok := s.index.Load(key)
		if !ok {
			result = ErrGetKeyNotFound
			return nil
		}
		_, _, off := s.table.getSlot(idx)
		_, value = s.table.readRecord(off)
		result = ErrNone
		return nil
	})
	return value, result, ioErr
}

// Size returns the number of keys currently stored.
func (s *Store) Size() uint32 {
	var n uint32
	s.withLock(func() error {
		n = s.table.itemCount()
		return nil
	})
	return n
}
