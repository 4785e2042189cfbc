package store

import "os"

// ensureDataRoom grows the data region (and the backing file behind it) by
// doubling until it has at least needed bytes free past the current
// write cursor. The data region is always the last segment of the file, so
// growing it in place is just a truncate-and-remap; nothing already written
// has to move.
func (s *Store) ensureDataRoom(needed uint64) error {
	cap_ := s.table.dataCap
	if cap_-s.table.dataNext() >= needed {
		return nil
	}
	for cap_-s.table.dataNext() < needed {
		cap_ *= 2
	}

	if err := munmapRegion(s.table.data); err != nil {
		return err
	}
	newSize := totalSize(s.table.dirSlots, cap_)
	if err := s.file.Truncate(int64(newSize)); err != nil {
		return err
	}
	data, err := mmapRegion(s.file.Fd(), int(newSize))
	if err != nil {
		return err
	}
	s.table.data = data
	s.table.dataCap = cap_
	s.table.writeHeader(s.table.itemCount(), s.table.dataNext())
	return nil
}

// ensureDirectoryRoom grows the directory (rehashing every live entry into a
// fresh, larger table) once the load factor would exceed maxLoadFactor.
func (s *Store) ensureDirectoryRoom() error {
	if float64(s.table.itemCount()+1) <= maxLoadFactor*float64(s.table.dirSlots) {
		return nil
	}
	return s.growDirectory()
}

// growDirectory doubles the number of directory slots. Because resizing the
// directory shifts where the data region starts, this rebuilds the whole
// file from scratch in a temporary path (recovering every live key/value,
// dropping tombstones and abandoned record bytes along the way) and then
// swaps it in for the live file.
func (s *Store) growDirectory() error {
	live := s.table.scanLive()

	newDirSlots := s.table.dirSlots * 2
	newDataCap := uint64(initialDataCap)
	var needed uint64
	for _, e := range live {
		needed += recordSize(e.key, e.value)
	}
	for newDataCap < needed*2 {
		newDataCap *= 2
	}

	tmpPath := s.path + ".grow.tmp"
	tmpFile, tmpTable, err := createTable(tmpPath, newDirSlots, newDataCap)
	if err != nil {
		return err
	}
	for _, e := range live {
		tmpTable.rawInsert(e.key, e.value)
	}

	if err := munmapRegion(s.table.data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := s.file.Close(); err != nil {
		munmapRegion(tmpTable.data)
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := munmapRegion(tmpTable.data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	data, err := mmapRegion(f.Fd(), int(totalSize(newDirSlots, newDataCap)))
	if err != nil {
		f.Close()
		return err
	}

	s.file = f
	s.table = readTableMeta(data)
	s.rebuildIndex()
	return nil
}

// createTable creates and initializes a brand-new, empty storage file at
// path with the given capacity, returning it open and mapped.
func createTable(path string, dirSlots uint32, dataCap uint64) (*os.File, *mmapTable, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, err
	}
	size := totalSize(dirSlots, dataCap)
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, nil, err
	}
	data, err := mmapRegion(f.Fd(), int(size))
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	t := newMmapTable(data, dirSlots, dataCap)
	t.writeHeader(0, 0)
	return f, t, nil
}
