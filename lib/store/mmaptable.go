package store

import (
	"encoding/binary"
	"fmt"
)

// On-disk layout, all multi-byte fields big-endian (this is an internal
// format with no external wire concerns, unlike rpc/codec's frame length
// which intentionally keeps the original's native-endian quirk):
//
//	header   (headerSize bytes, fixed)
//	directory (dirSlots * slotSize bytes, fixed-size open-addressed table)
//	data      (dataCap bytes, append-only log of variable-length records)
//
// Deletes only tombstone a directory slot; the record bytes in the data
// region are abandoned in place and reclaimed the next time the directory
// grows and the live set is rewritten into a fresh file. There is no
// separate compaction pass outside of that growth path.
const (
	magicString     = "MAPKVDB\x00"
	formatVersion   = 1
	headerSize      = 64
	slotSize        = 16
	initialDirSlots = 16
	initialDataCap  = 4096
	maxLoadFactor   = 0.7
)

// header field offsets.
const (
	offMagic     = 0
	offVersion   = 8
	offDirSlots  = 12
	offItemCount = 16
	offDataNext  = 24
	offDataCap   = 32
)

func beUint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func beUint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	slotTombstone
)

// mmapTable is the pure data-structure half of the storage engine: header,
// directory and data-region access over a single mapped byte slice. It knows
// nothing about file descriptors, growth policy or locking; Store composes
// it with those concerns.
type mmapTable struct {
	data     []byte
	dirSlots uint32
	dataCap  uint64
}

func newMmapTable(data []byte, dirSlots uint32, dataCap uint64) *mmapTable {
	return &mmapTable{data: data, dirSlots: dirSlots, dataCap: dataCap}
}

func (t *mmapTable) writeHeader(itemCount uint32, dataNext uint64) {
	copy(t.data[offMagic:offMagic+8], magicString)
	binary.BigEndian.PutUint32(t.data[offVersion:], formatVersion)
	binary.BigEndian.PutUint32(t.data[offDirSlots:], t.dirSlots)
	binary.BigEndian.PutUint32(t.data[offItemCount:], itemCount)
	binary.BigEndian.PutUint64(t.data[offDataNext:], dataNext)
	binary.BigEndian.PutUint64(t.data[offDataCap:], t.dataCap)
}

func (t *mmapTable) checkHeader() error {
	if string(t.data[offMagic:offMagic+8]) != magicString {
		return fmt.Errorf("store: not a mapkv storage file")
	}
	if v := binary.BigEndian.Uint32(t.data[offVersion:]); v != formatVersion {
		return fmt.Errorf("store: unsupported storage format version %d", v)
	}
	return nil
}

func (t *mmapTable) itemCount() uint32 {
	return binary.BigEndian.Uint32(t.data[offItemCount:])
}

func (t *mmapTable) setItemCount(n uint32) {
	binary.BigEndian.PutUint32(t.data[offItemCount:], n)
}

func (t *mmapTable) dataNext() uint64 {
	return binary.BigEndian.Uint64(t.data[offDataNext:])
}

func (t *mmapTable) setDataNext(n uint64) {
	binary.BigEndian.PutUint64(t.data[offDataNext:], n)
}

func (t *mmapTable) dataRegionStart() int {
	return headerSize + int(t.dirSlots)*slotSize
}

func (t *mmapTable) slotOffset(i uint32) int {
	return headerSize + int(i)*slotSize
}

func (t *mmapTable) getSlot(i uint32) (state slotState, hashTag uint32, recordOffset uint64) {
	o := t.slotOffset(i)
	state = slotState(t.data[o])
	hashTag = binary.BigEndian.Uint32(t.data[o+4:])
	recordOffset = binary.BigEndian.Uint64(t.data[o+8:])
	return
}

func (t *mmapTable) setSlot(i uint32, state slotState, hashTag uint32, recordOffset uint64) {
	o := t.slotOffset(i)
	t.data[o] = byte(state)
	binary.BigEndian.PutUint32(t.data[o+4:], hashTag)
	binary.BigEndian.PutUint64(t.data[o+8:], recordOffset)
}

// readRecord reads the key and value stored at a data-region-relative
// offset previously returned by appendRecord.
func (t *mmapTable) readRecord(off uint64) (key, value string) {
	base := t.dataRegionStart() + int(off)
	keyLen := binary.BigEndian.Uint32(t.data[base:])
	valueLen := binary.BigEndian.Uint32(t.data[base+4:])
	keyStart := base + 8
	valueStart := keyStart + int(keyLen)
	key = string(t.data[keyStart : keyStart+int(keyLen)])
	value = string(t.data[valueStart : valueStart+int(valueLen)])
	return
}

// recordSize is the number of bytes appendRecord needs to store key/value.
func recordSize(key, value string) uint64 {
	return uint64(8 + len(key) + len(value))
}

// appendRecord writes a new record at the current data-next cursor and
// advances it, returning the offset the record was written at. The caller
// must have already verified there is enough room (see Store.ensureDataRoom).
func (t *mmapTable) appendRecord(key, value string) uint64 {
	off := t.dataNext()
	base := t.dataRegionStart() + int(off)
	binary.BigEndian.PutUint32(t.data[base:], uint32(len(key)))
	binary.BigEndian.PutUint32(t.data[base+4:], uint32(len(value)))
	copy(t.data[base+8:], key)
	copy(t.data[base+8+len(key):], value)
	t.setDataNext(off + recordSize(key, value))
	return off
}

// hashKey is a seeded FNV-1a hash over the key bytes, used to pick a
// directory slot and as a cheap tag to reject most collisions without
// touching the data region.
func hashKey(key string) uint32 {
	const (
		offsetBasis32 = 2166136261
		prime32       = 16777619
	)
	h := uint32(offsetBasis32)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= prime32
	}
	return h
}

// findSlot linearly probes the directory for key, starting at its hash
// bucket. It returns the slot index the key occupies (found=true), or the
// first empty-or-tombstone slot usable for an insert (found=false). A full
// directory with no match returns found=false and ok=false.
func (t *mmapTable) findSlot(key string) (idx uint32, found bool, ok bool) {
	h := hashKey(key)
	start := h % t.dirSlots
	insertAt, haveInsertAt := uint32(0), false

	for step := uint32(0); step < t.dirSlots; step++ {
		i := (start + step) % t.dirSlots
		state, tag, off := t.getSlot(i)
		switch state {
		case slotEmpty:
			if !haveInsertAt {
				insertAt, haveInsertAt = i, true
			}
			return insertAt, false, true
		case slotTombstone:
			if !haveInsertAt {
				insertAt, haveInsertAt = i, true
			}
		case slotOccupied:
			if tag == h {
				k, _ := t.readRecord(off)
				if k == key {
					return i, true, true
				}
			}
		}
	}
	if haveInsertAt {
		return insertAt, false, true
	}
	return 0, false, false
}

// liveEntry is one (key, value) pair recovered while scanning a table's
// occupied slots, used when rewriting into a larger table.
type liveEntry struct {
	key, value string
}

func (t *mmapTable) scanLive() []liveEntry {
	entries := make([]liveEntry, 0, t.itemCount())
	for i := uint32(0); i < t.dirSlots; i++ {
		state, _, off := t.getSlot(i)
		if state == slotOccupied {
			k, v := t.readRecord(off)
			entries = append(entries, liveEntry{k, v})
		}
	}
	return entries
}

// rawInsert places key/value assuming the caller already knows the key is
// absent and there is room both in the directory and the data region. It is
// only used while rebuilding a table from a scanLive snapshot.
func (t *mmapTable) rawInsert(key, value string) {
	idx, _, _ := t.findSlot(key)
	off := t.appendRecord(key, value)
	t.setSlot(idx, slotOccupied, hashKey(key), off)
	t.setItemCount(t.itemCount() + 1)
}
