package orderedwal

import "github.com/orderedwal/orderedwal/arena"

// Pointer is the fixed-size handle the memory indexes (C5/C6/C7) are built
// from: an offset into the arena plus the lengths needed to slice key and
// value back out, never the bytes themselves (spec §3, §4.2). Precomputing
// keyOffset at construction (rather than recomputing the header length from
// scratch on every dereference) is the one liberty taken over the spec's
// literal {offset, key_len, value_len[, version]} shape.
//
// A Pointer can also be a query probe: one built with queryKey set carries
// its key bytes inline instead of through the arena, so the index can be
// searched by a raw key the caller hands in without first writing a record
// for it (spec §4.2, "a thin wrapper... used to issue point queries").
type Pointer struct {
	recordOffset int // offset of the flag byte; -1 for a query probe
	keyOffset    int
	keyLen       int
	valueLen     int
	version      uint64
	queryKey     []byte
}

// newPointer builds a Pointer for a record just written at recordOffset.
func newPointer(recordOffset, keyOffset, keyLen, valueLen int, version uint64) Pointer {
	return Pointer{
		recordOffset: recordOffset,
		keyOffset:    keyOffset,
		keyLen:       keyLen,
		valueLen:     valueLen,
		version:      version,
	}
}

// queryPointer builds a probe carrying key inline, for index lookups that
// don't correspond to an on-arena record.
func queryPointer(key []byte, version uint64) Pointer {
	return Pointer{recordOffset: -1, queryKey: key, version: version}
}

// isQuery reports whether p is a probe rather than a materialized record.
func (p Pointer) isQuery() bool { return p.recordOffset < 0 }

// Key returns the record's key bytes, zero-copy from the arena (or the
// probe's inline bytes for a query pointer).
func (p Pointer) Key(a *arena.Arena) []byte {
	if p.isQuery() {
		return p.queryKey
	}
	return a.Bytes(p.keyOffset, p.keyLen)
}

// Value returns the record's value bytes, zero-copy from the arena.
func (p Pointer) Value(a *arena.Arena) []byte {
	return a.Bytes(p.keyOffset+p.keyLen, p.valueLen)
}

// Version returns the record's version (0 in unique mode).
func (p Pointer) Version() uint64 { return p.version }

// ValueLen returns the record's value length without dereferencing.
func (p Pointer) ValueLen() int { return p.valueLen }

// Flag returns the record's current flag byte. Panics on a query pointer.
func (p Pointer) Flag(a *arena.Arena) byte {
	return a.Bytes(p.recordOffset, 1)[0]
}

// IsRemoved reports whether the record is a tombstone.
func (p Pointer) IsRemoved(a *arena.Arena) bool { return p.Flag(a)&flagRemoved != 0 }

// IsRangeDeletion reports whether the record is a range-deletion entry.
func (p Pointer) IsRangeDeletion(a *arena.Arena) bool { return p.Flag(a)&flagRangeDeletion != 0 }

// IsRangeUpdate reports whether the record is a range-update entry.
func (p Pointer) IsRangeUpdate(a *arena.Arena) bool { return p.Flag(a)&flagRangeUpdate != 0 }

// Bounds decodes a range record's packed start/end bounds out of its key
// field. Only meaningful for range-deletion/range-update pointers.
func (p Pointer) Bounds(a *arena.Arena) (start, end Bound, ok bool) {
	return decodeRangeKey(p.Key(a))
}
