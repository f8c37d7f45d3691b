// arena/arena.go
//
// Package arena provides the fixed-capacity, offset-addressable byte region
// that the WAL record stream is written into and read back from.
//
// Thread Safety:
//   - Reserve is only ever called by the single writer of a WAL; it is not
//     safe to call concurrently with itself.
//   - Bytes/BasePtr/Allocated/Capacity are safe for concurrent readers, since
//     already-reserved bytes are never rewritten (other than the in-place
//     COMMITTED bit flip the caller performs on its own).
//   - Close() must not race with Reserve or any reader.
//
// Memory Model:
//   - The region is allocated once, at construction, and never moved or
//     grown. Offsets and the base pointer are stable for the Arena's
//     lifetime.
//   - Heap: an ordinary Go slice. Anon: an anonymous mmap. File: a
//     MAP_SHARED mmap over a regular file, msync-able for durability.
package arena

import (
	"unsafe"

	"github.com/pkg/errors"
)

// Arena is a single append-only byte region of fixed Capacity, split into a
// reserved header (the first HeaderLen bytes, opaque to the arena itself)
// and a record area that the writer bump-allocates from via Reserve.
type Arena struct {
	m         *mapping
	capacity  int
	headerLen int
	offset    int // bump cursor, relative to headerLen
	readOnly  bool
	sync      bool
}

// New creates an in-memory (Heap) or anonymous-mmap (Anon) arena. File
// arenas are created with OpenFile instead, since they need a path.
func New(backing Backing, capacity, headerLen int) (*Arena, error) {
	if headerLen > capacity {
		return nil, errors.Errorf("arena: header length %d exceeds capacity %d", headerLen, capacity)
	}
	var (
		m   *mapping
		err error
	)
	switch backing {
	case Heap:
		m = mapHeap(capacity)
	case Anon:
		m, err = mapAnon(capacity)
	default:
		return nil, errors.Errorf("arena: backing %d requires OpenFile", backing)
	}
	if err != nil {
		return nil, err
	}
	return &Arena{m: m, capacity: capacity, headerLen: headerLen}, nil
}

// OpenFile creates (if absent) or reopens a file-backed arena of exactly
// capacity bytes. readOnly maps the file PROT_READ only and rejects Reserve.
func OpenFile(path string, capacity, headerLen int, sync, readOnly bool) (*Arena, error) {
	if headerLen > capacity {
		return nil, errors.Errorf("arena: header length %d exceeds capacity %d", headerLen, capacity)
	}
	m, err := mapFile(path, capacity, readOnly)
	if err != nil {
		return nil, err
	}
	return &Arena{m: m, capacity: capacity, headerLen: headerLen, readOnly: readOnly, sync: sync}, nil
}

// ReservedSlice returns the mutable reserved header region: magic, magic
// version, and caller-defined bytes beyond it. Callers must not write past
// construction time concurrently with readers.
func (a *Arena) ReservedSlice() []byte {
	return a.m.data[:a.headerLen]
}

// BasePtr returns the stable base address of the arena's data region.
// Record pointers dereference through this address plus an offset.
func (a *Arena) BasePtr() unsafe.Pointer {
	if len(a.m.data) == 0 {
		return nil
	}
	return unsafe.Pointer(&a.m.data[0])
}

// Bytes returns the n bytes starting at offset, a zero-copy view into the
// arena's backing memory.
func (a *Arena) Bytes(offset, n int) []byte {
	return a.m.data[offset : offset+n]
}

// Capacity returns the total size of the arena, header included.
func (a *Arena) Capacity() int { return a.capacity }

// HeaderLen returns the size of the reserved header region.
func (a *Arena) HeaderLen() int { return a.headerLen }

// Allocated returns the absolute offset of the allocation cursor: the end
// of the last record reserved, or HeaderLen() if none yet.
func (a *Arena) Allocated() int { return a.headerLen + a.offset }

// ReadOnly reports whether Reserve is disallowed.
func (a *Arena) ReadOnly() bool { return a.readOnly }

// Remaining returns the number of bytes left before Reserve would panic.
func (a *Arena) Remaining() int { return a.capacity - a.Allocated() }

// Reserve bump-allocates n contiguous bytes from the record area and
// returns the absolute offset they start at. Per the arena's external
// contract it panics if n exceeds the remaining space; callers (the WAL
// writer) are expected to check Remaining()/size limits themselves and
// return a typed error before ever calling Reserve.
func (a *Arena) Reserve(n int) int {
	if a.readOnly {
		panic("arena: Reserve on a read-only arena")
	}
	if n > a.Remaining() {
		panic("arena: Reserve: insufficient space")
	}
	offset := a.headerLen + a.offset
	a.offset += n
	return offset
}

// Rewind moves the allocation cursor back to an absolute offset, discarding
// any reservation beyond it. Used by replay to truncate a torn tail and by
// the writer to undo a reservation that failed mid-encode.
func (a *Arena) Rewind(to int) {
	if to < a.headerLen || to > a.capacity {
		panic("arena: Rewind out of range")
	}
	a.offset = to - a.headerLen
}

// FlushRange persists [offset, offset+n) to stable storage for File-backed
// arenas; a no-op for Heap/Anon, which have nothing to msync.
func (a *Arena) FlushRange(offset, n int) error {
	return a.m.flush(offset, n)
}

// Flush persists the whole allocated range, header included.
func (a *Arena) Flush() error {
	return a.FlushRange(0, a.Allocated())
}

// Close unmaps/releases the underlying memory. Record pointers obtained
// from this arena must not be dereferenced afterward.
func (a *Arena) Close() error {
	return a.m.close()
}

// Owns reports whether ptr falls within this arena's data region.
func (a *Arena) Owns(ptr unsafe.Pointer) bool {
	if ptr == nil || len(a.m.data) == 0 {
		return false
	}
	start := uintptr(unsafe.Pointer(&a.m.data[0]))
	end := start + uintptr(len(a.m.data))
	p := uintptr(ptr)
	return p >= start && p < end
}
