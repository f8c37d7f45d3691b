// Package arena provides a fixed-capacity, append-only byte region ("arena")
// with three interchangeable backings: plain heap memory, anonymous mmap,
// and file-backed mmap. It hands out stable offsets into that region; the
// mapping is never moved or grown for the lifetime of the Arena.
package arena

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Backing selects how an Arena's byte region is obtained.
type Backing int

const (
	// Heap backs the arena with an ordinary Go byte slice. Fastest to
	// create, not msync-able, not shared across processes.
	Heap Backing = iota
	// Anon backs the arena with an anonymous mmap (MAP_ANON|MAP_PRIVATE).
	// Lives outside the Go heap; msync is a no-op since there is no file.
	Anon
	// File backs the arena with a file-backed mmap (MAP_SHARED). Supports
	// msync for durability and survives process restarts.
	File
)

// mapping is the raw byte region plus whatever teardown it needs.
type mapping struct {
	data    []byte
	file    *os.File
	backing Backing
}

func mapHeap(size int) *mapping {
	return &mapping{data: make([]byte, size), backing: Heap}
}

func mapAnon(size int) (*mapping, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrap(err, "arena: mmap anon")
	}
	return &mapping{data: data, backing: Anon}, nil
}

// mapFile opens (creating if necessary) path and mmaps the first size bytes
// as MAP_SHARED, growing the underlying file to size first via Truncate.
func mapFile(path string, size int, readOnly bool) (*mapping, error) {
	flags := os.O_RDWR | os.O_CREATE
	if readOnly {
		flags = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "arena: open file")
	}
	if !readOnly {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "arena: truncate file")
		}
	}
	prot := unix.PROT_READ
	if !readOnly {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "arena: mmap file")
	}
	return &mapping{data: data, file: f, backing: File}, nil
}

// flush msyncs the region covering [offset, offset+n). Msync requires its
// argument to start on a page boundary, but callers (writer.publish) pass
// arbitrary record offsets, so the range is rounded out to whole pages
// before syncing.
func (m *mapping) flush(offset, n int) error {
	if m.backing != File || n == 0 {
		return nil
	}
	pageSize := unix.Getpagesize()
	alignedStart := (offset / pageSize) * pageSize
	alignedEnd := offset + n
	if rem := alignedEnd % pageSize; rem != 0 {
		alignedEnd += pageSize - rem
	}
	if alignedEnd > len(m.data) {
		alignedEnd = len(m.data)
	}
	if err := unix.Msync(m.data[alignedStart:alignedEnd], unix.MS_SYNC); err != nil {
		return errors.Wrap(err, "arena: msync")
	}
	return nil
}

func (m *mapping) close() error {
	var err error
	switch m.backing {
	case Anon, File:
		err = unix.Munmap(m.data)
	}
	if m.file != nil {
		if cerr := m.file.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return errors.Wrap(err, "arena: close mapping")
	}
	return nil
}
