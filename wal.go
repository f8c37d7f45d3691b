// Package orderedwal is an ordered write-ahead log with an integrated
// in-memory index: every committed record is immediately queryable without
// re-reading the log, in both a unique (last-write-wins) and an MVCC
// (multi-version) mode.
package orderedwal

import (
	"sync"

	"github.com/orderedwal/orderedwal/arena"
	"github.com/orderedwal/orderedwal/internal/skl"
)

// WAL is the shared state a Writer and any number of Readers hold a
// reference to: the arena, the three memory indexes, and the comparators
// that give them meaning. It is never constructed directly by callers;
// use Open.
type WAL struct {
	opts Options
	a    *arena.Arena
	vis  visibilityEngine

	writerTaken sync.Mutex // held by the open Writer until its Close
	writerOpen  bool
}

// Open opens or creates a WAL at the configured location and replays any
// existing records into the memory indexes (spec §4.7). The returned WAL is
// shared by readers; call OpenWriter once on it to obtain write access.
func Open(opts Options) (*WAL, error) {
	if opts.Comparator == nil {
		opts.Comparator = DefaultComparator
	}
	var (
		a   *arena.Arena
		err error
	)
	switch opts.Backing {
	case arena.File:
		if opts.Path == "" {
			return nil, newErr(KindIO, "file backing requires a Path")
		}
		a, err = arena.OpenFile(opts.Path, opts.Capacity, fileHeaderSize, opts.Sync, opts.ReadOnly)
	default:
		a, err = arena.New(opts.Backing, opts.Capacity, fileHeaderSize)
	}
	if err != nil {
		return nil, wrapIO(err, "opening arena")
	}

	// The arena does not persist its allocation cursor, so a region is new
	// exactly when its header has never been written.
	hdr := arena.HeaderAs[fileHeader](a.ReservedSlice())
	fresh := hdr.MagicText == 0 && hdr.MagicVersion == 0
	if fresh {
		hdr.MagicText = magicText
		hdr.MagicVersion = magicVersion
		if opts.MVCC {
			hdr.Mode = 1
		}
	} else {
		if hdr.MagicText != magicText {
			return nil, newErr(KindMagicMismatch, "unrecognized file")
		}
		if hdr.MagicVersion != magicVersion {
			return nil, newErr(KindMagicVersionMismatch, "unsupported format version")
		}
		gotMVCC := hdr.Mode == 1
		if gotMVCC != opts.MVCC {
			return nil, newErr(KindModeMismatch, "WAL mode does not match the data on disk")
		}
	}

	cmp := opts.comparatorOrDefault()
	w := &WAL{
		opts: opts,
		a:    a,
		vis: visibilityEngine{
			arena:     a,
			cmp:       cmp,
			mvcc:      opts.MVCC,
			points:    skl.New[Pointer](pointComparator(a, cmp, opts.MVCC)),
			rangeDels: skl.New[Pointer](rangeComparator(a, cmp)),
			rangeUpds: skl.New[Pointer](rangeComparator(a, cmp)),
		},
	}

	if !fresh {
		// Replay scans up to capacity and rewinds the cursor to the end of
		// the last committed record.
		a.Rewind(a.Capacity())
		if err := replay(w); err != nil {
			a.Close()
			return nil, err
		}
	}
	return w, nil
}

// Close releases the underlying arena. Any Writer/Reader built over this
// WAL must not be used afterward.
func (w *WAL) Close() error {
	return w.a.Close()
}

// Mode reports whether this WAL is unique or MVCC.
func (w *WAL) Mode() Mode {
	if w.opts.MVCC {
		return MVCC
	}
	return Unique
}

// Mode distinguishes the two indexing disciplines a WAL can run in
// (spec §9): Unique keeps one live value per key; MVCC keeps every version.
type Mode int

const (
	Unique Mode = iota
	MVCC
)

func (m Mode) String() string {
	if m == MVCC {
		return "mvcc"
	}
	return "unique"
}
