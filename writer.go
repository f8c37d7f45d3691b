package orderedwal

// Writer is the single append handle for a WAL (spec §5: "the writer has
// exclusive write access to unallocated space"). Obtain one with
// OpenWriter; only one may be open against a given WAL at a time.
type Writer struct {
	w *WAL
}

// OpenWriter claims write access to wal. It fails if wal is read-only or if
// a Writer is already open against it.
func OpenWriter(w *WAL) (*Writer, error) {
	if w.opts.ReadOnly {
		return nil, newErr(KindReadOnly, "WAL opened read-only")
	}
	if !w.writerTaken.TryLock() {
		return nil, newErr(KindReadOnly, "a writer is already open for this WAL")
	}
	w.writerOpen = true
	return &Writer{w: w}, nil
}

// Close releases this Writer's exclusive hold, allowing OpenWriter to
// succeed again. It does not close the underlying WAL/arena.
func (wr *Writer) Close() error {
	wr.w.writerOpen = false
	wr.w.writerTaken.Unlock()
	return nil
}

func (wr *Writer) checkSizes(keyLen, valueLen int) error {
	o := wr.w.opts
	if keyLen > o.MaxKeySize {
		return newErr(KindKeyTooLarge, "")
	}
	if valueLen > o.MaxValueSize {
		return newErr(KindValueTooLarge, "")
	}
	return nil
}

// Insert writes a point entry. version is ignored (written as 0, VERSIONED
// unset) in unique mode.
func (wr *Writer) Insert(version uint64, key, value []byte) error {
	return wr.appendPoint(version, key, value, 0)
}

// Delete writes a point tombstone: same protocol as Insert with REMOVED set
// and an empty value (spec §5, "Tombstone / range").
func (wr *Writer) Delete(version uint64, key []byte) error {
	return wr.appendPoint(version, key, nil, flagRemoved)
}

func (wr *Writer) appendPoint(version uint64, key, value []byte, extraFlags byte) error {
	if err := wr.checkSizes(len(key), len(value)); err != nil {
		return err
	}
	versioned := wr.w.opts.MVCC
	if !versioned {
		version = 0
	}
	n := recordLen(len(key), len(value), versioned)
	offset, record, err := wr.reserve(n)
	if err != nil {
		return err
	}

	flag := extraFlags
	off := encodeHeader(record, flag, len(key), len(value), version, versioned)
	off += copy(record[off:], key)
	copy(record[off:], value)
	sealChecksum(record)

	if err := wr.publish(offset, record); err != nil {
		return err
	}

	keyOff := offset + headerLen(len(key), len(value), versioned)
	ptr := newPointer(offset, keyOff, len(key), len(value), version)
	wr.w.vis.points.Insert(ptr)
	return nil
}

// RangeDelete writes a range-deletion record shadowing every key in
// [start, end) as qualified by each bound's tag, at the given version (0 in
// unique mode).
func (wr *Writer) RangeDelete(version uint64, start, end Bound) error {
	return wr.appendRange(version, start, end, nil, flagRangeDeletion)
}

// RangeUpdate writes a range-update record overriding the value of every
// key in [start, end) with value, at the given version. An empty value
// marks this override as "unset"; subsequent reads fall through to the
// point record's own value (spec §4.2's range-update overlay semantics).
func (wr *Writer) RangeUpdate(version uint64, start, end Bound, value []byte) error {
	return wr.appendRange(version, start, end, value, flagRangeUpdate)
}

func (wr *Writer) appendRange(version uint64, start, end Bound, value []byte, extraFlags byte) error {
	keyLen := encodedRangeKeyLen(start, end)
	if err := wr.checkSizes(keyLen, len(value)); err != nil {
		return err
	}
	versioned := wr.w.opts.MVCC
	if !versioned {
		version = 0
	}
	n := recordLen(keyLen, len(value), versioned)
	offset, record, err := wr.reserve(n)
	if err != nil {
		return err
	}

	off := encodeHeader(record, extraFlags, keyLen, len(value), version, versioned)
	keyOff := offset + off
	off += encodeRangeKey(record[off:], start, end)
	copy(record[off:], value)
	sealChecksum(record)

	if err := wr.publish(offset, record); err != nil {
		return err
	}

	ptr := newPointer(offset, keyOff, keyLen, len(value), version)
	if extraFlags&flagRangeDeletion != 0 {
		wr.w.vis.rangeDels.Insert(ptr)
	} else {
		wr.w.vis.rangeUpds.Insert(ptr)
	}
	return nil
}

// reserve allocates n bytes from the arena and returns the offset together
// with a slice view over exactly those bytes.
func (wr *Writer) reserve(n int) (offset int, record []byte, err error) {
	a := wr.w.a
	if n > a.Remaining() {
		return 0, nil, newErr(KindInsufficientSpace, "")
	}
	offset = a.Reserve(n)
	return offset, a.Bytes(offset, n), nil
}

// publish seals the commit bit and flushes, per the single-insert protocol
// (spec §5, steps 4-5): checksum is already sealed by the caller with
// COMMITTED clear; this flips it and, if configured, msyncs.
func (wr *Writer) publish(offset int, record []byte) error {
	setCommitted(record)
	if wr.w.opts.Sync {
		if err := wr.w.a.FlushRange(offset, len(record)); err != nil {
			return wrapIO(err, "flushing record")
		}
	}
	return nil
}

// Flush persists the whole allocated range to stable storage. A no-op for
// Heap/Anon arenas.
func (wr *Writer) Flush() error {
	if err := wr.w.a.Flush(); err != nil {
		return wrapIO(err, "flushing arena")
	}
	return nil
}
