package orderedwal

// BatchEntry describes one record in a Batch call. Exactly one of the
// point fields (Key/Value) or the range fields (Start/End[/Value])
// applies, selected by Kind.
type BatchEntry struct {
	Kind    BatchEntryKind
	Version uint64
	Key     []byte
	Value   []byte
	Start   Bound
	End     Bound
}

// BatchEntryKind selects what a BatchEntry encodes.
type BatchEntryKind int

const (
	BatchInsert BatchEntryKind = iota
	BatchDelete
	BatchRangeDelete
	BatchRangeUpdate
)

func (e BatchEntry) keyLen() int {
	if e.Kind == BatchRangeDelete || e.Kind == BatchRangeUpdate {
		return encodedRangeKeyLen(e.Start, e.End)
	}
	return len(e.Key)
}

func (e BatchEntry) valueLen() int {
	if e.Kind == BatchDelete {
		return 0
	}
	return len(e.Value)
}

func (e BatchEntry) flag() byte {
	switch e.Kind {
	case BatchDelete:
		return flagRemoved
	case BatchRangeDelete:
		return flagRangeDeletion
	case BatchRangeUpdate:
		return flagRangeUpdate
	default:
		return 0
	}
}

// Batch writes entries as one atomically-committed group (spec §5, "Batch
// commit"). The writer reserves one contiguous region sized for every
// entry, serializes them back-to-back with COMMITTED clear and BATCHING
// set, then flips COMMITTED on the first entry only (the group's single
// commit point) and flushes. Indexes are only updated after that flip
// succeeds, so a reader can never observe a partially-indexed batch.
func (wr *Writer) Batch(entries []BatchEntry) error {
	if len(entries) == 0 {
		return nil
	}
	versioned := wr.w.opts.MVCC

	total := 0
	for _, e := range entries {
		kl, vl := e.keyLen(), e.valueLen()
		if err := wr.checkSizes(kl, vl); err != nil {
			return err
		}
		total += recordLen(kl, vl, versioned)
	}

	a := wr.w.a
	if total > a.Remaining() {
		return newErr(KindInsufficientSpace, "")
	}
	base := a.Reserve(total)
	region := a.Bytes(base, total)

	type built struct {
		offset  int
		keyOff  int
		keyLen  int
		valLen  int
		version uint64
		kind    BatchEntryKind
	}
	results := make([]built, 0, len(entries))

	off := 0
	for i, e := range entries {
		version := e.Version
		if !versioned {
			version = 0
		}
		kl, vl := e.keyLen(), e.valueLen()
		n := recordLen(kl, vl, versioned)
		record := region[off : off+n]

		flag := e.flag() | flagBatching
		hOff := encodeHeader(record, flag, kl, vl, version, versioned)
		keyOff := base + off + hOff
		if e.Kind == BatchRangeDelete || e.Kind == BatchRangeUpdate {
			hOff += encodeRangeKey(record[hOff:], e.Start, e.End)
		} else {
			hOff += copy(record[hOff:], e.Key)
		}
		if e.Kind != BatchDelete {
			copy(record[hOff:], e.Value)
		}
		sealChecksum(record)

		results = append(results, built{
			offset: base + off, keyOff: keyOff, keyLen: kl, valLen: vl,
			version: version, kind: e.Kind,
		})
		off += n
		_ = i
	}

	// Commit point: flip COMMITTED on the first record only.
	setCommitted(region[:recordLen(entries[0].keyLen(), entries[0].valueLen(), versioned)])
	if wr.w.opts.Sync {
		if err := a.FlushRange(base, total); err != nil {
			return wrapIO(err, "flushing batch")
		}
	}

	for _, r := range results {
		ptr := newPointer(r.offset, r.keyOff, r.keyLen, r.valLen, r.version)
		switch r.kind {
		case BatchRangeDelete:
			wr.w.vis.rangeDels.Insert(ptr)
		case BatchRangeUpdate:
			wr.w.vis.rangeUpds.Insert(ptr)
		default:
			wr.w.vis.points.Insert(ptr)
		}
	}
	return nil
}
