package orderedwal

// replay walks w's arena from the end of the header to the allocation
// cursor, validating each record and rebuilding the point/range-deletion/
// range-update indexes (spec §4.7, C11). It is called once, from Open, for
// any arena that already holds data.
//
// Per record: a missing COMMITTED bit truncates the cursor there (not an
// error: it's exactly what a crash between reserve and commit leaves
// behind, spec §8 scenario 6); a checksum mismatch inside an
// apparently-complete, committed record returns Corrupted, since that
// implies damage beneath an otherwise intact frame rather than a torn
// write.
func replay(w *WAL) error {
	a := w.a
	end := a.Allocated()
	cursor := a.HeaderLen()

	for cursor < end {
		buf := a.Bytes(cursor, end-cursor)
		hdr, ok := decodeHeader(buf)
		if !ok {
			break
		}
		n := recordLen(hdr.keyLen, hdr.valueLen, hdr.flag&flagVersioned != 0)
		if cursor+n > end {
			break
		}
		record := a.Bytes(cursor, n)

		if hdr.flag&flagCommitted == 0 {
			break
		}
		if !verifyChecksum(record) {
			return newErrAt(KindCorrupted, int64(cursor), "checksum mismatch")
		}

		keyOff := cursor + hdr.headerN
		ptr := newPointer(cursor, keyOff, hdr.keyLen, hdr.valueLen, hdr.version)
		switch {
		case hdr.flag&flagRangeDeletion != 0:
			w.vis.rangeDels.Insert(ptr)
		case hdr.flag&flagRangeUpdate != 0:
			w.vis.rangeUpds.Insert(ptr)
		default:
			w.vis.points.Insert(ptr)
		}

		cursor += n
	}

	a.Rewind(cursor)
	return nil
}
