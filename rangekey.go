package orderedwal

import "encoding/binary"

// Range-deletion and range-update records store both bounds packed into the
// frame's "key" field: start_tag(1B) ‖ end_tag(1B) ‖ start_bytes ‖ end_bytes
// (spec §3). The spec's byte diagram doesn't say how a decoder tells where
// start_bytes ends and end_bytes begins given two back-to-back
// variable-length strings are otherwise undecodable; the original Rust
// implementation's range-bound wrapper lives outside the retrieved source
// (it comes from its dbutils/skl dependency), so this is resolved the same
// way any self-delimiting frame resolves it: start_bytes is prefixed with
// its own varint length, and end_bytes is implicitly whatever remains up to
// the field's total key_len. Recorded as an Open Question decision in
// DESIGN.md.
func encodedRangeKeyLen(start, end Bound) int {
	n := 2 // start_tag + end_tag
	if start.tag != Unbounded {
		var buf [binary.MaxVarintLen64]byte
		n += binary.PutUvarint(buf[:], uint64(len(start.key)))
		n += len(start.key)
	}
	if end.tag != Unbounded {
		n += len(end.key)
	}
	return n
}

// encodeRangeKey writes the packed bound pair into dst, which must be at
// least encodedRangeKeyLen(start, end) bytes.
func encodeRangeKey(dst []byte, start, end Bound) int {
	dst[0] = byte(start.tag)
	dst[1] = byte(end.tag)
	off := 2
	if start.tag != Unbounded {
		off += binary.PutUvarint(dst[off:], uint64(len(start.key)))
		off += copy(dst[off:], start.key)
	}
	if end.tag != Unbounded {
		off += copy(dst[off:], end.key)
	}
	return off
}

// decodeRangeKey parses a packed bound pair out of a frame's key bytes.
func decodeRangeKey(keyBytes []byte) (start, end Bound, ok bool) {
	if len(keyBytes) < 2 {
		return Bound{}, Bound{}, false
	}
	startTag, endTag := BoundTag(keyBytes[0]), BoundTag(keyBytes[1])
	off := 2
	if startTag == Unbounded {
		start = UnboundedBound()
	} else {
		startLen, n := binary.Uvarint(keyBytes[off:])
		if n <= 0 || off+n+int(startLen) > len(keyBytes) {
			return Bound{}, Bound{}, false
		}
		off += n
		start = Bound{tag: startTag, key: keyBytes[off : off+int(startLen)]}
		off += int(startLen)
	}
	if endTag == Unbounded {
		end = UnboundedBound()
	} else {
		end = Bound{tag: endTag, key: keyBytes[off:]}
	}
	return start, end, true
}
