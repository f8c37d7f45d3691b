package orderedwal

import (
	"encoding/binary"

	"github.com/blainsmith/seahash"
)

// Flag bits, spec §3.
const (
	flagCommitted     byte = 0x01
	flagRemoved       byte = 0x02
	flagVersioned     byte = 0x04
	flagRangeDeletion byte = 0x10
	flagRangeUpdate   byte = 0x20
	flagBatching      byte = 0x40
)

const (
	versionSize  = 8 // LE uint64, present iff flagVersioned
	checksumSize = 8 // seahash.Sum64, over every prior byte with COMMITTED masked to 0
)

// BoundTag identifies the shape of one side of a range (spec §3).
type BoundTag byte

const (
	Unbounded BoundTag = 0
	Included  BoundTag = 1
	Excluded  BoundTag = 2
)

// Bound is one side of a range-deletion/range-update interval. Construct
// one with UnboundedBound, IncludedBound, or ExcludedBound.
type Bound struct {
	tag BoundTag
	key []byte
}

// UnboundedBound is the side of a range with no limit.
func UnboundedBound() Bound { return Bound{tag: Unbounded} }

// IncludedBound is a range side that admits key itself.
func IncludedBound(key []byte) Bound { return Bound{tag: Included, key: key} }

// ExcludedBound is a range side that stops just short of key.
func ExcludedBound(key []byte) Bound { return Bound{tag: Excluded, key: key} }

// packKVLens combines key_len and value_len into the single varint-packed
// field the frame stores (spec §3: "kv_lens (varint)").
func packKVLens(keyLen, valueLen int) uint64 {
	return uint64(uint32(keyLen))<<32 | uint64(uint32(valueLen))
}

func unpackKVLens(v uint64) (keyLen, valueLen int) {
	return int(v >> 32), int(uint32(v))
}

// headerLen returns the number of bytes the frame spends on flag + kv_lens +
// optional version, i.e. everything before the key bytes start.
func headerLen(keyLen, valueLen int, versioned bool) int {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], packKVLens(keyLen, valueLen))
	h := 1 + n
	if versioned {
		h += versionSize
	}
	return h
}

// recordLen returns the total on-arena size of a record with the given key
// and value lengths.
func recordLen(keyLen, valueLen int, versioned bool) int {
	return headerLen(keyLen, valueLen, versioned) + keyLen + valueLen + checksumSize
}

// encodeHeader writes flag + kv_lens + optional version into dst (which must
// be at least headerLen(...) bytes) and returns the number of bytes used.
// flag's COMMITTED bit is always written clear here; the writer flips it
// in place only after the checksum has been sealed.
func encodeHeader(dst []byte, flag byte, keyLen, valueLen int, version uint64, versioned bool) int {
	if versioned {
		flag |= flagVersioned
	}
	dst[0] = flag &^ flagCommitted
	n := binary.PutUvarint(dst[1:], packKVLens(keyLen, valueLen))
	off := 1 + n
	if versioned {
		binary.LittleEndian.PutUint64(dst[off:], version)
		off += versionSize
	}
	return off
}

// decodedHeader is what decodeHeader extracts from a record's fixed prefix.
type decodedHeader struct {
	flag     byte
	keyLen   int
	valueLen int
	version  uint64
	headerN  int // bytes consumed by flag+kv_lens+version
}

// decodeHeader parses a record's header from the start of buf. It returns
// ok=false if buf doesn't hold a complete, self-consistent header; the
// caller (replay) treats that as a torn tail, not corruption.
func decodeHeader(buf []byte) (decodedHeader, bool) {
	if len(buf) < 1 {
		return decodedHeader{}, false
	}
	flag := buf[0]
	kv, n := binary.Uvarint(buf[1:])
	if n <= 0 {
		return decodedHeader{}, false
	}
	keyLen, valueLen := unpackKVLens(kv)
	off := 1 + n
	var version uint64
	if flag&flagVersioned != 0 {
		if len(buf) < off+versionSize {
			return decodedHeader{}, false
		}
		version = binary.LittleEndian.Uint64(buf[off:])
		off += versionSize
	}
	return decodedHeader{flag: flag, keyLen: keyLen, valueLen: valueLen, version: version, headerN: off}, true
}

// sealChecksum computes the checksum over record[:len(record)-checksumSize]
// and writes it into the trailing checksumSize bytes. Must be called while
// record[0]'s COMMITTED bit is still clear: the checksum is permanent and
// never recomputed after the commit flip, so it always covers flag with
// COMMITTED masked to 0 (see verifyChecksum).
func sealChecksum(record []byte) {
	body := record[:len(record)-checksumSize]
	sum := checksumOf(body)
	binary.LittleEndian.PutUint64(record[len(record)-checksumSize:], sum)
}

// verifyChecksum reports whether record's trailing checksum matches its
// body. COMMITTED may have been flipped to 1 in the meantime (that's the
// one sanctioned in-place mutation, spec §5), so the comparison always
// masks it back to 0 first, mirroring exactly what sealChecksum hashed.
func verifyChecksum(record []byte) bool {
	body := record[:len(record)-checksumSize]
	want := binary.LittleEndian.Uint64(record[len(record)-checksumSize:])
	return checksumOf(body) == want
}

// checksumOf hashes body with its leading flag byte's COMMITTED bit forced
// to 0, since that is the only byte the writer mutates in place after the
// checksum was sealed.
func checksumOf(body []byte) uint64 {
	masked := body[0] &^ flagCommitted
	if masked == body[0] {
		return seahash.Sum64(body)
	}
	h := seahash.New()
	h.Write([]byte{masked})
	h.Write(body[1:])
	return h.Sum64()
}

// setCommitted flips COMMITTED on in record's flag byte with a release
// store. Go has no native single-byte atomic, so the store goes through the
// first 4 bytes of the record as a uint32, safe here because every record
// is at least that long (flag, at least one kv_lens varint byte and the
// 8-byte checksum) and
// because amd64/arm64 tolerate unaligned word atomics; a build targeting a
// stricter architecture would need to pad records to a 4-byte boundary.
func setCommitted(record []byte) {
	word := (*uint32)(wordPtr(record))
	atomicOr32(word, uint32(flagCommitted))
}

// isCommitted loads the flag byte with an acquire load (see setCommitted).
func isCommitted(record []byte) bool {
	word := (*uint32)(wordPtr(record))
	return atomicLoad32(word)&uint32(flagCommitted) != 0
}
