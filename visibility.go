package orderedwal

import (
	"github.com/orderedwal/orderedwal/arena"
	"github.com/orderedwal/orderedwal/internal/skl"
)

// visibilityEngine answers "what is visible for key at version" by layering
// the range-deletion and range-update indexes over the point index, in the
// order the original source's validate() does it (memtable/bounded/
// unique.rs): a range deletion shadows everything under it; failing that, a
// range update with the highest version at or below the query overrides the
// point value (an empty override value means "unset", falling through to
// the point's own value); failing both, the point record's own value wins.
type visibilityEngine struct {
	arena     *arena.Arena
	cmp       KeyComparator
	mvcc      bool
	points    *skl.SkipList[Pointer]
	rangeDels *skl.SkipList[Pointer]
	rangeUpds *skl.SkipList[Pointer]
}

// Entry is what a successful lookup returns.
type Entry struct {
	Key     []byte
	Value   []byte
	Version uint64
}

// get resolves the point entry for key (mode-appropriate: MVCC looks up the
// highest version <= version; unique mode ignores version entirely), then
// applies the range overlays. ok is false if key is not visible at all.
func (v *visibilityEngine) get(version uint64, key []byte) (Entry, bool) {
	pp, found := v.pointLookup(version, key)
	if !found {
		return Entry{}, false
	}
	if pp.IsRemoved(v.arena) {
		return Entry{}, false
	}
	asOf := version
	if !v.mvcc {
		asOf = pp.Version()
	}
	if v.rangeDeletionCovers(key, pp.Version(), asOf) {
		return Entry{}, false
	}
	if upd, ok := v.bestRangeUpdate(key, pp.Version(), asOf); ok {
		if upd.ValueLen() > 0 {
			return Entry{Key: key, Value: upd.Value(v.arena), Version: upd.Version()}, true
		}
		// Empty override value: an "unset" marker, fall through.
	}
	return Entry{Key: key, Value: pp.Value(v.arena), Version: pp.Version()}, true
}

// pointLookup finds the point record for key. In MVCC mode it finds the
// newest version <= version; it also validates the UpperBound result
// actually belongs to key, since UpperBound can otherwise walk back into a
// smaller key entirely when every version of key exceeds the query.
func (v *visibilityEngine) pointLookup(version uint64, key []byte) (Pointer, bool) {
	if !v.mvcc {
		probe := queryPointer(key, 0)
		return v.points.Get(probe)
	}
	probe := queryPointer(key, version)
	got, ok := v.points.UpperBound(probe)
	if !ok {
		return Pointer{}, false
	}
	if v.cmp.Compare(got.Key(v.arena), key) != 0 {
		return Pointer{}, false
	}
	return got, true
}

// rangeDeletionCovers reports whether any range-deletion record covers key
// with a version in (pointVersion, asOf]; a deletion only shadows point
// values written before it and visible at the query version.
func (v *visibilityEngine) rangeDeletionCovers(key []byte, pointVersion, asOf uint64) bool {
	covers := false
	v.scanCandidateRanges(v.rangeDels, key, func(p Pointer) bool {
		if !v.mvcc || (p.Version() > pointVersion && p.Version() <= asOf) {
			start, end, ok := p.Bounds(v.arena)
			if ok && rangeContains(start, end, key, v.cmp) {
				covers = true
				return false
			}
		}
		return true
	})
	return covers
}

// bestRangeUpdate finds the range-update record covering key with the
// highest version in (pointVersion, asOf].
func (v *visibilityEngine) bestRangeUpdate(key []byte, pointVersion, asOf uint64) (Pointer, bool) {
	var best Pointer
	found := false
	v.scanCandidateRanges(v.rangeUpds, key, func(p Pointer) bool {
		if v.mvcc && (p.Version() <= pointVersion || p.Version() > asOf) {
			return true
		}
		start, end, ok := p.Bounds(v.arena)
		if !ok || !rangeContains(start, end, key, v.cmp) {
			return true
		}
		if !found || p.Version() > best.Version() {
			best, found = p, true
		}
		return true
	})
	return best, found
}

// scanCandidateRanges walks idx in start-bound order from the beginning,
// invoking visit for every entry whose start bound is at or before key, and
// stopping as soon as a start bound passes key: no entry beyond that point
// can contain key, since the index is sorted by start bound ascending.
// visit returns false to stop early (e.g. once a covering deletion is
// found).
func (v *visibilityEngine) scanCandidateRanges(idx *skl.SkipList[Pointer], key []byte, visit func(Pointer) bool) {
	first, ok := idx.First()
	if !ok {
		return
	}
	c := idx.NewCursorAt(first)
	for c.Valid() {
		n := c.Key()
		start, _, decOK := n.Bounds(v.arena)
		if !decOK || !startAtOrBefore(start, key, v.cmp) {
			return
		}
		if !visit(n) {
			return
		}
		c.Next()
	}
}
