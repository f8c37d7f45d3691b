package orderedwal

import "math"

// Reader is a read-only view over a WAL's shared arena and indexes (spec
// §4.6). Any number of Readers may be constructed concurrently with each
// other and with the one Writer. Lookups take each index's read lock, so a
// lookup can wait while the Writer inserts into that index; a Reader sees
// every record indexed after it was created.
type Reader struct {
	w *WAL
}

// NewReader returns a Reader over w. Cheap to construct; it holds no
// state of its own beyond the shared *WAL.
func NewReader(w *WAL) *Reader {
	return &Reader{w: w}
}

// latestVersion is used as the query version for unique-mode lookups,
// where version predicates collapse to a plain existence check (spec §9).
const latestVersion = math.MaxUint64

// Get looks up key in unique mode.
func (r *Reader) Get(key []byte) (Entry, bool) {
	return r.w.vis.get(latestVersion, key)
}

// GetAt looks up the newest version of key visible at or before version,
// in MVCC mode.
func (r *Reader) GetAt(version uint64, key []byte) (Entry, bool) {
	return r.w.vis.get(version, key)
}

// Contains reports whether key has a visible value in unique mode.
func (r *Reader) Contains(key []byte) bool {
	_, ok := r.Get(key)
	return ok
}

// Len returns the number of point records indexed, committed tombstones
// included. Mirrored from zerocopyskiplist.go's Length.
func (r *Reader) Len() int {
	return r.w.vis.points.Len()
}

// IsEmpty reports whether the point index holds no records.
func (r *Reader) IsEmpty() bool {
	return r.Len() == 0
}

// Range visits every visible point entry whose key falls within
// [start, end) as qualified by each bound's tag, ascending by key.
func (r *Reader) Range(start, end Bound, yield func(Entry) bool) {
	r.rangeAt(latestVersion, false, start, end, yield)
}

// RangeAt is the MVCC analogue of Range: it visits, for every distinct key
// in [start, end), the entry visible at version.
func (r *Reader) RangeAt(version uint64, start, end Bound, yield func(Entry) bool) {
	r.rangeAt(version, true, start, end, yield)
}

func (r *Reader) rangeAt(version uint64, mvccQuery bool, start, end Bound, yield func(Entry) bool) {
	cmp := r.w.vis.cmp
	r.iterate(version, mvccQuery, func(e Entry) bool {
		if !rangeContains(start, end, e.Key, cmp) {
			if start.tag != Unbounded && cmp.Compare(e.Key, start.key) < 0 {
				return true // haven't reached the range yet, keep scanning
			}
			if end.tag != Unbounded && cmp.Compare(e.Key, end.key) >= 0 {
				return false // past the range, no further key can qualify
			}
			return true
		}
		return yield(e)
	})
}

// First returns the smallest visible key in unique mode.
func (r *Reader) First() (Entry, bool) {
	return r.scanFirst(latestVersion, false)
}

// Last returns the greatest visible key in unique mode.
func (r *Reader) Last() (Entry, bool) {
	return r.scanLast(latestVersion, false)
}

// Iter visits every visible point entry in unique mode, ascending by key,
// applying range-deletion/range-update overlays. Stops early if yield
// returns false.
func (r *Reader) Iter(yield func(Entry) bool) {
	r.iterate(latestVersion, false, yield)
}

// IterAt visits, for every distinct key, the entry visible at version: the
// MVCC analogue of Iter, collapsing multiple versions of a key down to the
// single one the query version resolves to.
func (r *Reader) IterAt(version uint64, yield func(Entry) bool) {
	r.iterate(version, true, yield)
}

// RawEntry is one physical point record, as IterAllPoints yields it: no
// per-key collapsing, no range overlay applied, tombstones included.
type RawEntry struct {
	Key     []byte
	Value   []byte
	Version uint64
	Removed bool
}

// IterAllPoints visits every point record with Version() <= version, in
// key-then-version-ascending index order, without collapsing multiple
// versions of a key down to one and without applying range-deletion/
// range-update overlays (spec §4.6's iter_all_points(v), MVCC mode only:
// "yields every version visible at v including tombstones"). Use IterAt
// for a resolved, one-entry-per-key view.
func (r *Reader) IterAllPoints(version uint64, yield func(RawEntry) bool) {
	v := &r.w.vis
	first, ok := v.points.First()
	if !ok {
		return
	}
	c := v.points.NewCursorAt(first)
	for c.Valid() {
		p := c.Key()
		if p.Version() <= version {
			key := p.Key(v.arena)
			e := RawEntry{Key: key, Version: p.Version(), Removed: p.IsRemoved(v.arena)}
			if !e.Removed {
				e.Value = p.Value(v.arena)
			}
			if !yield(e) {
				return
			}
		}
		c.Next()
	}
}

// LowerBound returns the entry (unique mode) for the smallest indexed key
// that is >= key, resolved with the same visibility rules as Get. If that
// key is not visible (a tombstone or a range deletion), it reports false;
// later keys are not searched.
func (r *Reader) LowerBound(key []byte) (Entry, bool) {
	return r.boundLookup(latestVersion, false, key, false)
}

// LowerBoundAt is the MVCC analogue of LowerBound: it resolves the smallest
// indexed key >= key at version, and reports false if that key has no
// entry visible at version; later keys are not searched.
func (r *Reader) LowerBoundAt(version uint64, key []byte) (Entry, bool) {
	return r.boundLookup(version, true, key, false)
}

// UpperBound returns the entry (unique mode) for the smallest indexed key
// that is strictly greater than key, resolved with the same visibility
// rules as Get. If that key is not visible, it reports false; later keys
// are not searched.
func (r *Reader) UpperBound(key []byte) (Entry, bool) {
	return r.boundLookup(latestVersion, false, key, true)
}

// UpperBoundAt is the MVCC analogue of UpperBound: it resolves the smallest
// indexed key strictly greater than key at version, and reports false if
// that key has no entry visible at version; later keys are not searched.
func (r *Reader) UpperBoundAt(version uint64, key []byte) (Entry, bool) {
	return r.boundLookup(version, true, key, true)
}

// boundLookup finds the nearest indexed key at or past key (strictly past
// when strictGreater), then resolves the full get()-style visibility for
// that key at version. The probe's version component is chosen so a
// single LowerBound call on the point index already skips every version
// of key itself when strictGreater is set: the ascending (key, version)
// order means a probe carrying math.MaxUint64 sorts after every real
// version of key, landing LowerBound on the first entry of the next key.
func (r *Reader) boundLookup(version uint64, mvccQuery bool, key []byte, strictGreater bool) (Entry, bool) {
	v := &r.w.vis
	probeVersion := uint64(0)
	if strictGreater && mvccQuery {
		probeVersion = math.MaxUint64
	}
	got, ok := v.points.LowerBound(queryPointer(key, probeVersion))
	if !ok {
		return Entry{}, false
	}
	foundKey := got.Key(v.arena)
	if strictGreater && v.cmp.Compare(foundKey, key) == 0 {
		// Unique mode ignores the version component of the comparator, so
		// the probe trick above can't skip past key itself; walk forward.
		c := v.points.NewCursorAt(got)
		ok = false
		for c.Valid() {
			pp := c.Key()
			if v.cmp.Compare(pp.Key(v.arena), key) != 0 {
				got, foundKey, ok = pp, pp.Key(v.arena), true
				break
			}
			c.Next()
		}
		if !ok {
			return Entry{}, false
		}
	}
	if !mvccQuery {
		return r.resolve(got, foundKey, got.Version())
	}
	return v.get(version, foundKey)
}

func (r *Reader) scanFirst(version uint64, mvccQuery bool) (Entry, bool) {
	var first Entry
	found := false
	r.iterate(version, mvccQuery, func(e Entry) bool {
		first, found = e, true
		return false
	})
	return first, found
}

func (r *Reader) scanLast(version uint64, mvccQuery bool) (Entry, bool) {
	var last Entry
	found := false
	r.iterate(version, mvccQuery, func(e Entry) bool {
		last, found = e, true
		return true
	})
	return last, found
}

// iterate walks the point index ascending by key. In MVCC mode it groups
// consecutive entries that share a key (the index sorts same-key entries
// by version ascending) and resolves each group to at most one visible
// entry, the highest version at or below the query version, before moving
// to the next key.
func (r *Reader) iterate(version uint64, mvccQuery bool, yield func(Entry) bool) {
	v := &r.w.vis
	first, ok := v.points.First()
	if !ok {
		return
	}
	c := v.points.NewCursorAt(first)
	for c.Valid() {
		p := c.Key()
		key := p.Key(v.arena)

		if !mvccQuery {
			if e, ok := r.resolve(p, key, p.Version()); ok {
				if !yield(e) {
					return
				}
			}
			c.Next()
			continue
		}

		var chosen Pointer
		haveChosen := false
		for c.Valid() {
			pp := c.Key()
			if v.cmp.Compare(pp.Key(v.arena), key) != 0 {
				break
			}
			// Same-key entries are ordered by version ascending, so the
			// last one at or below the query version is the highest one.
			if pp.Version() <= version {
				chosen, haveChosen = pp, true
			}
			c.Next()
		}
		if haveChosen {
			if e, ok := r.resolve(chosen, key, version); ok {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// resolve applies the tombstone and range overlays to a point pointer
// already known to be the right version for key, the same layering get
// uses.
func (r *Reader) resolve(p Pointer, key []byte, asOf uint64) (Entry, bool) {
	v := &r.w.vis
	if p.IsRemoved(v.arena) {
		return Entry{}, false
	}
	if v.rangeDeletionCovers(key, p.Version(), asOf) {
		return Entry{}, false
	}
	if upd, ok := v.bestRangeUpdate(key, p.Version(), asOf); ok && upd.ValueLen() > 0 {
		return Entry{Key: key, Value: upd.Value(v.arena), Version: upd.Version()}, true
	}
	return Entry{Key: key, Value: p.Value(v.arena), Version: p.Version()}, true
}
