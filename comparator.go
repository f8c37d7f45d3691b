package orderedwal

import (
	"bytes"

	"github.com/orderedwal/orderedwal/arena"
)

// KeyComparator orders raw user keys. The default is bytewise lexicographic
// (bytes.Compare); callers may supply their own for, e.g., integer keys
// encoded big-endian or a custom collation.
type KeyComparator interface {
	Compare(a, b []byte) int
}

type bytewiseComparator struct{}

func (bytewiseComparator) Compare(a, b []byte) int { return bytes.Compare(a, b) }

// DefaultComparator is plain bytewise lexicographic ordering.
var DefaultComparator KeyComparator = bytewiseComparator{}

// pointComparator builds the comparator plugged into the point skiplist
// (C4, C5). In unique mode it orders purely by user key, so Insert's
// replace-on-equal behavior gives last-writer-wins (spec invariant 3). In
// MVCC mode it orders by user key ascending, then version ascending, so
// that within a key group UpperBound((k, queryVersion)) (and a forward
// walk of a key's group) lands on the newest version at or below the
// query version.
func pointComparator(a *arena.Arena, userCmp KeyComparator, mvcc bool) func(x, y Pointer) int {
	if !mvcc {
		return func(x, y Pointer) int {
			return userCmp.Compare(x.Key(a), y.Key(a))
		}
	}
	return func(x, y Pointer) int {
		if c := userCmp.Compare(x.Key(a), y.Key(a)); c != 0 {
			return c
		}
		// Ascending version: x sorts before y when x is older.
		switch {
		case x.Version() < y.Version():
			return -1
		case x.Version() > y.Version():
			return 1
		default:
			return 0
		}
	}
}

// rangeComparator orders range-deletion/range-update pointers by start
// bound first, then end bound (C6, C7), the same order the original
// source scans in (memtable/bounded/unique.rs's range(..=key) walks start
// bounds ascending).
func rangeComparator(a *arena.Arena, userCmp KeyComparator) func(x, y Pointer) int {
	return func(x, y Pointer) int {
		xs, xe, _ := x.Bounds(a)
		ys, ye, _ := y.Bounds(a)
		if c := compareStartBound(xs, ys, userCmp); c != 0 {
			return c
		}
		if c := compareEndBound(xe, ye, userCmp); c != 0 {
			return c
		}
		// Same interval: version ascending, same order as pointComparator.
		// bestRangeUpdate/rangeDeletionCovers don't rely on this tie-break
		// for correctness (they compare versions explicitly); it only
		// gives identical-interval entries a stable order in the index.
		switch {
		case x.Version() < y.Version():
			return -1
		case x.Version() > y.Version():
			return 1
		default:
			return 0
		}
	}
}

// compareStartBound orders two start bounds: Unbounded sorts before
// everything (negative infinity); for equal keys, Included(x) sorts before
// Excluded(x) since an included start admits x itself, a point an excluded
// start does not yet reach.
func compareStartBound(a, b Bound, cmp KeyComparator) int {
	if a.tag == Unbounded && b.tag == Unbounded {
		return 0
	}
	if a.tag == Unbounded {
		return -1
	}
	if b.tag == Unbounded {
		return 1
	}
	if c := cmp.Compare(a.key, b.key); c != 0 {
		return c
	}
	if a.tag == b.tag {
		return 0
	}
	if a.tag == Included {
		return -1
	}
	return 1
}

// compareEndBound orders two end bounds: Unbounded sorts after everything
// (positive infinity); for equal keys, Included(x) sorts after Excluded(x)
// since an included end reaches one point further than an excluded end.
func compareEndBound(a, b Bound, cmp KeyComparator) int {
	if a.tag == Unbounded && b.tag == Unbounded {
		return 0
	}
	if a.tag == Unbounded {
		return 1
	}
	if b.tag == Unbounded {
		return -1
	}
	if c := cmp.Compare(a.key, b.key); c != 0 {
		return c
	}
	if a.tag == b.tag {
		return 0
	}
	if a.tag == Included {
		return 1
	}
	return -1
}

// startAtOrBefore reports whether start bound s admits a probe point that
// is "Included(key)", i.e. whether compareStartBound(s, Included(key)) is
// <= 0. Used to walk a range index in start-bound order and stop once no
// further entry can possibly contain key.
func startAtOrBefore(s Bound, key []byte, cmp KeyComparator) bool {
	return compareStartBound(s, Bound{tag: Included, key: key}, cmp) <= 0
}

// rangeContains reports whether key falls within [start, end) as qualified
// by each bound's tag.
func rangeContains(start, end Bound, key []byte, cmp KeyComparator) bool {
	if start.tag != Unbounded {
		c := cmp.Compare(key, start.key)
		if start.tag == Included && c < 0 {
			return false
		}
		if start.tag == Excluded && c <= 0 {
			return false
		}
	}
	if end.tag != Unbounded {
		c := cmp.Compare(key, end.key)
		if end.tag == Included && c > 0 {
			return false
		}
		if end.tag == Excluded && c >= 0 {
			return false
		}
	}
	return true
}
