package orderedwal_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orderedwal/orderedwal"
)

func openUnique(t *testing.T, capacity int) (*orderedwal.WAL, *orderedwal.Writer, *orderedwal.Reader) {
	t.Helper()
	w, err := orderedwal.Open(orderedwal.DefaultOptions().WithCapacity(capacity))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	wr, err := orderedwal.OpenWriter(w)
	require.NoError(t, err)
	t.Cleanup(func() { wr.Close() })
	return w, wr, orderedwal.NewReader(w)
}

func openMVCC(t *testing.T, capacity int) (*orderedwal.WAL, *orderedwal.Writer, *orderedwal.Reader) {
	t.Helper()
	w, err := orderedwal.Open(orderedwal.DefaultOptions().WithCapacity(capacity).WithMVCC(true))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	wr, err := orderedwal.OpenWriter(w)
	require.NoError(t, err)
	t.Cleanup(func() { wr.Close() })
	return w, wr, orderedwal.NewReader(w)
}

// Scenario 1: unique basic.
func TestUniqueBasic(t *testing.T) {
	_, wr, r := openUnique(t, 1<<20)

	require.NoError(t, wr.Insert(0, []byte("a"), []byte("1")))
	require.NoError(t, wr.Insert(0, []byte("b"), []byte("2")))
	require.NoError(t, wr.Insert(0, []byte("a"), []byte("3")))

	e, ok := r.Get([]byte("a"))
	require.True(t, ok)
	require.Equal(t, "3", string(e.Value))

	var seen []string
	r.Iter(func(e orderedwal.Entry) bool {
		seen = append(seen, string(e.Key)+"="+string(e.Value))
		return true
	})
	require.Equal(t, []string{"a=3", "b=2"}, seen)
}

// Scenario 2: reopen, read-only.
func TestReopenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.dat")
	opts := orderedwal.DefaultOptions().WithCapacity(1 << 16).WithFile(path)

	w, err := orderedwal.Open(opts)
	require.NoError(t, err)
	wr, err := orderedwal.OpenWriter(w)
	require.NoError(t, err)
	require.NoError(t, wr.Insert(0, []byte("a"), []byte("1")))
	require.NoError(t, wr.Insert(0, []byte("b"), []byte("2")))
	require.NoError(t, wr.Insert(0, []byte("a"), []byte("3")))
	require.NoError(t, wr.Close())
	require.NoError(t, w.Close())

	ro, err := orderedwal.Open(opts.WithReadOnly(true))
	require.NoError(t, err)
	defer ro.Close()

	r := orderedwal.NewReader(ro)
	var seen []string
	r.Iter(func(e orderedwal.Entry) bool {
		seen = append(seen, string(e.Key)+"="+string(e.Value))
		return true
	})
	require.Equal(t, []string{"a=3", "b=2"}, seen)
}

// Scenario 3: MVCC read-your-writes.
func TestMVCCReadYourWrites(t *testing.T) {
	_, wr, r := openMVCC(t, 1<<20)

	require.NoError(t, wr.Insert(1, []byte("a"), []byte("a1")))
	require.NoError(t, wr.Insert(3, []byte("a"), []byte("a3")))
	require.NoError(t, wr.Insert(1, []byte("c"), []byte("c1")))
	require.NoError(t, wr.Insert(3, []byte("c"), []byte("c3")))

	assertAt := func(version uint64, key, want string) {
		e, ok := r.GetAt(version, []byte(key))
		require.True(t, ok, "GetAt(%d, %q)", version, key)
		require.Equal(t, want, string(e.Value))
	}
	assertAt(2, "a", "a1")
	assertAt(3, "a", "a3")
	assertAt(2, "c", "c1")
	assertAt(4, "c", "c3")
}

func seedRangePoints(t *testing.T, wr *orderedwal.Writer) {
	t.Helper()
	keys := []string{"a", "b", "c", "d", "e", "f"}
	vals := []string{"1", "2", "3", "4", "5", "6"}
	for i := range keys {
		require.NoError(t, wr.Insert(1, []byte(keys[i]), []byte(vals[i])))
	}
}

// Scenario 4: range deletion.
func TestRangeDeletion(t *testing.T) {
	_, wr, r := openMVCC(t, 1<<20)
	seedRangePoints(t, wr)

	require.NoError(t, wr.RangeDelete(5, orderedwal.IncludedBound([]byte("b")), orderedwal.IncludedBound([]byte("d"))))

	var seen []string
	r.IterAt(5, func(e orderedwal.Entry) bool {
		seen = append(seen, string(e.Key)+"="+string(e.Value))
		return true
	})
	require.Equal(t, []string{"a=1", "e=5", "f=6"}, seen)
}

// Scenario 5: range update overlay.
func TestRangeUpdateOverlay(t *testing.T) {
	_, wr, r := openMVCC(t, 1<<20)
	seedRangePoints(t, wr)

	require.NoError(t, wr.RangeUpdate(5, orderedwal.IncludedBound([]byte("b")), orderedwal.ExcludedBound([]byte("d")), []byte("X")))

	c, ok := r.GetAt(5, []byte("c"))
	require.True(t, ok)
	require.Equal(t, "X", string(c.Value))

	a, ok := r.GetAt(5, []byte("a"))
	require.True(t, ok)
	require.Equal(t, "1", string(a.Value))
}

// Scenario 6: crash before commit.
func TestCrashBeforeCommitTruncatesAndRewinds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.dat")
	opts := orderedwal.DefaultOptions().WithCapacity(1 << 16).WithFile(path)

	w, err := orderedwal.Open(opts)
	require.NoError(t, err)
	wr, err := orderedwal.OpenWriter(w)
	require.NoError(t, err)
	require.NoError(t, wr.Insert(0, []byte("a"), []byte("1")))

	// Simulate a torn write: reserve space for a second record and write its
	// body, but never flip COMMITTED.
	require.NoError(t, wr.Flush())
	before := orderedwal.TestingAllocated(w)
	orderedwal.TestingWriteUncommitted(w, []byte("b"), []byte("2"))
	require.NoError(t, w.Close())

	reopened, err := orderedwal.Open(opts)
	require.NoError(t, err)
	defer reopened.Close()

	r := orderedwal.NewReader(reopened)
	_, ok := r.Get([]byte("b"))
	require.False(t, ok, "uncommitted record must not be indexed")
	a, ok := r.Get([]byte("a"))
	require.True(t, ok)
	require.Equal(t, "1", string(a.Value))

	require.Equal(t, before, orderedwal.TestingAllocated(reopened), "cursor should rewind to the uncommitted record's start")

	wr2, err := orderedwal.OpenWriter(reopened)
	require.NoError(t, err)
	defer wr2.Close()
	require.NoError(t, wr2.Insert(0, []byte("c"), []byte("3")))
	c, ok := orderedwal.NewReader(reopened).Get([]byte("c"))
	require.True(t, ok)
	require.Equal(t, "3", string(c.Value))
}

func TestDeleteTombstonesAKey(t *testing.T) {
	_, wr, r := openUnique(t, 1<<16)
	require.NoError(t, wr.Insert(0, []byte("k"), []byte("v")))
	require.NoError(t, wr.Delete(0, []byte("k")))
	_, ok := r.Get([]byte("k"))
	require.False(t, ok)
}

func TestBatchIsAtomic(t *testing.T) {
	_, wr, r := openUnique(t, 1<<16)
	entries := []orderedwal.BatchEntry{
		{Kind: orderedwal.BatchInsert, Key: []byte("x"), Value: []byte("1")},
		{Kind: orderedwal.BatchInsert, Key: []byte("y"), Value: []byte("2")},
		{Kind: orderedwal.BatchInsert, Key: []byte("z"), Value: []byte("3")},
	}
	require.NoError(t, wr.Batch(entries))

	for _, kv := range [][2]string{{"x", "1"}, {"y", "2"}, {"z", "3"}} {
		e, ok := r.Get([]byte(kv[0]))
		require.True(t, ok)
		require.Equal(t, kv[1], string(e.Value))
	}
}

func TestRangeScanAndLen(t *testing.T) {
	_, wr, r := openUnique(t, 1<<16)
	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}, {"d", "4"}} {
		require.NoError(t, wr.Insert(0, []byte(kv[0]), []byte(kv[1])))
	}
	require.Equal(t, 4, r.Len())
	require.False(t, r.IsEmpty())

	var seen []string
	r.Range(orderedwal.IncludedBound([]byte("b")), orderedwal.ExcludedBound([]byte("d")), func(e orderedwal.Entry) bool {
		seen = append(seen, string(e.Key))
		return true
	})
	require.Equal(t, []string{"b", "c"}, seen)
}

func TestModeMismatchOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.dat")
	opts := orderedwal.DefaultOptions().WithCapacity(1 << 16).WithFile(path)

	w, err := orderedwal.Open(opts)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = orderedwal.Open(opts.WithMVCC(true))
	require.Error(t, err)
	require.True(t, orderedwal.Is(err, orderedwal.KindModeMismatch))
}

func TestKeyTooLargeRejected(t *testing.T) {
	_, wr, _ := openUnique(t, 1<<16)
	bigKey := make([]byte, 1<<17)
	err := wr.Insert(0, bigKey, []byte("v"))
	require.Error(t, err)
	require.True(t, orderedwal.Is(err, orderedwal.KindKeyTooLarge))
}

// IterAt must collapse a multi-version key to its newest version at or
// below the query version, not its oldest.
func TestIterAtPicksNewestVersion(t *testing.T) {
	_, wr, r := openMVCC(t, 1<<20)
	require.NoError(t, wr.Insert(1, []byte("a"), []byte("a1")))
	require.NoError(t, wr.Insert(3, []byte("a"), []byte("a3")))

	var seen []string
	r.IterAt(3, func(e orderedwal.Entry) bool {
		seen = append(seen, string(e.Key)+"="+string(e.Value))
		return true
	})
	require.Equal(t, []string{"a=a3"}, seen)
}

func TestIterAllPointsYieldsEveryVersion(t *testing.T) {
	_, wr, r := openMVCC(t, 1<<20)
	require.NoError(t, wr.Insert(1, []byte("a"), []byte("a1")))
	require.NoError(t, wr.Insert(3, []byte("a"), []byte("a3")))
	require.NoError(t, wr.Delete(5, []byte("a")))
	require.NoError(t, wr.Insert(2, []byte("b"), []byte("b2")))

	var seen []string
	r.IterAllPoints(5, func(e orderedwal.RawEntry) bool {
		entry := string(e.Key) + "@" + string(rune('0'+e.Version))
		if e.Removed {
			entry += "(removed)"
		} else {
			entry += "=" + string(e.Value)
		}
		seen = append(seen, entry)
		return true
	})
	require.Equal(t, []string{"a@1=a1", "a@3=a3", "a@5(removed)", "b@2=b2"}, seen)
}

func TestLowerUpperBound(t *testing.T) {
	_, wr, r := openUnique(t, 1<<16)
	for _, kv := range [][2]string{{"a", "1"}, {"c", "3"}, {"e", "5"}} {
		require.NoError(t, wr.Insert(0, []byte(kv[0]), []byte(kv[1])))
	}

	e, ok := r.LowerBound([]byte("c"))
	require.True(t, ok)
	require.Equal(t, "c", string(e.Key))

	e, ok = r.LowerBound([]byte("d"))
	require.True(t, ok)
	require.Equal(t, "e", string(e.Key))

	e, ok = r.UpperBound([]byte("c"))
	require.True(t, ok)
	require.Equal(t, "e", string(e.Key))

	_, ok = r.UpperBound([]byte("e"))
	require.False(t, ok)

	_, ok = r.LowerBound([]byte("z"))
	require.False(t, ok)
}
