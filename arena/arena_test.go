package arena_test

import (
	"path/filepath"
	"testing"

	"github.com/orderedwal/orderedwal/arena"
)

func TestReserveAdvancesCursorAndPanicsOnOverflow(t *testing.T) {
	a, err := arena.New(arena.Heap, 64, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if got := a.Remaining(); got != 56 {
		t.Fatalf("Remaining() = %d, want 56", got)
	}
	off := a.Reserve(10)
	if off != 8 {
		t.Fatalf("Reserve offset = %d, want 8", off)
	}
	if got := a.Allocated(); got != 18 {
		t.Fatalf("Allocated() = %d, want 18", got)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected Reserve to panic when exceeding capacity")
		}
	}()
	a.Reserve(1000)
}

func TestBytesRoundTrip(t *testing.T) {
	a, err := arena.New(arena.Heap, 32, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	off := a.Reserve(5)
	copy(a.Bytes(off, 5), []byte("hello"))
	if got := string(a.Bytes(off, 5)); got != "hello" {
		t.Fatalf("Bytes() = %q, want %q", got, "hello")
	}
}

func TestRewindDiscardsTail(t *testing.T) {
	a, err := arena.New(arena.Heap, 32, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	a.Reserve(10)
	mid := a.Allocated()
	a.Reserve(10)
	a.Rewind(mid)
	if got := a.Allocated(); got != mid {
		t.Fatalf("Allocated() after Rewind = %d, want %d", got, mid)
	}
	if got := a.Remaining(); got != 32-mid {
		t.Fatalf("Remaining() after Rewind = %d, want %d", got, 32-mid)
	}
}

func TestFileBackingSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.dat")

	a, err := arena.OpenFile(path, 64, 8, true, false)
	if err != nil {
		t.Fatal(err)
	}
	off := a.Reserve(4)
	copy(a.Bytes(off, 4), []byte("ABCD"))
	if err := a.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := arena.OpenFile(path, 64, 8, true, false)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if got := string(reopened.Bytes(off, 4)); got != "ABCD" {
		t.Fatalf("reopened Bytes() = %q, want %q", got, "ABCD")
	}
}

func TestReadOnlyRejectsReserve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.dat")
	a, err := arena.OpenFile(path, 16, 0, false, false)
	if err != nil {
		t.Fatal(err)
	}
	a.Close()

	ro, err := arena.OpenFile(path, 16, 0, false, true)
	if err != nil {
		t.Fatal(err)
	}
	defer ro.Close()
	if !ro.ReadOnly() {
		t.Fatal("expected ReadOnly() to be true")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected Reserve to panic on a read-only arena")
		}
	}()
	ro.Reserve(1)
}

func TestOwns(t *testing.T) {
	a, err := arena.New(arena.Heap, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	a.Reserve(4)
	if !a.Owns(a.BasePtr()) {
		t.Fatal("expected Owns(BasePtr()) to be true")
	}

	other, err := arena.New(arena.Heap, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()
	if a.Owns(other.BasePtr()) {
		t.Fatal("expected Owns to reject a pointer from a different arena")
	}
}
