package arena_test

import (
	"testing"

	"github.com/orderedwal/orderedwal/arena"
)

type testHeader struct {
	Magic   uint32
	Version uint16
}

func TestHeaderAs(t *testing.T) {
	a, err := arena.New(arena.Heap, 32, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	hdr := arena.HeaderAs[testHeader](a.ReservedSlice())
	hdr.Magic = 0xdeadbeef
	hdr.Version = 7

	again := arena.HeaderAs[testHeader](a.ReservedSlice())
	if again.Magic != 0xdeadbeef || again.Version != 7 {
		t.Fatalf("HeaderAs did not alias the reserved bytes: %+v", again)
	}
}

func TestHeaderAsPanicsOnUndersizedRegion(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for undersized region")
		}
	}()
	arena.HeaderAs[testHeader]([]byte{1, 2, 3})
}
