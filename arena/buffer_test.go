package arena_test

import (
	"testing"

	"github.com/orderedwal/orderedwal/arena"
)

func TestVacantBufferAppend(t *testing.T) {
	b := arena.NewVacantBuffer()
	b.AppendString("hello ")
	b.Append([]byte("world"))
	b.AppendByte('!')

	if got := string(b.Bytes()); got != "hello world!" {
		t.Fatalf("Bytes() = %q", got)
	}
	if got := b.Len(); got != len("hello world!") {
		t.Fatalf("Len() = %d", got)
	}

	b.Reset()
	if got := b.Len(); got != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", got)
	}
	b.AppendString("reused")
	if got := string(b.Bytes()); got != "reused" {
		t.Fatalf("Bytes() after reuse = %q", got)
	}
}
