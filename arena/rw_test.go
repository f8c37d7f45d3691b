package arena_test

import (
	"io"
	"testing"

	"github.com/orderedwal/orderedwal/arena"
)

func TestCursorSequentialRead(t *testing.T) {
	c := arena.NewCursor([]byte("hello world"))

	if got, ok := c.Peek(5); !ok || string(got) != "hello" {
		t.Fatalf("Peek(5) = %q, %v", got, ok)
	}
	if got := c.Offset(); got != 0 {
		t.Fatalf("Offset() before Advance = %d", got)
	}
	c.Advance(6)

	buf := make([]byte, 5)
	n, err := c.Read(buf)
	if err != nil || n != 5 || string(buf) != "world" {
		t.Fatalf("Read = %q, %d, %v", buf, n, err)
	}

	if _, err := c.Read(buf); err != io.EOF {
		t.Fatalf("expected io.EOF at end, got %v", err)
	}
}

func TestCursorReadByte(t *testing.T) {
	c := arena.NewCursor([]byte{1, 2, 3})
	for _, want := range []byte{1, 2, 3} {
		b, err := c.ReadByte()
		if err != nil || b != want {
			t.Fatalf("ReadByte() = %d, %v, want %d", b, err, want)
		}
	}
	if _, err := c.ReadByte(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
