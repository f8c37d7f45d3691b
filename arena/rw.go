package arena

import "io"

// Cursor provides sequential, allocation-free reads over an arena byte
// range.
type Cursor struct {
	buffer []byte
	offset int
}

// NewCursor wraps data for sequential reading starting at offset 0 of data
// (data is typically a.Bytes(a.HeaderLen(), a.Allocated()-a.HeaderLen())).
func NewCursor(data []byte) *Cursor {
	return &Cursor{buffer: data}
}

// Read reads up to len(p) bytes into p.
func (r *Cursor) Read(p []byte) (n int, err error) {
	if r.offset >= len(r.buffer) {
		return 0, io.EOF
	}
	n = copy(p, r.buffer[r.offset:])
	r.offset += n
	return n, nil
}

// ReadByte reads a single byte, advancing the cursor.
func (r *Cursor) ReadByte() (byte, error) {
	if r.offset >= len(r.buffer) {
		return 0, io.EOF
	}
	b := r.buffer[r.offset]
	r.offset++
	return b, nil
}

// Peek returns the next n bytes without advancing the cursor, or false if
// fewer than n bytes remain.
func (r *Cursor) Peek(n int) ([]byte, bool) {
	if r.offset+n > len(r.buffer) {
		return nil, false
	}
	return r.buffer[r.offset : r.offset+n], true
}

// Advance moves the cursor forward n bytes.
func (r *Cursor) Advance(n int) { r.offset += n }

// Offset returns the current read position.
func (r *Cursor) Offset() int { return r.offset }

// Len returns the number of bytes remaining to be read.
func (r *Cursor) Len() int { return len(r.buffer) - r.offset }

// Size returns the original length of the wrapped buffer.
func (r *Cursor) Size() int { return len(r.buffer) }
