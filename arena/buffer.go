package arena

import "unsafe"

// VacantBuffer is a growable scratch buffer on the Go heap, unlike the
// arena itself, reusable across calls via Reset. The WAL writer does not
// use it: its append methods take key and value as byte slices and copy
// them straight into the arena's reservation.
type VacantBuffer struct {
	buf []byte
}

// NewVacantBuffer returns an empty scratch buffer with a small initial
// capacity.
func NewVacantBuffer() *VacantBuffer {
	return &VacantBuffer{buf: make([]byte, 0, 64)}
}

// Len returns the number of bytes written so far.
func (s *VacantBuffer) Len() int { return len(s.buf) }

// Bytes returns the written bytes. The slice is only valid until the next
// Reset or Append call.
func (s *VacantBuffer) Bytes() []byte { return s.buf }

// Append appends bytes, growing the backing slice as needed.
func (s *VacantBuffer) Append(p []byte) {
	s.buf = append(s.buf, p...)
}

// AppendByte appends a single byte.
func (s *VacantBuffer) AppendByte(b byte) {
	s.buf = append(s.buf, b)
}

// AppendString appends a string without an intermediate []byte conversion.
func (s *VacantBuffer) AppendString(str string) {
	s.buf = append(s.buf, unsafe.Slice(unsafe.StringData(str), len(str))...)
}

// Reset clears the buffer, retaining its capacity for reuse.
func (s *VacantBuffer) Reset() {
	s.buf = s.buf[:0]
}
