package orderedwal

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the errors the WAL returns, mirroring spec.md §7.
type Kind int

const (
	// KindIO wraps a failure from the arena's underlying mmap/flush/open.
	KindIO Kind = iota
	// KindMagicMismatch means the file's magic_text doesn't match.
	KindMagicMismatch
	// KindMagicVersionMismatch means magic_text matched but magic_version didn't.
	KindMagicVersionMismatch
	// KindModeMismatch means a unique WAL was opened as MVCC or vice versa.
	KindModeMismatch
	// KindCorrupted means a checksum failed inside the committed range.
	KindCorrupted
	// KindKeyTooLarge means a key exceeded MaxKeySize.
	KindKeyTooLarge
	// KindValueTooLarge means a value exceeded MaxValueSize.
	KindValueTooLarge
	// KindInsufficientSpace means the arena has no room for the record.
	KindInsufficientSpace
	// KindReadOnly means a write was attempted through a read-only handle.
	KindReadOnly
	// KindUserEncode wraps an error from a caller-supplied encode closure.
	KindUserEncode
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindMagicMismatch:
		return "magic mismatch"
	case KindMagicVersionMismatch:
		return "magic version mismatch"
	case KindModeMismatch:
		return "mode mismatch"
	case KindCorrupted:
		return "corrupted"
	case KindKeyTooLarge:
		return "key too large"
	case KindValueTooLarge:
		return "value too large"
	case KindInsufficientSpace:
		return "insufficient space"
	case KindReadOnly:
		return "read only"
	case KindUserEncode:
		return "user encode"
	default:
		return "unknown"
	}
}

// Error is the WAL's structured error type: a Kind plus whatever detail and
// wrapped cause explain it. The arena-level I/O path wraps its cause with
// github.com/pkg/errors so a stack trace survives up to the caller,
// matching the teacher pack's grailbio-bio convention; a Corrupted error
// carries the record's offset and no cause.
type Error struct {
	Kind   Kind
	Offset int64 // -1 when not applicable
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s (offset %d)", msg, e.Offset)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Offset: -1, Detail: detail}
}

func newErrAt(kind Kind, offset int64, detail string) *Error {
	return &Error{Kind: kind, Offset: offset, Detail: detail}
}

func wrapIO(cause error, detail string) *Error {
	return &Error{Kind: KindIO, Offset: -1, Detail: detail, Cause: errors.WithStack(cause)}
}

// Is reports whether err is an *Error of the given Kind, walking Cause
// chains the same way errors.Is does for plain wrapping.
func Is(err error, kind Kind) bool {
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Kind == kind
	}
	return false
}
