package orderedwal

import (
	"sync/atomic"
	"unsafe"
)

// wordPtr returns a pointer to the first 4 bytes of b, for the one in-place
// mutation the format allows: flipping the COMMITTED bit (spec §5).
func wordPtr(b []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b))
}

func atomicOr32(addr *uint32, bits uint32) {
	for {
		old := atomic.LoadUint32(addr)
		if old&bits == bits {
			return
		}
		if atomic.CompareAndSwapUint32(addr, old, old|bits) {
			return
		}
	}
}

func atomicLoad32(addr *uint32) uint32 {
	return atomic.LoadUint32(addr)
}
