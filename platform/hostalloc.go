package platform

// This file holds the host-allocation path of the context: delegation to a
// device's custom host allocator when one exists, and a generic aligned
// allocator otherwise.

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/devurandom/clruntime/cltypes"
)

// BufferAlignment is the default alignment for host allocations shared with
// devices.
const BufferAlignment = 64

// HostAlloc allocates host memory visible to the context's devices. When a
// device advertising a custom host allocator was present at construction,
// the allocation is delegated to it (the first such device, in input
// order); otherwise the generic aligned allocator is used. The atomics flag
// is translated to the allocator's memory-segment tag.
func (c *Context) HostAlloc(size, alignment uintptr, atomics bool) unsafe.Pointer {
	if c.customHostAllocDevice != nil {
		segment := cltypes.SegmentNoAtomics
		if atomics {
			segment = cltypes.SegmentAtomics
		}
		return c.customHostAllocDevice.HostAlloc(size, alignment, segment)
	}
	return AlignedAlloc(size, alignment)
}

// HostFree releases memory obtained from HostAlloc. The delegate is fixed
// at construction, so the free always dispatches to the implementation that
// produced the pointer.
func (c *Context) HostFree(ptr unsafe.Pointer) {
	if c.customHostAllocDevice != nil {
		c.customHostAllocDevice.HostFree(ptr)
		return
	}
	AlignedFree(ptr)
}

var (
	alignedMu     sync.Mutex
	alignedAllocs = make(map[uintptr][]byte)
)

// AlignedAlloc allocates size bytes aligned to the given alignment, which
// must be a positive multiple of 8. The allocation is zero-filled and must
// be freed with AlignedFree.
//
// It over-allocates by one alignment unit and returns the first aligned
// address; the backing array stays registered (and so reachable) until the
// matching AlignedFree.
func AlignedAlloc(size, alignment uintptr) unsafe.Pointer {
	if alignment < 8 || alignment%8 != 0 {
		panic(fmt.Sprintf("AlignedAlloc: alignment must be a multiple of 8, got %d", alignment))
	}

	buf := make([]byte, size+alignment)
	base := unsafe.Pointer(unsafe.SliceData(buf))
	var pad uintptr
	if off := uintptr(base) % alignment; off != 0 {
		pad = alignment - off
	}
	aligned := unsafe.Add(base, pad)

	alignedMu.Lock()
	alignedAllocs[uintptr(aligned)] = buf
	alignedMu.Unlock()
	return aligned
}

// AlignedFree frees an allocation created with AlignedAlloc. Freeing nil is
// a no-op; freeing a pointer AlignedAlloc never returned panics.
func AlignedFree(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	alignedMu.Lock()
	_, ok := alignedAllocs[uintptr(ptr)]
	delete(alignedAllocs, uintptr(ptr))
	alignedMu.Unlock()
	if !ok {
		panic(fmt.Sprintf("AlignedFree: pointer %#x was not returned by AlignedAlloc", uintptr(ptr)))
	}
}
