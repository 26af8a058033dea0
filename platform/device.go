package platform

import (
	"unsafe"

	"github.com/devurandom/clruntime/cltypes"
)

// Device is the collaborator interface the execution context consumes. The
// actual device objects live in the device registry of the embedding
// runtime; the context only retains/releases them and calls into their
// allocation and interop entry points.
//
// Devices are compared by interface identity: the same device must be
// represented by the same value everywhere (see Context.ContainsDevice).
//
// All calls are synchronous and may block the calling goroutine; no timeout
// or cancellation is defined at this layer.
type Device interface {
	// Retain and Release adjust the device's reference count. The context
	// retains every device at construction and releases it at destruction,
	// never earlier.
	Retain()
	Release()

	// SVMSupport reports whether the device can participate in shared
	// virtual memory allocations.
	SVMSupport() bool

	// IsFineGrainedSystem reports whether the device is fine-grained-system
	// capable, optionally under platform-atomics semantics.
	IsFineGrainedSystem(forAtomics bool) bool

	// CustomHostAllocator reports whether the device provides its own host
	// allocator. The first device advertising one becomes the context's
	// host-allocation delegate.
	CustomHostAllocator() bool

	// HostAlloc and HostFree are the device's custom host allocator. They
	// are only called on the host-allocation delegate.
	HostAlloc(size, alignment uintptr, segment cltypes.MemorySegment) unsafe.Pointer
	HostFree(ptr unsafe.Pointer)

	// SVMAlloc allocates (existing == nil) or mirrors (existing != nil) a
	// shared-virtual-memory range. Mirrored allocations return the same
	// address passed in as existing. A nil return means the device rejected
	// the allocation.
	SVMAlloc(ctx *Context, size, alignment uintptr, flags cltypes.SVMMemFlags, existing unsafe.Pointer) unsafe.Pointer

	// SVMFree releases the device's mapping of ptr. Devices that never
	// allocated ptr must treat the call as a no-op.
	SVMFree(ptr unsafe.Pointer)

	// BindExternalDevice associates the device with the external
	// graphics devices recorded in handles; UnbindExternalDevice undoes it.
	// Both report success.
	BindExternalDevice(flags cltypes.ContextFlags, handles *InteropHandles, validateOnly bool) bool
	UnbindExternalDevice(flags cltypes.ContextFlags, handles *InteropHandles, validateOnly bool) bool

	// ContextDestroy notifies the device that a context it belonged to is
	// being destroyed.
	ContextDestroy()

	// Info returns the device's capability descriptor. The returned value
	// is owned by the device and must not change for the lifetime of a
	// context that holds it.
	Info() *DeviceInfo
}

// DeviceInfo is the subset of the device capability descriptor the context
// consumes.
type DeviceInfo struct {
	// SVMCapabilities are the device's shared-virtual-memory capability
	// bits.
	SVMCapabilities cltypes.SVMCapabilities

	// MaxOnDeviceQueues bounds how many on-device queues can exist for this
	// device in one context.
	MaxOnDeviceQueues int
}

// DeviceQueue is an opaque handle to an on-device command queue. The context
// only counts queues and remembers which one is the default; handles are
// compared by identity and must therefore be comparable values (pointers in
// practice).
type DeviceQueue any
