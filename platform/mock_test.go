package platform

// In-package mock of the Device collaborator used by the tests of this
// package.

import (
	"sync"
	"unsafe"

	"github.com/devurandom/clruntime/cltypes"
)

// svmTestArena backs the addresses mock devices hand out for fresh SVM
// allocations.
var svmTestArena [8192]byte

func testSVMAddr() unsafe.Pointer {
	return unsafe.Pointer(&svmTestArena[0])
}

// visitRecorder records the order in which devices were visited by an
// operation spanning several devices.
type visitRecorder struct {
	mu    sync.Mutex
	names []string
}

func (r *visitRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *visitRecorder) visited() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

type svmCall struct {
	size, alignment uintptr
	flags           cltypes.SVMMemFlags
	existing        unsafe.Pointer
}

type mockDevice struct {
	name string

	svm         bool
	fineGrained bool
	customHost  bool
	info        DeviceInfo

	failSVM  bool
	failBind bool

	recorder *visitRecorder

	mu         sync.Mutex
	retains    int
	releases   int
	destroyed  int
	binds      int
	unbinds    int
	svmCalls   []svmCall
	svmFrees   []unsafe.Pointer
	hostAllocs []cltypes.MemorySegment
	hostFrees  []unsafe.Pointer
	hostBuf    [256]byte
}

var _ Device = (*mockDevice)(nil)

func (d *mockDevice) Retain() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.retains++
}

func (d *mockDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releases++
}

func (d *mockDevice) SVMSupport() bool { return d.svm }

func (d *mockDevice) IsFineGrainedSystem(bool) bool { return d.fineGrained }

func (d *mockDevice) CustomHostAllocator() bool { return d.customHost }

func (d *mockDevice) HostAlloc(size, alignment uintptr, segment cltypes.MemorySegment) unsafe.Pointer {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hostAllocs = append(d.hostAllocs, segment)
	return unsafe.Pointer(&d.hostBuf[0])
}

func (d *mockDevice) HostFree(ptr unsafe.Pointer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hostFrees = append(d.hostFrees, ptr)
}

func (d *mockDevice) SVMAlloc(_ *Context, size, alignment uintptr, flags cltypes.SVMMemFlags, existing unsafe.Pointer) unsafe.Pointer {
	d.mu.Lock()
	d.svmCalls = append(d.svmCalls, svmCall{size: size, alignment: alignment, flags: flags, existing: existing})
	d.mu.Unlock()
	if d.recorder != nil {
		d.recorder.record(d.name)
	}
	if d.failSVM {
		return nil
	}
	if existing != nil {
		// Mirror: same virtual address on every device.
		return existing
	}
	return testSVMAddr()
}

func (d *mockDevice) SVMFree(ptr unsafe.Pointer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.svmFrees = append(d.svmFrees, ptr)
}

func (d *mockDevice) BindExternalDevice(cltypes.ContextFlags, *InteropHandles, bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.binds++
	return !d.failBind
}

func (d *mockDevice) UnbindExternalDevice(cltypes.ContextFlags, *InteropHandles, bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unbinds++
	return true
}

func (d *mockDevice) ContextDestroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed++
}

func (d *mockDevice) Info() *DeviceInfo { return &d.info }
