package platform

import (
	"unsafe"

	"k8s.io/klog/v2"

	"github.com/devurandom/clruntime/cltypes"
)

// SVMAlloc performs a mirrored shared-virtual-memory allocation across the
// context's SVM-capable devices: the first visited device establishes the
// virtual address and every following device mirrors it, so the returned
// pointer is valid on all of them.
//
// If originDev is non-nil it is offered the allocation first, before the
// ordered subset, unless it requests platform atomics it cannot honor; a
// rejection by originDev aborts the call without visiting any other device.
// Devices in the ordered subset that cannot honor a requested MemSVMAtomics
// are skipped, not failed.
//
// A nil return means either that no SVM-capable device exists (not an
// error) or that a visited device rejected the allocation. On a rejection
// the address is freed again on every device that had already mirrored it,
// so no device is left holding a mapping the caller cannot free.
func (c *Context) SVMAlloc(size, alignment uintptr, flags cltypes.SVMMemFlags, originDev Device) unsafe.Pointer {
	if len(c.svmDevices) == 0 {
		return nil
	}

	c.allocMu.Lock()
	defer c.allocMu.Unlock()

	var ptr unsafe.Pointer
	var holders []Device

	if originDev != nil {
		if flags&cltypes.MemSVMAtomics == 0 || originDev.Info().SVMCapabilities.Has(cltypes.SVMAtomics) {
			ptr = originDev.SVMAlloc(c, size, alignment, flags, nil)
			if ptr == nil {
				return nil
			}
			holders = append(holders, originDev)
		}
	}

	for _, dev := range c.svmDevices {
		if dev == originDev {
			continue
		}
		// Skip devices that cannot honor platform atomics when requested.
		if flags&cltypes.MemSVMAtomics != 0 && !dev.Info().SVMCapabilities.Has(cltypes.SVMAtomics) {
			continue
		}
		next := dev.SVMAlloc(c, size, alignment, flags, ptr)
		if next == nil {
			if len(holders) > 0 {
				klog.V(1).Infof("context %s: SVM allocation of %d bytes rejected after %d devices, rolling back", c.id, size, len(holders))
				for _, holder := range holders {
					holder.SVMFree(ptr)
				}
			}
			return nil
		}
		ptr = next
		holders = append(holders, dev)
	}
	return ptr
}

// SVMFree releases ptr across the whole SVM-capable subset. Devices that
// never held a mapping of ptr no-op by collaborator contract.
func (c *Context) SVMFree(ptr unsafe.Pointer) {
	c.allocMu.Lock()
	defer c.allocMu.Unlock()
	for _, dev := range c.svmDevices {
		dev.SVMFree(ptr)
	}
}
