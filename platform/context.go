package platform

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/devurandom/clruntime/cltypes"
)

// Context is the execution context of one unit of work: a fixed, non-empty
// set of devices, the normalized property descriptor, the SVM-capable device
// subset in allocation order, the host-allocation delegate and the
// per-device queue registry.
//
// A Context is created with NewContext and torn down with Destroy.
// Construction and destruction must not race with any other operation on
// the same context; every other exported method is safe for concurrent use.
type Context struct {
	id         uuid.UUID
	devices    []Device
	svmDevices []Device
	properties *ContextProperties
	raw        []uintptr // owned copy of the caller's property list

	customHostAllocDevice Device
	glenv                 *glEnvironment

	// allocMu serializes the cross-device allocation sequence of the SVM
	// allocator. Membership of svmDevices is fixed after construction, so
	// the lock only orders device-level allocate/free calls.
	allocMu sync.Mutex

	queuesMu     sync.Mutex
	deviceQueues map[Device]*deviceQueueInfo

	destroyed bool
}

// NewContext builds an execution context over the given devices, validating
// and normalizing the optional tagged property list.
//
// Validation happens before any device is retained: an invalid property
// list leaves the devices untouched. On success every device has been
// retained, the SVM-capable subset ordered, the raw property list copied,
// and any requested external-device binding performed. Any finalization
// failure releases everything already acquired before returning.
func NewContext(devices []Device, props []uintptr) (*Context, error) {
	if len(devices) == 0 {
		return nil, errors.New("NewContext: at least one device is required")
	}
	info, err := ValidateProperties(props)
	if err != nil {
		return nil, err
	}

	c := &Context{
		id:           uuid.New(),
		devices:      slices.Clone(devices),
		properties:   info,
		deviceQueues: make(map[Device]*deviceQueueInfo),
	}
	for _, dev := range c.devices {
		dev.Retain()
		if c.customHostAllocDevice == nil && dev.CustomHostAllocator() {
			c.customHostAllocDevice = dev
		}
		if dev.SVMSupport() {
			c.svmDevices = append(c.svmDevices, dev)
		}
	}
	orderSVMDevices(c.svmDevices)

	if err := c.finalize(props); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

// orderSVMDevices applies the allocation-order policy: if the first
// SVM-capable device is fine-grained-system capable under atomics semantics
// and another member is not, the incapable member is moved to the front.
// The least-capable device is the one most likely to reject an allocation,
// so it must be attempted before resources are committed on the others.
func orderSVMDevices(devs []Device) {
	if len(devs) < 2 || !devs[0].IsFineGrainedSystem(true) {
		return
	}
	for i, dev := range devs {
		if !dev.IsFineGrainedSystem(true) {
			devs[0], devs[i] = devs[i], devs[0]
			return
		}
	}
}

// finalize copies the raw property list, binds external devices when
// requested and brings up the GL interop environment.
func (c *Context) finalize(props []uintptr) error {
	if props != nil {
		words := int(c.properties.sizeConsumed / propertyWordSize)
		c.raw = slices.Clone(props[:words])
	}

	if !c.properties.flags.HasAny(cltypes.ExternalDevices) {
		return nil
	}
	if err := c.bindExternalDevices(); err != nil {
		return err
	}
	if c.properties.flags.HasAny(cltypes.GLDevice) {
		env, err := newGLEnvironment(c.properties)
		if err != nil {
			return errors.WithMessagef(err, "context %s", c.id)
		}
		c.glenv = env
	}
	return nil
}

// Destroy tears the context down: every device is unbound from external
// devices actually recorded in the descriptor, notified of the destruction
// and released, in that order, then the owned property copy and the GL
// environment are dropped. Unbind failures never stop the teardown.
func (c *Context) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true

	const validateOnly = false
	unbindKinds := c.properties.flags & (cltypes.GLDevice | cltypes.D3D10Device | cltypes.D3D11Device)
	for _, dev := range c.devices {
		if unbindKinds != 0 {
			// Best effort: teardown proceeds whatever the device reports.
			dev.UnbindExternalDevice(c.properties.flags, &c.properties.handles, validateOnly)
		}
		dev.ContextDestroy()
		dev.Release()
	}

	c.raw = nil
	if c.glenv != nil {
		c.glenv.destroy()
		c.glenv = nil
	}
}

// ID returns the context's unique identity, used in logs.
func (c *Context) ID() uuid.UUID {
	return c.id
}

// String implements fmt.Stringer.
func (c *Context) String() string {
	return fmt.Sprintf("Context[%s, %d devices, %d SVM-capable]", c.id, len(c.devices), len(c.svmDevices))
}

// Devices returns the devices of the context in input order. The slice is
// owned by the context, don't change it.
func (c *Context) Devices() []Device {
	return c.devices
}

// SVMDevices returns the SVM-capable subset in allocation order. The slice
// is owned by the context, don't change it.
func (c *Context) SVMDevices() []Device {
	return c.svmDevices
}

// Properties returns the normalized property descriptor.
func (c *Context) Properties() *ContextProperties {
	return c.properties
}

// RawProperties returns the context's owned copy of the caller-supplied
// property list, terminator included, or nil if none was supplied.
func (c *Context) RawProperties() []uintptr {
	return c.raw
}

// HostAllocDevice returns the host-allocation delegate, or nil when host
// allocations use the generic aligned allocator.
func (c *Context) HostAllocDevice() Device {
	return c.customHostAllocDevice
}

// ContainsDevice reports whether dev is one of the context's devices.
// Devices are compared by identity, never by value.
func (c *Context) ContainsDevice(dev Device) bool {
	for _, d := range c.devices {
		if d == dev {
			return true
		}
	}
	return false
}
