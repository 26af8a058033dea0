package platform

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/devurandom/clruntime/cltypes"
)

// Aggregate binding failures, classified by the interop kind that was
// requested. One error per context, not per device; GL takes priority when
// several kinds were requested.
var (
	ErrD3D10Binding = errors.New("D3D10 device binding failed")
	ErrD3D11Binding = errors.New("D3D11 device binding failed")
	ErrD3D9Binding  = errors.New("D3D9 adapter binding failed")
)

// bindExternalDevices attempts to associate every device of the context
// with the external devices recorded in the descriptor. Binding is best
// effort per device: every device is attempted even after a failure, and
// the aggregate error is classified afterwards by requested kind.
func (c *Context) bindExternalDevices() error {
	const validateOnly = false
	flags := c.properties.flags
	failed := false
	for _, dev := range c.devices {
		if !dev.BindExternalDevice(flags, &c.properties.handles, validateOnly) {
			klog.Errorf("context %s: external device binding (%s) failed on a device", c.id, flags)
			failed = true
		}
	}
	if !failed {
		return nil
	}
	switch {
	case flags.HasAny(cltypes.GLDevice):
		return errors.Wrapf(ErrInvalidGLShareGroup, "context %s", c.id)
	case flags.HasAny(cltypes.D3D10Device):
		return errors.Wrapf(ErrD3D10Binding, "context %s", c.id)
	case flags.HasAny(cltypes.D3D11Device):
		return errors.Wrapf(ErrD3D11Binding, "context %s", c.id)
	default:
		return errors.Wrapf(ErrD3D9Binding, "context %s", c.id)
	}
}
