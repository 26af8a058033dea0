package platform

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/devurandom/clruntime/cltypes"
)

// Errors returned by ValidateProperties and by context finalization.
// Callers classify with errors.Is; the messages carry the offending tag.
var (
	// ErrUnknownProperty reports a tag outside the recognized registry.
	ErrUnknownProperty = errors.New("unknown context property")

	// ErrInvalidValue reports a recognized tag with a malformed value: a
	// null external-device handle, a foreign platform identity, or a wrong
	// sentinel.
	ErrInvalidValue = errors.New("invalid context property value")

	// ErrInvalidGLShareGroup reports a null GL handle or a failed GL
	// binding/initialization.
	ErrInvalidGLShareGroup = errors.New("invalid GL share group reference")

	// ErrNotImplemented reports a tag recognized but not supported on this
	// platform.
	ErrNotImplemented = errors.New("context property not implemented on this platform")
)

// propertyWordSize is the size of one word of the tagged property protocol.
const propertyWordSize = unsafe.Sizeof(uintptr(0))

// InteropHandles carries the external-device handles recorded while
// validating a property list, one typed field per interop kind. The
// ContextFlags bitset of the descriptor is the presence index: a handle
// field is only meaningful when the matching flag is set.
type InteropHandles struct {
	GLDisplay     uintptr
	GLContext     uintptr
	D3D10Device   uintptr
	D3D11Device   uintptr
	D3D9Adapter   uintptr
	D3D9EXAdapter uintptr
	DXVAAdapter   uintptr
}

// ContextProperties is the normalized descriptor produced by
// ValidateProperties.
type ContextProperties struct {
	flags        cltypes.ContextFlags
	handles      InteropHandles
	sizeConsumed uintptr
}

// Flags returns the presence index of the recognized properties.
func (p *ContextProperties) Flags() cltypes.ContextFlags {
	return p.flags
}

// Handles returns the external-device handles recorded during validation.
func (p *ContextProperties) Handles() InteropHandles {
	return p.handles
}

// SizeConsumed returns the exact byte length of the validated property
// list, terminator included. The context's owned copy of the raw list is
// sized from this value, never re-derived from caller memory.
func (p *ContextProperties) SizeConsumed() uintptr {
	return p.sizeConsumed
}

// ValidateProperties parses a tagged property list into a normalized
// descriptor. The list is a sequence of (tag, value) words terminated by a
// zero tag; a nil list is valid and yields a zero descriptor.
//
// Validation is pure: no device is touched, and the input is not retained.
func ValidateProperties(props []uintptr) (*ContextProperties, error) {
	info := &ContextProperties{}
	if props == nil {
		return info, nil
	}

	var count uintptr
	for i := 0; ; i += 2 {
		if i >= len(props) {
			return nil, errors.Wrap(ErrInvalidValue, "property list is not zero-terminated")
		}
		tag := cltypes.PropertyTag(props[i])
		if tag == 0 {
			break
		}
		if i+1 >= len(props) {
			return nil, errors.Wrapf(ErrInvalidValue, "property %s has no value", tag)
		}
		value := props[i+1]

		switch tag {
		case cltypes.PropertyPlatform:
			if value != 0 && value != PlatformID() {
				return nil, errors.Wrapf(ErrInvalidValue, "property %s does not name this platform", tag)
			}

		case cltypes.PropertyInteropUserSync:
			if value == 1 {
				info.flags |= cltypes.InteropUserSync
			}

		case cltypes.PropertyD3D10Device:
			if value == 0 {
				return nil, errors.Wrapf(ErrInvalidValue, "property %s requires a device handle", tag)
			}
			info.handles.D3D10Device = value
			info.flags |= cltypes.D3D10Device

		case cltypes.PropertyD3D11Device:
			if value == 0 {
				return nil, errors.Wrapf(ErrInvalidValue, "property %s requires a device handle", tag)
			}
			info.handles.D3D11Device = value
			info.flags |= cltypes.D3D11Device

		case cltypes.PropertyD3D9Adapter:
			if value == 0 {
				return nil, errors.Wrapf(ErrInvalidValue, "property %s requires an adapter handle", tag)
			}
			info.handles.D3D9Adapter = value
			info.flags |= cltypes.D3D9Device

		case cltypes.PropertyD3D9EXAdapter:
			if value == 0 {
				return nil, errors.Wrapf(ErrInvalidValue, "property %s requires an adapter handle", tag)
			}
			info.handles.D3D9EXAdapter = value
			info.flags |= cltypes.D3D9EXDevice

		case cltypes.PropertyDXVAAdapter:
			if value == 0 {
				return nil, errors.Wrapf(ErrInvalidValue, "property %s requires an adapter handle", tag)
			}
			info.handles.DXVAAdapter = value
			info.flags |= cltypes.DXVADevice

		case cltypes.PropertyEGLDisplay, cltypes.PropertyGLXDisplay, cltypes.PropertyWGLHDC:
			if value == 0 {
				return nil, errors.Wrapf(ErrInvalidGLShareGroup, "property %s requires a display handle", tag)
			}
			info.handles.GLDisplay = value
			info.flags |= cltypes.GLDevice
			if tag == cltypes.PropertyEGLDisplay {
				info.flags |= cltypes.EGLDevice
			}

		case cltypes.PropertyGLContext:
			if value == 0 {
				return nil, errors.Wrapf(ErrInvalidGLShareGroup, "property %s requires a share context", tag)
			}
			info.handles.GLContext = value
			info.flags |= cltypes.GLDevice

		case cltypes.PropertyCGLShareGroup:
			return nil, errors.Wrapf(ErrNotImplemented, "property %s", tag)

		case cltypes.PropertyOfflineDevices:
			if value != 1 {
				return nil, errors.Wrapf(ErrInvalidValue, "property %s requires the literal value 1, got %#x", tag, value)
			}
			info.flags |= cltypes.OfflineDevices

		default:
			return nil, errors.Wrapf(ErrUnknownProperty, "tag %#x", uintptr(tag))
		}
		count++
	}

	info.sizeConsumed = count*2*propertyWordSize + propertyWordSize
	return info, nil
}
