// Package cltypes defines the shared vocabulary of the runtime: context
// property tags, context flags, SVM capability bits and SVM memory flags.
//
// It is a leaf package, imported by every other package of the runtime, so
// it must not depend on anything but the standard library.
package cltypes

import (
	"fmt"
	"strings"
)

// PropertyTag identifies one entry of the tagged property list passed at
// context creation. The numeric values follow the OpenCL headers, so raw
// property lists produced by an OpenCL front end can be handed over as-is.
type PropertyTag uintptr

const (
	PropertyPlatform        PropertyTag = 0x1084
	PropertyInteropUserSync PropertyTag = 0x1085
	PropertyGLContext       PropertyTag = 0x2008
	PropertyEGLDisplay      PropertyTag = 0x2009
	PropertyGLXDisplay      PropertyTag = 0x200A
	PropertyWGLHDC          PropertyTag = 0x200B
	PropertyCGLShareGroup   PropertyTag = 0x200C
	PropertyD3D9Adapter     PropertyTag = 0x2025
	PropertyD3D9EXAdapter   PropertyTag = 0x2026
	PropertyDXVAAdapter     PropertyTag = 0x2027
	PropertyD3D10Device     PropertyTag = 0x4014
	PropertyD3D11Device     PropertyTag = 0x401D
	PropertyOfflineDevices  PropertyTag = 0x403F
)

var propertyTagNames = map[PropertyTag]string{
	PropertyPlatform:        "Platform",
	PropertyInteropUserSync: "InteropUserSync",
	PropertyGLContext:       "GLContext",
	PropertyEGLDisplay:      "EGLDisplay",
	PropertyGLXDisplay:      "GLXDisplay",
	PropertyWGLHDC:          "WGLHDC",
	PropertyCGLShareGroup:   "CGLShareGroup",
	PropertyD3D9Adapter:     "D3D9Adapter",
	PropertyD3D9EXAdapter:   "D3D9EXAdapter",
	PropertyDXVAAdapter:     "DXVAAdapter",
	PropertyD3D10Device:     "D3D10Device",
	PropertyD3D11Device:     "D3D11Device",
	PropertyOfflineDevices:  "OfflineDevices",
}

// String implements fmt.Stringer.
func (t PropertyTag) String() string {
	if name, ok := propertyTagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PropertyTag(%#x)", uintptr(t))
}

// ContextFlags is the presence index of the normalized property descriptor:
// one bit per recognized interop/control kind.
type ContextFlags uint32

const (
	InteropUserSync ContextFlags = 1 << iota
	GLDevice
	EGLDevice
	D3D10Device
	D3D11Device
	D3D9Device
	D3D9EXDevice
	DXVADevice
	OfflineDevices
)

// ExternalDevices is the mask of every external-device kind a context can be
// associated with.
const ExternalDevices = GLDevice | EGLDevice | D3D10Device | D3D11Device |
	D3D9Device | D3D9EXDevice | DXVADevice

var contextFlagNames = []struct {
	flag ContextFlags
	name string
}{
	{InteropUserSync, "InteropUserSync"},
	{GLDevice, "GLDevice"},
	{EGLDevice, "EGLDevice"},
	{D3D10Device, "D3D10Device"},
	{D3D11Device, "D3D11Device"},
	{D3D9Device, "D3D9Device"},
	{D3D9EXDevice, "D3D9EXDevice"},
	{DXVADevice, "DXVADevice"},
	{OfflineDevices, "OfflineDevices"},
}

// HasAny reports whether any bit of mask is set in f.
func (f ContextFlags) HasAny(mask ContextFlags) bool {
	return f&mask != 0
}

// String implements fmt.Stringer. Multiple flags are joined with "|".
func (f ContextFlags) String() string {
	if f == 0 {
		return "None"
	}
	var parts []string
	rest := f
	for _, entry := range contextFlagNames {
		if f&entry.flag != 0 {
			parts = append(parts, entry.name)
			rest &^= entry.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// SVMCapabilities is the per-device shared-virtual-memory capability bitset
// reported in the device descriptor.
type SVMCapabilities uint32

const (
	SVMCoarseGrainBuffer SVMCapabilities = 1 << iota
	SVMFineGrainBuffer
	SVMFineGrainSystem
	SVMAtomics
)

// Has reports whether every bit of mask is set in c.
func (c SVMCapabilities) Has(mask SVMCapabilities) bool {
	return c&mask == mask
}

var svmCapabilityNames = []struct {
	cap  SVMCapabilities
	name string
}{
	{SVMCoarseGrainBuffer, "CoarseGrainBuffer"},
	{SVMFineGrainBuffer, "FineGrainBuffer"},
	{SVMFineGrainSystem, "FineGrainSystem"},
	{SVMAtomics, "Atomics"},
}

// String implements fmt.Stringer.
func (c SVMCapabilities) String() string {
	if c == 0 {
		return "None"
	}
	var parts []string
	for _, entry := range svmCapabilityNames {
		if c&entry.cap != 0 {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, "|")
}

// SVMMemFlags selects the semantics of one SVM allocation. The low bits
// mirror the generic memory-access flags, the SVM-specific bits start at 10
// as in the OpenCL headers.
type SVMMemFlags uint32

const (
	MemReadWrite SVMMemFlags = 1 << 0
	MemWriteOnly SVMMemFlags = 1 << 1
	MemReadOnly  SVMMemFlags = 1 << 2

	MemSVMFineGrainBuffer SVMMemFlags = 1 << 10
	MemSVMAtomics         SVMMemFlags = 1 << 11
)

var svmMemFlagNames = []struct {
	flag SVMMemFlags
	name string
}{
	{MemReadWrite, "ReadWrite"},
	{MemWriteOnly, "WriteOnly"},
	{MemReadOnly, "ReadOnly"},
	{MemSVMFineGrainBuffer, "SVMFineGrainBuffer"},
	{MemSVMAtomics, "SVMAtomics"},
}

// String implements fmt.Stringer.
func (f SVMMemFlags) String() string {
	if f == 0 {
		return "None"
	}
	var parts []string
	for _, entry := range svmMemFlagNames {
		if f&entry.flag != 0 {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, "|")
}

// MemorySegment is the atomics-capability tag passed to a device's custom
// host allocator.
type MemorySegment int

const (
	SegmentNoAtomics MemorySegment = iota
	SegmentAtomics
)

// String implements fmt.Stringer.
func (s MemorySegment) String() string {
	switch s {
	case SegmentNoAtomics:
		return "NoAtomics"
	case SegmentAtomics:
		return "Atomics"
	}
	return fmt.Sprintf("MemorySegment(%d)", int(s))
}
