// Package platform implements the multi-device execution context of the
// runtime: it owns the set of participating devices for a unit of work,
// coordinates shared virtual memory visible across all of them, and mediates
// the association with external graphics devices.
package platform

import "unsafe"

// platformAnchor gives the process's single platform a stable, nonzero
// identity for the lifetime of the process.
var platformAnchor byte

// PlatformID returns the identity handle of the process's single platform.
// A PropertyPlatform entry in a property list must carry this value (or
// zero) to be accepted.
func PlatformID() uintptr {
	return uintptr(unsafe.Pointer(&platformAnchor))
}
