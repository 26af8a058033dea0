package platform

// Process-wide handling of the native GL module. Like plugin loading in a
// dynamic runtime, the module is a singleton: it is loaded once, shared by
// every context that requests GL interop, reference counted, and unloaded
// when the last such context is destroyed.

import (
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/devurandom/clruntime/cltypes"
)

// Native GL module names per platform; the registered loader is expected to
// resolve one of these.
const (
	glNativeModuleLinux   = "libGL.so.1"
	glNativeModuleWindows = "OpenGL32.dll"
)

// GLBridge is the loaded native GL module as the context consumes it:
// initialization against the bound display/share-context handles, and
// teardown.
type GLBridge interface {
	// Init prepares the bridge for the given external display and share
	// context. It reports success; a false return fails context creation.
	Init(display, shareContext uintptr) bool

	// Close releases the bridge. Called once, when the process-wide
	// reference count drops to zero.
	Close()
}

var (
	muGLModule   sync.Mutex
	glModule     GLBridge
	glModuleRefs int
	glLoader     func(egl bool) (GLBridge, error)
)

// RegisterGLBridge installs the process-wide loader for the native GL
// module. The embedding runtime registers a loader that opens the native
// library (libGL.so.1 on Linux, OpenGL32.dll on Windows) and resolves its
// entry points; without one, GL interop requests fail context creation.
func RegisterGLBridge(loader func(egl bool) (GLBridge, error)) {
	muGLModule.Lock()
	defer muGLModule.Unlock()
	glLoader = loader
}

// acquireGLModule returns the process-wide GL module, loading it on first
// use, and increments its reference count. Every successful acquire must be
// paired with a releaseGLModule.
func acquireGLModule(egl bool) (GLBridge, error) {
	muGLModule.Lock()
	defer muGLModule.Unlock()
	if glModule != nil {
		glModuleRefs++
		return glModule, nil
	}
	if glLoader == nil {
		return nil, errors.Errorf("no GL bridge registered: the embedding runtime must load %s (%s on Windows) and call RegisterGLBridge",
			glNativeModuleLinux, glNativeModuleWindows)
	}
	module, err := glLoader(egl)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load the native GL module")
	}
	glModule = module
	glModuleRefs = 1
	klog.V(1).Info("native GL module loaded")
	return module, nil
}

// releaseGLModule drops one reference to the GL module and unloads it when
// the count reaches zero.
func releaseGLModule() {
	muGLModule.Lock()
	defer muGLModule.Unlock()
	if glModuleRefs == 0 {
		return
	}
	glModuleRefs--
	if glModuleRefs == 0 {
		glModule.Close()
		glModule = nil
		klog.V(1).Info("native GL module unloaded")
	}
}

// glEnvironment is a context's hold on the GL interop environment. Created
// at most once per context, destroyed with it; destruction is idempotent.
type glEnvironment struct {
	bridge GLBridge
}

func newGLEnvironment(info *ContextProperties) (*glEnvironment, error) {
	bridge, err := acquireGLModule(info.flags.HasAny(cltypes.EGLDevice))
	if err != nil {
		return nil, err
	}
	if !bridge.Init(info.handles.GLDisplay, info.handles.GLContext) {
		releaseGLModule()
		return nil, errors.Wrap(ErrInvalidGLShareGroup, "GL environment initialization failed")
	}
	return &glEnvironment{bridge: bridge}, nil
}

func (e *glEnvironment) destroy() {
	if e.bridge == nil {
		return
	}
	e.bridge = nil
	releaseGLModule()
}
