package platform

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devurandom/clruntime/cltypes"
)

func TestValidateProperties_Nil(t *testing.T) {
	info, err := ValidateProperties(nil)
	require.NoError(t, err)
	assert.Equal(t, cltypes.ContextFlags(0), info.Flags())
	assert.Equal(t, uintptr(0), info.SizeConsumed())
}

func TestValidateProperties_RecognizedTags(t *testing.T) {
	props := []uintptr{
		uintptr(cltypes.PropertyPlatform), PlatformID(),
		uintptr(cltypes.PropertyInteropUserSync), 1,
		uintptr(cltypes.PropertyOfflineDevices), 1,
		0,
	}
	info, err := ValidateProperties(props)
	require.NoError(t, err)
	assert.True(t, info.Flags().HasAny(cltypes.InteropUserSync))
	assert.True(t, info.Flags().HasAny(cltypes.OfflineDevices))
	assert.False(t, info.Flags().HasAny(cltypes.ExternalDevices))
	assert.Equal(t, 3*2*propertyWordSize+propertyWordSize, info.SizeConsumed())
}

func TestValidateProperties_ExternalDeviceHandles(t *testing.T) {
	props := []uintptr{
		uintptr(cltypes.PropertyGLXDisplay), 0xd15,
		uintptr(cltypes.PropertyGLContext), 0xc70,
		uintptr(cltypes.PropertyD3D11Device), 0xd3d,
		0,
	}
	info, err := ValidateProperties(props)
	require.NoError(t, err)
	assert.True(t, info.Flags().HasAny(cltypes.GLDevice))
	assert.True(t, info.Flags().HasAny(cltypes.D3D11Device))
	assert.False(t, info.Flags().HasAny(cltypes.EGLDevice))
	assert.Equal(t, uintptr(0xd15), info.Handles().GLDisplay)
	assert.Equal(t, uintptr(0xc70), info.Handles().GLContext)
	assert.Equal(t, uintptr(0xd3d), info.Handles().D3D11Device)
}

func TestValidateProperties_EGLSetsBothFlags(t *testing.T) {
	props := []uintptr{uintptr(cltypes.PropertyEGLDisplay), 0xe51, 0}
	info, err := ValidateProperties(props)
	require.NoError(t, err)
	assert.True(t, info.Flags().HasAny(cltypes.GLDevice))
	assert.True(t, info.Flags().HasAny(cltypes.EGLDevice))
}

func TestValidateProperties_UnknownTag(t *testing.T) {
	// Anywhere in the list, an unrecognized tag fails validation.
	for _, props := range [][]uintptr{
		{0xdead, 1, 0},
		{uintptr(cltypes.PropertyInteropUserSync), 1, 0xdead, 1, 0},
	} {
		_, err := ValidateProperties(props)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownProperty), "got %v", err)
	}
}

func TestValidateProperties_PlatformIdentity(t *testing.T) {
	// Zero (absent) and the process identity are accepted.
	for _, id := range []uintptr{0, PlatformID()} {
		_, err := ValidateProperties([]uintptr{uintptr(cltypes.PropertyPlatform), id, 0})
		require.NoError(t, err)
	}
	_, err := ValidateProperties([]uintptr{uintptr(cltypes.PropertyPlatform), PlatformID() + 1, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidValue))
}

func TestValidateProperties_NullHandleIsDistinguishable(t *testing.T) {
	_, err := ValidateProperties([]uintptr{uintptr(cltypes.PropertyD3D10Device), 0, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidValue))
	assert.False(t, errors.Is(err, ErrUnknownProperty))

	_, err = ValidateProperties([]uintptr{uintptr(cltypes.PropertyGLContext), 0, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidGLShareGroup))
	assert.False(t, errors.Is(err, ErrInvalidValue))
}

func TestValidateProperties_OfflineDevicesSentinel(t *testing.T) {
	for _, bad := range []uintptr{0, 2, ^uintptr(0)} {
		_, err := ValidateProperties([]uintptr{uintptr(cltypes.PropertyOfflineDevices), bad, 0})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidValue))
	}
}

func TestValidateProperties_InteropUserSyncRequiresTrue(t *testing.T) {
	// Only the literal 1 sets the flag; other values leave it clear.
	info, err := ValidateProperties([]uintptr{uintptr(cltypes.PropertyInteropUserSync), 2, 0})
	require.NoError(t, err)
	assert.False(t, info.Flags().HasAny(cltypes.InteropUserSync))
}

func TestValidateProperties_Unterminated(t *testing.T) {
	_, err := ValidateProperties([]uintptr{uintptr(cltypes.PropertyInteropUserSync), 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidValue))
}

func TestValidateProperties_CGLShareGroupUnimplemented(t *testing.T) {
	_, err := ValidateProperties([]uintptr{uintptr(cltypes.PropertyCGLShareGroup), 0xc51, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotImplemented))
}
