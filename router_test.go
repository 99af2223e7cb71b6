package amscore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrpasztoradam/amscore/ams"
)

func TestRouterAllocAndFreePort(t *testing.T) {
	r := NewRouter(ams.NetID{10, 0, 0, 1, 1, 1})

	p1, err := r.AllocPort()
	require.NoError(t, err)
	p2, err := r.AllocPort()
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)

	r.FreePort(p1)
	// AllocPort searches round-robin from the last allocated port, so the
	// freed port comes back once the search wraps around to it.
	for i := 2; i < maxLocalPorts; i++ {
		_, err := r.AllocPort()
		require.NoError(t, err)
	}
	p3, err := r.AllocPort()
	require.NoError(t, err)
	assert.Equal(t, p1, p3, "freed port should be reused")
}

func TestRouterAllocPortExhaustion(t *testing.T) {
	r := NewRouter(ams.NetID{10, 0, 0, 1, 1, 1})
	for i := 0; i < maxLocalPorts; i++ {
		_, err := r.AllocPort()
		require.NoError(t, err)
	}
	_, err := r.AllocPort()
	assert.ErrorIs(t, err, ErrBusyPort)
}

func TestRouterFreeUnallocatedPortIsNoop(t *testing.T) {
	r := NewRouter(ams.NetID{10, 0, 0, 1, 1, 1})
	r.FreePort(PortBase + 5) // no panic, no effect
	p, err := r.AllocPort()
	require.NoError(t, err)
	assert.Equal(t, uint16(PortBase), p, "allocation starts from the base port regardless of an unrelated Free")
}
