package ams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramePrependBuildsOutermostLast(t *testing.T) {
	f := NewFrame(16)
	require.NoError(t, f.Append([]byte{0xAA, 0xBB}))
	require.NoError(t, f.PrependUint16(0x0102))

	assert.Equal(t, []byte{0x02, 0x01, 0xAA, 0xBB}, f.Bytes())
	assert.Equal(t, 4, f.Len())
}

func TestFrameSliceAndLimit(t *testing.T) {
	f := NewFrame(8)
	f.Clear()
	b, err := f.Slice(4)
	require.NoError(t, err)
	copy(b, []byte{1, 2, 3, 4})
	require.NoError(t, f.Limit(4))
	assert.Equal(t, []byte{1, 2, 3, 4}, f.Bytes())
}

func TestFrameTooSmall(t *testing.T) {
	f := NewFrame(2)
	require.ErrorIs(t, f.Append([]byte{1, 2, 3}), ErrBufferTooSmall)
	require.ErrorIs(t, f.Prepend([]byte{1, 2, 3}), ErrBufferTooSmall)
}

func TestFrameResetRepositionsForPrepend(t *testing.T) {
	f := NewFrame(4)
	require.NoError(t, f.Prepend([]byte{9, 9, 9, 9}))
	assert.Equal(t, 4, f.Len())
	f.Reset()
	assert.Equal(t, 0, f.Len())
	require.NoError(t, f.Prepend([]byte{1, 2, 3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4}, f.Bytes())
}
