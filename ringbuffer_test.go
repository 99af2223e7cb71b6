package amscore

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBufferWriteReadRoundTrip(t *testing.T) {
	rb := NewRingBuffer(16)
	require.NoError(t, rb.Write([]byte("hello")))
	out := make([]byte, 5)
	require.NoError(t, rb.ReadFull(out))
	assert.Equal(t, "hello", string(out))
}

func TestRingBufferWrapsAround(t *testing.T) {
	rb := NewRingBuffer(8)
	for i := 0; i < 20; i++ {
		require.NoError(t, rb.Write([]byte{byte(i)}))
		out := make([]byte, 1)
		require.NoError(t, rb.ReadFull(out))
		assert.Equal(t, byte(i), out[0])
	}
}

func TestRingBufferPeekThenAdvance(t *testing.T) {
	rb := NewRingBuffer(16)
	require.NoError(t, rb.Write([]byte{1, 2, 3, 4}))

	peeked := make([]byte, 2)
	require.NoError(t, rb.PeekFull(peeked))
	assert.Equal(t, []byte{1, 2}, peeked)
	assert.Equal(t, 4, rb.BytesUsed(), "peek must not consume")

	full := make([]byte, 4)
	require.NoError(t, rb.ReadFull(full))
	assert.Equal(t, []byte{1, 2, 3, 4}, full)
}

func TestRingBufferReadBlocksUntilWrite(t *testing.T) {
	rb := NewRingBuffer(16)
	var wg sync.WaitGroup
	wg.Add(1)
	out := make([]byte, 3)
	go func() {
		defer wg.Done()
		require.NoError(t, rb.ReadFull(out))
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, rb.Write([]byte{7, 8, 9}))
	wg.Wait()
	assert.Equal(t, []byte{7, 8, 9}, out)
}

func TestRingBufferCloseUnblocksWaiters(t *testing.T) {
	rb := NewRingBuffer(16)
	errCh := make(chan error, 1)
	go func() {
		errCh <- rb.ReadFull(make([]byte, 4))
	}()
	time.Sleep(10 * time.Millisecond)
	rb.Close()
	assert.ErrorIs(t, <-errCh, ErrRingClosed)

	assert.ErrorIs(t, rb.Write([]byte{1}), ErrRingClosed)
}

func TestRingBufferTryWriteOverflowLeavesRingUntouched(t *testing.T) {
	rb := NewRingBuffer(8)
	err := rb.TryWrite(make([]byte, 64))
	assert.ErrorIs(t, err, ErrBufferOverflow)
	assert.Equal(t, 0, rb.BytesUsed(), "rejected write must not touch the ring")

	// A normal write still works afterward.
	require.NoError(t, rb.TryWrite([]byte{1, 2, 3}))
	out := make([]byte, 3)
	require.NoError(t, rb.ReadFull(out))
	assert.Equal(t, []byte{1, 2, 3}, out)
}

func TestRingBufferTryWriteDoesNotBlock(t *testing.T) {
	rb := NewRingBuffer(4)
	require.NoError(t, rb.TryWrite([]byte{1, 2, 3, 4}))

	done := make(chan error, 1)
	go func() { done <- rb.TryWrite([]byte{5}) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrBufferOverflow)
	case <-time.After(time.Second):
		t.Fatal("TryWrite must never block")
	}
}

func TestRingBufferWriteBlocksUntilRoom(t *testing.T) {
	rb := NewRingBuffer(4)
	require.NoError(t, rb.Write([]byte{1, 2, 3, 4}))

	done := make(chan error, 1)
	go func() {
		done <- rb.Write([]byte{5})
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("write should have blocked with a full ring")
	default:
	}

	out := make([]byte, 1)
	require.NoError(t, rb.ReadFull(out))
	require.NoError(t, <-done)
}
