// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ams

import (
	"encoding/binary"
	"errors"
)

// ErrBufferTooSmall is returned when a Frame operation needs more room than
// the frame's fixed capacity provides.
var ErrBufferTooSmall = errors.New("ams: buffer too small")

// Frame is an owned, fixed-capacity byte buffer with a current window
// [start, end). Wire headers are built outermost-last by prepending: the ADS
// payload is appended first, the AoEHeader is prepended next, then the
// AmsTcpHeader is prepended outermost, so that by the time every header has
// been prepended the window spans the whole frame front to back. Invariant:
// 0 <= start <= end <= cap.
type Frame struct {
	buf   []byte
	start int
	end   int
}

// NewFrame allocates a Frame with the given capacity, empty and positioned
// at the front of the backing array.
func NewFrame(capacity int) *Frame {
	return &Frame{buf: make([]byte, capacity)}
}

// Cap returns the frame's fixed backing capacity.
func (f *Frame) Cap() int { return len(f.buf) }

// Len returns the number of bytes currently in the frame's window.
func (f *Frame) Len() int { return f.end - f.start }

// Bytes returns the frame's current window. The slice aliases the frame's
// backing array and is only valid until the next mutating call.
func (f *Frame) Bytes() []byte { return f.buf[f.start:f.end] }

// Reset empties the frame and returns its window to the front of the
// backing array, ready to be built up by Append and Prepend calls.
func (f *Frame) Reset() {
	f.start = 0
	f.end = 0
}

// Clear empties the frame's window without moving its start position
// (end := start). Capacity is retained.
func (f *Frame) Clear() {
	f.end = f.start
}

// Limit sets end := start + n. Used after a raw read into the frame's
// backing array (see Slice) to mark how many bytes are now valid.
func (f *Frame) Limit(n int) error {
	if f.start+n > len(f.buf) {
		return ErrBufferTooSmall
	}
	f.end = f.start + n
	return nil
}

// Slice returns the next n bytes of backing storage starting at start,
// without adjusting end. Callers read directly into the returned slice (for
// example via io.ReadFull) and then call Limit(n) to validate the window.
func (f *Frame) Slice(n int) ([]byte, error) {
	if f.start+n > len(f.buf) {
		return nil, ErrBufferTooSmall
	}
	return f.buf[f.start : f.start+n], nil
}

// Prepend inserts p immediately in front of the current window. It shifts
// the window's existing bytes right by len(p) and writes p at the window's
// new start, so repeated Prepend calls build a header outermost-last: the
// most recently prepended field ends up first on the wire.
func (f *Frame) Prepend(p []byte) error {
	n := len(p)
	if f.end+n > len(f.buf) {
		return ErrBufferTooSmall
	}
	copy(f.buf[f.start+n:f.end+n], f.buf[f.start:f.end])
	copy(f.buf[f.start:f.start+n], p)
	f.end += n
	return nil
}

// PrependUint16 prepends a little-endian uint16.
func (f *Frame) PrependUint16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return f.Prepend(b[:])
}

// PrependUint32 prepends a little-endian uint32.
func (f *Frame) PrependUint32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return f.Prepend(b[:])
}

// Append writes p at the current end, advancing end.
func (f *Frame) Append(p []byte) error {
	if f.end+len(p) > len(f.buf) {
		return ErrBufferTooSmall
	}
	copy(f.buf[f.end:], p)
	f.end += len(p)
	return nil
}

// AppendUint16 appends a little-endian uint16.
func (f *Frame) AppendUint16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return f.Append(b[:])
}

// AppendUint32 appends a little-endian uint32.
func (f *Frame) AppendUint32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return f.Append(b[:])
}

// AppendUint64 appends a little-endian uint64.
func (f *Frame) AppendUint64(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return f.Append(b[:])
}
