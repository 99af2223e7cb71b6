// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package amscore

import "errors"

var (
	// ErrRingClosed is returned by RingBuffer operations once Close has been
	// called.
	ErrRingClosed = errors.New("amscore: ring buffer closed")

	// ErrTransport wraps failures reading from or writing to the underlying
	// socket.
	ErrTransport = errors.New("amscore: transport error")

	// ErrBusyPort is returned by AmsConnection.Write when the local port's
	// response slot already holds an outstanding request, and by
	// Router.AllocPort when every port in the pool is allocated.
	ErrBusyPort = errors.New("amscore: no free local port")

	// ErrTimedOut is returned by ResponseSlot.Wait when no reply arrives
	// before the deadline.
	ErrTimedOut = errors.New("amscore: wait timed out")

	// ErrMalformedFrame is returned when a frame read off the wire fails a
	// structural sanity check (declared length out of range, unknown
	// command id in a position that requires a known one, and similar).
	ErrMalformedFrame = errors.New("amscore: malformed frame")

	// ErrBufferOverflow is returned when a device notification is larger
	// than the free space currently left in the dispatcher's ring buffer.
	ErrBufferOverflow = errors.New("amscore: notification too large for ring buffer")

	// ErrInvokeIDMismatch is logged by the reader goroutine when a reply's
	// invoke ID does not match the invoke ID of the request occupying the
	// target response slot; the reply is dropped.
	ErrInvokeIDMismatch = errors.New("amscore: invoke id mismatch")

	// ErrConnectionClosed is returned by AmsConnection operations once the
	// connection has been closed.
	ErrConnectionClosed = errors.New("amscore: connection closed")

	// ErrNotificationClosed names the state of a NotificationHandle that has
	// already been closed. No method in this package returns it: a second
	// NotificationHandle.Close returns nil.
	ErrNotificationClosed = errors.New("amscore: notification handle closed")
)
