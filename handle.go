// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package amscore

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mrpasztoradam/amscore/ams"
)

// NotificationHandle is the caller-facing handle returned when a device
// notification subscription is established. Closing it deregisters the
// callback and sends DEL_DEVICE_NOTIFICATION on a best-effort basis: Go has
// no stable weak-pointer API to let the handle detect that its connection
// has already been garbage collected, so Close instead checks the
// connection's own closed flag before attempting the network round trip,
// and simply skips it if the connection is already gone.
type NotificationHandle struct {
	conn      *AmsConnection
	localPort uint16
	target    ams.Addr
	hNotify   uint32
	timeout   time.Duration

	closed atomic.Bool
	once   sync.Once
}

// newNotificationHandle is called by the connection once
// ADD_DEVICE_NOTIFICATION has succeeded and the callback has been wired
// into the port's dispatcher.
func newNotificationHandle(conn *AmsConnection, localPort uint16, target ams.Addr, hNotify uint32, timeout time.Duration) *NotificationHandle {
	return &NotificationHandle{conn: conn, localPort: localPort, target: target, hNotify: hNotify, timeout: timeout}
}

// HNotify returns the device-assigned notification handle this
// NotificationHandle wraps.
func (h *NotificationHandle) HNotify() uint32 { return h.hNotify }

// isClosed reports whether this handle has already been closed. It says
// nothing about the connection; Close checks the connection's closed flag.
func (h *NotificationHandle) isClosed() bool {
	return h.closed.Load()
}

// Close deregisters the notification. It is idempotent: only the first call
// sends DEL_DEVICE_NOTIFICATION, and a handle whose connection has already
// torn down its reader loop skips the network round trip entirely since no
// reply will ever arrive.
func (h *NotificationHandle) Close() error {
	var err error
	h.once.Do(func() {
		h.closed.Store(true)
		if h.conn.closed.Load() {
			return
		}
		err = h.conn.DeleteNotification(h.localPort, h.target, h.hNotify, h.timeout)
	})
	return err
}
