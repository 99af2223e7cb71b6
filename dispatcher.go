// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package amscore

import (
	"log"
	"sync"

	"github.com/mrpasztoradam/amscore/ams"
)

// NotificationCallback receives one decoded device-notification stamp's
// samples. It is invoked from the dispatcher's own worker goroutine, never
// from the connection's reader goroutine, so a slow or blocking callback
// only stalls delivery for handles sharing its dispatcher.
type NotificationCallback func(stamp ams.NotificationStamp)

// NotificationDispatcher demultiplexes the DEVICE_NOTIFICATION stream
// arriving on one local AMS port, whatever remote address sent it: the
// connection's reader goroutine pushes raw frame bytes into the ring
// buffer, and this dispatcher's own worker goroutine drains, decodes, and
// fans them out to registered callbacks by HNotify.
type NotificationDispatcher struct {
	ring *RingBuffer
	log  *log.Logger

	mu      sync.Mutex
	entries map[uint32]NotificationCallback

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewNotificationDispatcher creates a dispatcher with a ring buffer of the
// given capacity and starts its worker goroutine.
func NewNotificationDispatcher(ringCapacity int, logger *log.Logger) *NotificationDispatcher {
	if logger == nil {
		logger = log.Default()
	}
	d := &NotificationDispatcher{
		ring:    NewRingBuffer(ringCapacity),
		log:     logger,
		entries: make(map[uint32]NotificationCallback),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Emplace registers callback for hNotify, replacing any previous
// registration for the same handle.
func (d *NotificationDispatcher) Emplace(hNotify uint32, callback NotificationCallback) {
	d.mu.Lock()
	d.entries[hNotify] = callback
	d.mu.Unlock()
}

// Erase removes the registration for hNotify, if any.
func (d *NotificationDispatcher) Erase(hNotify uint32) {
	d.mu.Lock()
	delete(d.entries, hNotify)
	d.mu.Unlock()
}

// Empty reports whether no handles remain registered. The owning connection
// does not tear down an empty dispatcher; it is closed with the connection.
func (d *NotificationDispatcher) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries) == 0
}

// Push copies a raw DEVICE_NOTIFICATION payload (as received from the wire,
// length-prefixed) into the ring buffer for the worker to decode. It is
// called from the connection's reader goroutine and never blocks: if the
// ring does not currently have enough free space for payload, it returns
// ErrBufferOverflow and leaves the ring untouched rather than stalling the
// reader behind a slow or stuck dispatcher worker.
func (d *NotificationDispatcher) Push(payload []byte) error {
	return d.ring.TryWrite(payload)
}

// run is the dispatcher's worker goroutine: it repeatedly peeks the 4-byte
// length prefix of the next notification payload, waits for the full frame
// to be available, decodes it, and dispatches each sample to its
// registered callback.
func (d *NotificationDispatcher) run() {
	defer d.wg.Done()
	var lenBuf [4]byte
	for {
		if err := d.ring.PeekFull(lenBuf[:]); err != nil {
			return // ring closed
		}
		total, err := ams.PeekNotificationLength(lenBuf[:])
		if err != nil {
			d.log.Printf("amscore: dispatcher: %v", err)
			return
		}
		if int(total) > d.ring.Cap() {
			// The declared length cannot possibly be real: Push never
			// admits a frame larger than the ring's total capacity, so
			// this is a malformed length field, not legitimate overflow.
			// Drain whatever is actually pending and keep the worker
			// alive rather than risk blocking forever in ReadFull waiting
			// for bytes that will never arrive.
			used := d.ring.BytesUsed()
			d.log.Printf("amscore: dispatcher: %v: declared %d bytes, ring capacity %d, draining %d pending bytes", ErrMalformedFrame, total, d.ring.Cap(), used)
			if used > 0 {
				junk := make([]byte, used)
				if err := d.ring.ReadFull(junk); err != nil {
					return // ring closed
				}
			}
			continue
		}
		frame := make([]byte, total)
		if err := d.ring.ReadFull(frame); err != nil {
			return // ring closed mid-frame
		}

		notif, err := ams.DecodeDeviceNotification(frame)
		if err != nil {
			d.log.Printf("amscore: dispatcher: discarding malformed notification: %v", err)
			continue
		}
		d.dispatch(notif)
	}
}

// dispatch fans each sample in notif out to its registered callback, if
// any, recovering from a panicking callback so one misbehaving handler
// cannot take down the dispatcher goroutine or, by extension, delivery to
// every other handle sharing it.
func (d *NotificationDispatcher) dispatch(notif *ams.DeviceNotification) {
	for _, stamp := range notif.Stamps {
		for _, sample := range stamp.Samples {
			d.mu.Lock()
			cb := d.entries[sample.HNotify]
			d.mu.Unlock()
			if cb == nil {
				continue
			}
			d.invoke(cb, ams.NotificationStamp{
				Timestamp: stamp.Timestamp,
				Samples:   []ams.NotificationSample{sample},
			})
		}
	}
}

func (d *NotificationDispatcher) invoke(cb NotificationCallback, stamp ams.NotificationStamp) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Printf("amscore: notification callback panicked: %v", r)
		}
	}()
	cb(stamp)
}

// Close shuts down the dispatcher's worker goroutine and waits for it to
// exit. Close is idempotent; the ring buffer's own Close is idempotent too.
func (d *NotificationDispatcher) Close() {
	d.closeOnce.Do(func() {
		d.ring.Close()
		d.wg.Wait()
	})
}
