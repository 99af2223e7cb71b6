// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package amscore

import (
	"sync"
	"time"
)

// slotState values for ResponseSlot.state.
const (
	slotFree uint32 = iota
	slotReserved
	slotSignaled
	slotTimedOut
)

// ResponseSlot is a reusable, repeatedly-reservable rendezvous point between
// one waiting caller and the connection's reader goroutine. A caller
// reserves the slot with the invoke ID of the request it just sent, then
// blocks in Wait until either the reader goroutine delivers a matching
// reply via Notify, or the deadline passes.
//
// Go's sync.Cond has no built-in timeout, so Wait pairs the condition
// variable with a time.AfterFunc watchdog that performs a Broadcast if the
// deadline is reached first; Wait distinguishes the two cases by re-checking
// slot state after waking.
type ResponseSlot struct {
	mu   sync.Mutex
	cond *sync.Cond

	state    uint32
	invokeID uint32
	frame    []byte // reply payload, set by Notify
	err      error  // delivery error, set by Fail
}

// NewResponseSlot constructs a free ResponseSlot.
func NewResponseSlot() *ResponseSlot {
	s := &ResponseSlot{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Reserve atomically claims the slot for invokeID if it is currently free.
// It reports false if the slot was already reserved by someone else.
func (s *ResponseSlot) Reserve(invokeID uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != slotFree {
		return false
	}
	s.state = slotReserved
	s.invokeID = invokeID
	s.frame = nil
	s.err = nil
	return true
}

// Notify delivers a reply frame to whoever reserved the slot for invokeID.
// It reports false (and does nothing) if the slot is not currently reserved
// for that invoke ID, which the reader goroutine treats as a stale or
// mismatched reply.
func (s *ResponseSlot) Notify(invokeID uint32, frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != slotReserved || s.invokeID != invokeID {
		return false
	}
	s.frame = frame
	s.state = slotSignaled
	s.cond.Broadcast()
	return true
}

// Fail delivers an error to whoever holds the slot, regardless of invoke ID
// (used for connection-wide teardown).
func (s *ResponseSlot) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != slotReserved {
		return
	}
	s.err = err
	s.state = slotSignaled
	s.cond.Broadcast()
}

// Wait blocks until Notify/Fail delivers a result or timeout elapses,
// whichever comes first, then releases the slot back to free regardless of
// outcome. It returns ErrTimedOut if the deadline passed with no delivery.
func (s *ResponseSlot) Wait(timeout time.Duration) ([]byte, error) {
	timer := time.AfterFunc(timeout, func() {
		s.mu.Lock()
		if s.state == slotReserved {
			s.state = slotTimedOut
			s.cond.Broadcast()
		}
		s.mu.Unlock()
	})
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.state == slotReserved {
		s.cond.Wait()
	}

	var frame []byte
	var err error
	if s.state == slotSignaled {
		frame, err = s.frame, s.err
	} else {
		// slotTimedOut, or (shouldn't normally happen) state reverted
		// to free some other way.
		err = ErrTimedOut
	}
	s.state = slotFree
	s.invokeID = 0
	s.frame = nil
	s.err = nil
	return frame, err
}

// InUse reports whether the slot is currently reserved. Used only for
// diagnostics; callers must not rely on it for synchronization.
func (s *ResponseSlot) InUse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == slotReserved
}
