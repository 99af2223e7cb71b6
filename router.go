// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package amscore

import (
	"sync"
	"time"

	"github.com/mrpasztoradam/amscore/ams"
)

// Router owns the process-wide pool of local AMS ports and the set of live
// connections keyed by remote AMS NetID. Mapping a local port to an OS
// identity (which process on this machine owns it) is a concern of the
// surrounding application, not of Router; Router only tracks which ports in
// [PortBase, PortBase+maxLocalPorts) are currently allocated and which
// AmsConnection a given remote NetID is multiplexed over.
type Router struct {
	local ams.NetID

	mu          sync.Mutex
	allocated   [maxLocalPorts]bool
	nextSearch  int
	connections map[ams.NetID]*AmsConnection
}

// NewRouter creates a Router that presents local as its AMS source NetID
// for every connection it establishes.
func NewRouter(local ams.NetID) *Router {
	return &Router{local: local, connections: make(map[ams.NetID]*AmsConnection)}
}

// AllocPort reserves and returns an unused local AMS port. It returns
// ErrBusyPort if every port in the pool is currently allocated.
func (r *Router) AllocPort() (uint16, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < maxLocalPorts; i++ {
		idx := (r.nextSearch + i) % maxLocalPorts
		if !r.allocated[idx] {
			r.allocated[idx] = true
			r.nextSearch = (idx + 1) % maxLocalPorts
			return uint16(PortBase + idx), nil
		}
	}
	return 0, ErrBusyPort
}

// FreePort releases a port previously returned by AllocPort, making it
// available for reuse. Freeing a port that was never allocated, or was
// already freed, is a no-op.
func (r *Router) FreePort(port uint16) {
	idx, ok := slotIndex(port)
	if !ok {
		return
	}
	r.mu.Lock()
	r.allocated[idx] = false
	r.mu.Unlock()
}

// GetConnection returns the existing AmsConnection to remote's NetID, or
// dials a new one to dialAddr if none exists yet. Concurrent callers racing to
// create the first connection to a given NetID are serialized by the
// Router's own mutex: only one dial happens, and the loser gets the
// winner's connection.
func (r *Router) GetConnection(remote ams.NetID, dialAddr string, dialTimeout time.Duration, opts ...Option) (*AmsConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn, ok := r.connections[remote]; ok {
		return conn, nil
	}
	sock, err := DialSocket(dialAddr, dialTimeout)
	if err != nil {
		return nil, err
	}
	conn := NewAmsConnection(sock, r.local, ams.Addr{NetID: remote, Port: ams.DefaultTCPPort}, opts...)
	r.connections[remote] = conn
	return conn, nil
}

// Forget removes remote's connection from the router's table without
// closing it; callers that want to tear the connection down should call
// AmsConnection.Close separately. Used once a connection's reader loop has
// already exited on its own (transport error, peer close) so the router
// does not keep handing out a dead connection.
func (r *Router) Forget(remote ams.NetID) {
	r.mu.Lock()
	delete(r.connections, remote)
	r.mu.Unlock()
}

// Close closes every connection the router currently tracks.
func (r *Router) Close() {
	r.mu.Lock()
	conns := make([]*AmsConnection, 0, len(r.connections))
	for _, c := range r.connections {
		conns = append(conns, c)
	}
	r.connections = make(map[ams.NetID]*AmsConnection)
	r.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}
