// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package amscore

import (
	"fmt"
	"io"
	"net"
	"time"
)

// Socket is a thin wrapper around a net.Conn that gives the connection's
// reader and writer goroutines a narrow, mockable surface: read exactly N
// bytes, write a frame to completion, half-close, and close. It does not
// concern itself with AMS framing; that belongs to AmsConnection.
type Socket struct {
	conn net.Conn
}

// DialSocket opens a TCP connection to addr (host:port) with the given
// dial timeout.
func DialSocket(addr string, timeout time.Duration) (*Socket, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransport, addr, err)
	}
	return &Socket{conn: conn}, nil
}

// NewSocket wraps an already-established net.Conn. Used directly in tests
// with net.Pipe(), and by callers that manage their own dialing/listening.
func NewSocket(conn net.Conn) *Socket {
	return &Socket{conn: conn}
}

// ReadFull reads exactly len(p) bytes, blocking until they arrive or the
// connection errors.
func (s *Socket) ReadFull(p []byte) error {
	if _, err := io.ReadFull(s.conn, p); err != nil {
		return fmt.Errorf("%w: read: %v", ErrTransport, err)
	}
	return nil
}

// WriteFull writes all of p with a single Write call; net.Conn.Write
// returns an error whenever it writes fewer than len(p) bytes.
func (s *Socket) WriteFull(p []byte) error {
	if _, err := s.conn.Write(p); err != nil {
		return fmt.Errorf("%w: write: %v", ErrTransport, err)
	}
	return nil
}

// Shutdown half-closes the write side if the underlying conn supports it
// (e.g. *net.TCPConn), letting the peer observe EOF while reads still work
// until Close.
func (s *Socket) Shutdown() error {
	type writeCloser interface {
		CloseWrite() error
	}
	if wc, ok := s.conn.(writeCloser); ok {
		return wc.CloseWrite()
	}
	return nil
}

// Close closes the underlying connection.
func (s *Socket) Close() error {
	return s.conn.Close()
}

// RemoteAddr returns the peer address reported by the underlying net.Conn.
func (s *Socket) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}
