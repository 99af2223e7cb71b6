// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ams

import "fmt"

// NetID is a 6-byte AMS network identifier, conventionally printed as a
// dotted sequence (e.g. 192.168.1.10.1.1).
type NetID [6]byte

func (n NetID) String() string {
	return fmt.Sprintf("%d.%d.%d.%d.%d.%d", n[0], n[1], n[2], n[3], n[4], n[5])
}

// Addr identifies a logical AMS endpoint: a NetID plus a port. Addr is a
// plain comparable struct, so it is valid as a map key and compares equal
// by value without any custom Equals/Hash machinery.
type Addr struct {
	NetID NetID
	Port  uint16
}

func (a Addr) String() string {
	return fmt.Sprintf("%s:%d", a.NetID, a.Port)
}
