// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ams

import "encoding/binary"

// TcpHeaderSize is the wire size of AmsTcpHeader: reserved(2) + length(4).
const TcpHeaderSize = 6

// AoEHeaderSize is the wire size of AoEHeader.
const AoEHeaderSize = 32

// TcpHeader is the 6-byte AMS/TCP envelope: a reserved field (always 0) and
// the byte count of everything that follows (the AoEHeader plus payload).
type TcpHeader struct {
	Reserved uint16
	Length   uint32
}

// Encode prepends the header onto f in wire order (reserved, length).
func (h TcpHeader) Encode(f *Frame) error {
	if err := f.PrependUint32(h.Length); err != nil {
		return err
	}
	return f.PrependUint16(h.Reserved)
}

// DecodeTcpHeader parses a TcpHeader from an exact TcpHeaderSize-byte slice.
func DecodeTcpHeader(b []byte) TcpHeader {
	return TcpHeader{
		Reserved: binary.LittleEndian.Uint16(b[0:2]),
		Length:   binary.LittleEndian.Uint32(b[2:6]),
	}
}

// AoEHeader is the 32-byte AMS header identifying source/target endpoints,
// the command, and the invoke ID used to correlate request and reply.
type AoEHeader struct {
	TargetNetID NetID
	TargetPort  uint16
	SourceNetID NetID
	SourcePort  uint16
	CmdID       uint16
	StateFlags  uint16
	Length      uint32
	ErrorCode   uint32
	InvokeID    uint32
}

// Encode prepends the header onto f in wire order, outermost field last.
func (h AoEHeader) Encode(f *Frame) error {
	if err := f.PrependUint32(h.InvokeID); err != nil {
		return err
	}
	if err := f.PrependUint32(h.ErrorCode); err != nil {
		return err
	}
	if err := f.PrependUint32(h.Length); err != nil {
		return err
	}
	if err := f.PrependUint16(h.StateFlags); err != nil {
		return err
	}
	if err := f.PrependUint16(h.CmdID); err != nil {
		return err
	}
	if err := f.PrependUint16(h.SourcePort); err != nil {
		return err
	}
	if err := f.Prepend(h.SourceNetID[:]); err != nil {
		return err
	}
	if err := f.PrependUint16(h.TargetPort); err != nil {
		return err
	}
	return f.Prepend(h.TargetNetID[:])
}

// DecodeAoEHeader parses an AoEHeader from an exact AoEHeaderSize-byte slice.
func DecodeAoEHeader(b []byte) AoEHeader {
	var h AoEHeader
	copy(h.TargetNetID[:], b[0:6])
	h.TargetPort = binary.LittleEndian.Uint16(b[6:8])
	copy(h.SourceNetID[:], b[8:14])
	h.SourcePort = binary.LittleEndian.Uint16(b[14:16])
	h.CmdID = binary.LittleEndian.Uint16(b[16:18])
	h.StateFlags = binary.LittleEndian.Uint16(b[18:20])
	h.Length = binary.LittleEndian.Uint32(b[20:24])
	h.ErrorCode = binary.LittleEndian.Uint32(b[24:28])
	h.InvokeID = binary.LittleEndian.Uint32(b[28:32])
	return h
}

// Recognized ADS command IDs (AoEHeader.CmdID).
const (
	CmdReadDeviceInfo       uint16 = 1
	CmdRead                 uint16 = 2
	CmdWrite                uint16 = 3
	CmdReadState            uint16 = 4
	CmdWriteControl         uint16 = 5
	CmdAddDeviceNotify      uint16 = 6
	CmdDeleteDeviceNotify   uint16 = 7
	CmdDeviceNotification   uint16 = 8
	CmdReadWrite            uint16 = 9
)

// State flag bits.
const (
	StateFlagResponse uint16 = 0x0001
	StateFlagADSCmd   uint16 = 0x0004
)

// HasState reports whether h carries all bits of flags set.
func HasState(h AoEHeader, flags uint16) bool {
	return h.StateFlags&flags == flags
}

// IsReplyCmd reports whether cmdID is one of the command IDs the reader
// loop accepts as a reply opcode (as opposed to DEVICE_NOTIFICATION, which
// is routed to a dispatcher instead of a ResponseSlot).
func IsReplyCmd(cmdID uint16) bool {
	switch cmdID {
	case CmdReadDeviceInfo, CmdRead, CmdWrite, CmdReadState, CmdWriteControl,
		CmdAddDeviceNotify, CmdDeleteDeviceNotify, CmdReadWrite:
		return true
	default:
		return false
	}
}

// DefaultTCPPort is the AMS/TCP listening port on the target device.
const DefaultTCPPort = 48898
