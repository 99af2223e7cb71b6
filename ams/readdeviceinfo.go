// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ams

import "fmt"

// ReadDeviceInfoResponse is the ADS payload of a READ_DEVICE_INFO response:
// the result code, the device's version triple, and its human-readable name.
type ReadDeviceInfoResponse struct {
	Result       ErrorCode
	MajorVersion uint8
	MinorVersion uint8
	BuildVersion uint16
	DeviceName   string
}

// ReadDeviceInfoResponseSize is the fixed wire size of the response payload.
const ReadDeviceInfoResponseSize = 4 + 1 + 1 + 2 + 16

// DecodeReadDeviceInfoResponse parses the fixed 24-byte response payload:
// result(4) + major(1) + minor(1) + build(2) + name(16, NUL-padded). It
// returns an error rather than panicking if b is shorter than
// ReadDeviceInfoResponseSize, since b ultimately comes off the wire.
func DecodeReadDeviceInfoResponse(b []byte) (ReadDeviceInfoResponse, error) {
	if len(b) < ReadDeviceInfoResponseSize {
		return ReadDeviceInfoResponse{}, fmt.Errorf("ams: read device info response: need %d bytes, got %d", ReadDeviceInfoResponseSize, len(b))
	}
	nameEnd := 8
	for nameEnd < 8+16 && b[nameEnd] != 0 {
		nameEnd++
	}
	return ReadDeviceInfoResponse{
		Result:       ErrorCode(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24),
		MajorVersion: b[4],
		MinorVersion: b[5],
		BuildVersion: uint16(b[6]) | uint16(b[7])<<8,
		DeviceName:   string(b[8:nameEnd]),
	}, nil
}
