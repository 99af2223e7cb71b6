// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ams

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncatedNotification is returned when a device-notification payload
// advertises more bytes than it actually contains.
var ErrTruncatedNotification = errors.New("ams: truncated device notification")

// NotificationSample is a single sample within a notification stamp: the
// handle it belongs to and the raw bytes the device sent for it.
type NotificationSample struct {
	HNotify uint32
	Data    []byte
}

// NotificationStamp groups every sample the device produced at one instant.
type NotificationStamp struct {
	Timestamp uint64 // Windows FILETIME, 100ns intervals since 1601-01-01
	Samples   []NotificationSample
}

// DeviceNotification is the decoded body of a DEVICE_NOTIFICATION frame:
// length; stamps; each stamp's timestamp and samples.
type DeviceNotification struct {
	Stamps []NotificationStamp
}

// DecodeDeviceNotification parses the device-notification payload format
// (the bytes that follow the AoEHeader of a DEVICE_NOTIFICATION frame):
//
//	length: u32; stamps: u32;
//	stamps x { timestamp: u64; samples: u32;
//	           samples x { hNotify: u32; size: u32; payload: size bytes } }
//
// It returns ErrTruncatedNotification if data does not contain as many
// bytes as the header advertises.
func DecodeDeviceNotification(data []byte) (*DeviceNotification, error) {
	const lengthFieldSize = 4
	const stampsFieldSize = 4
	if len(data) < lengthFieldSize+stampsFieldSize {
		return nil, ErrTruncatedNotification
	}

	length := binary.LittleEndian.Uint32(data[0:4])
	if int(length)+lengthFieldSize > len(data) {
		return nil, ErrTruncatedNotification
	}

	stampCount := binary.LittleEndian.Uint32(data[4:8])
	pos := 8

	notif := &DeviceNotification{Stamps: make([]NotificationStamp, 0, stampCount)}
	for i := uint32(0); i < stampCount; i++ {
		if pos+12 > len(data) {
			return nil, ErrTruncatedNotification
		}
		timestamp := binary.LittleEndian.Uint64(data[pos : pos+8])
		sampleCount := binary.LittleEndian.Uint32(data[pos+8 : pos+12])
		pos += 12

		stamp := NotificationStamp{Timestamp: timestamp, Samples: make([]NotificationSample, 0, sampleCount)}
		for j := uint32(0); j < sampleCount; j++ {
			if pos+8 > len(data) {
				return nil, ErrTruncatedNotification
			}
			hNotify := binary.LittleEndian.Uint32(data[pos : pos+4])
			size := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
			pos += 8
			if pos+int(size) > len(data) {
				return nil, ErrTruncatedNotification
			}
			payload := make([]byte, size)
			copy(payload, data[pos:pos+int(size)])
			pos += int(size)

			stamp.Samples = append(stamp.Samples, NotificationSample{HNotify: hNotify, Data: payload})
		}
		notif.Stamps = append(notif.Stamps, stamp)
	}

	return notif, nil
}

// EncodeDeviceNotification serializes a DeviceNotification into the wire
// payload format DecodeDeviceNotification parses. It is primarily useful
// for building mock-peer traffic in tests.
func EncodeDeviceNotification(n *DeviceNotification) []byte {
	size := 8
	for _, s := range n.Stamps {
		size += 12
		for _, sm := range s.Samples {
			size += 8 + len(sm.Data)
		}
	}

	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(size-4))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(n.Stamps)))
	pos := 8
	for _, s := range n.Stamps {
		binary.LittleEndian.PutUint64(buf[pos:pos+8], s.Timestamp)
		binary.LittleEndian.PutUint32(buf[pos+8:pos+12], uint32(len(s.Samples)))
		pos += 12
		for _, sm := range s.Samples {
			binary.LittleEndian.PutUint32(buf[pos:pos+4], sm.HNotify)
			binary.LittleEndian.PutUint32(buf[pos+4:pos+8], uint32(len(sm.Data)))
			pos += 8
			copy(buf[pos:], sm.Data)
			pos += len(sm.Data)
		}
	}
	return buf
}

// PeekNotificationLength reads the leading length field of a
// device-notification payload without requiring the rest of the frame,
// returning the total byte count of the frame including the length field
// itself. Used by the dispatcher worker to know how many ring bytes to wait
// for before attempting a full decode.
func PeekNotificationLength(first4Bytes []byte) (uint32, error) {
	if len(first4Bytes) < 4 {
		return 0, fmt.Errorf("ams: need 4 bytes to peek notification length, got %d", len(first4Bytes))
	}
	return binary.LittleEndian.Uint32(first4Bytes[0:4]) + 4, nil
}
