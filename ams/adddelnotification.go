// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ams

import "encoding/binary"

// Transmission mode for ADD_DEVICE_NOTIFICATION (AdsTransMode).
const (
	TransModeNone         uint32 = 0
	TransModeClientCycle  uint32 = 3
	TransModeClientOnChange uint32 = 4
)

// AddDeviceNotificationRequest is the ADS payload of an
// ADD_DEVICE_NOTIFICATION request: which variable to watch and how.
type AddDeviceNotificationRequest struct {
	IndexGroup  uint32
	IndexOffset uint32
	Length      uint32
	TransMode   uint32
	MaxDelay    uint32 // milliseconds
	CycleTime   uint32 // milliseconds
}

// Encode appends the request body to f. The AoEHeader and AmsTcpHeader are
// prepended afterwards, once the payload size is known.
func (r AddDeviceNotificationRequest) Encode(f *Frame) error {
	if err := f.AppendUint32(r.IndexGroup); err != nil {
		return err
	}
	if err := f.AppendUint32(r.IndexOffset); err != nil {
		return err
	}
	if err := f.AppendUint32(r.Length); err != nil {
		return err
	}
	if err := f.AppendUint32(r.TransMode); err != nil {
		return err
	}
	if err := f.AppendUint32(r.MaxDelay); err != nil {
		return err
	}
	if err := f.AppendUint32(r.CycleTime); err != nil {
		return err
	}
	// Reserved (16 bytes), must be present but is otherwise unused.
	var reserved [16]byte
	return f.Append(reserved[:])
}

// AddDeviceNotificationRequestSize is the fixed wire size of the request
// payload (6 uint32 fields plus a 16-byte reserved block).
const AddDeviceNotificationRequestSize = 6*4 + 16

// AddDeviceNotificationResponse is the ADS payload of an
// ADD_DEVICE_NOTIFICATION response: the result code and the handle the
// device assigned, to be quoted back in the matching DeleteDeviceNotification
// and matched against DEVICE_NOTIFICATION samples' HNotify field.
type AddDeviceNotificationResponse struct {
	Result  ErrorCode
	HNotify uint32
}

// DecodeAddDeviceNotificationResponse parses the 8-byte response payload.
func DecodeAddDeviceNotificationResponse(b []byte) AddDeviceNotificationResponse {
	return AddDeviceNotificationResponse{
		Result:  ErrorCode(binary.LittleEndian.Uint32(b[0:4])),
		HNotify: binary.LittleEndian.Uint32(b[4:8]),
	}
}

// DeleteDeviceNotificationRequest is the ADS payload of a
// DEL_DEVICE_NOTIFICATION request.
type DeleteDeviceNotificationRequest struct {
	HNotify uint32
}

// Encode appends the request body to f.
func (r DeleteDeviceNotificationRequest) Encode(f *Frame) error {
	return f.AppendUint32(r.HNotify)
}

// DeleteDeviceNotificationRequestSize is the fixed wire size of the request.
const DeleteDeviceNotificationRequestSize = 4

// DeleteDeviceNotificationResponse is the ADS payload of a
// DEL_DEVICE_NOTIFICATION response: just the result code.
type DeleteDeviceNotificationResponse struct {
	Result ErrorCode
}

// DecodeDeleteDeviceNotificationResponse parses the 4-byte response payload.
func DecodeDeleteDeviceNotificationResponse(b []byte) DeleteDeviceNotificationResponse {
	return DeleteDeviceNotificationResponse{Result: ErrorCode(binary.LittleEndian.Uint32(b[0:4]))}
}
