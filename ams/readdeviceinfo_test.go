package ams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReadDeviceInfoResponse(t *testing.T) {
	buf := make([]byte, ReadDeviceInfoResponseSize)
	buf[4], buf[5] = 3, 1
	buf[6], buf[7] = 0x10, 0x27 // build 10000, little-endian
	copy(buf[8:], "PLC1")

	got, err := DecodeReadDeviceInfoResponse(buf)
	require.NoError(t, err)
	assert.Equal(t, ReadDeviceInfoResponse{
		Result:       ErrNoError,
		MajorVersion: 3,
		MinorVersion: 1,
		BuildVersion: 10000,
		DeviceName:   "PLC1",
	}, got)
}

func TestDecodeReadDeviceInfoResponseTruncated(t *testing.T) {
	_, err := DecodeReadDeviceInfoResponse(make([]byte, ReadDeviceInfoResponseSize-1))
	assert.Error(t, err)
}
