package ams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceNotificationRoundTrip(t *testing.T) {
	want := &DeviceNotification{
		Stamps: []NotificationStamp{
			{
				Timestamp: 132223372800000000,
				Samples: []NotificationSample{
					{HNotify: 1, Data: []byte{0x01, 0x02, 0x03, 0x04}},
					{HNotify: 2, Data: []byte{0xFF}},
				},
			},
		},
	}

	wire := EncodeDeviceNotification(want)
	got, err := DecodeDeviceNotification(wire)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeDeviceNotificationTruncated(t *testing.T) {
	_, err := DecodeDeviceNotification([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrTruncatedNotification)

	// Declares a length longer than the buffer actually holds.
	buf := make([]byte, 8)
	buf[0] = 100
	_, err = DecodeDeviceNotification(buf)
	assert.ErrorIs(t, err, ErrTruncatedNotification)
}

func TestPeekNotificationLength(t *testing.T) {
	notif := &DeviceNotification{Stamps: []NotificationStamp{{Samples: []NotificationSample{{HNotify: 1, Data: []byte{9}}}}}}
	wire := EncodeDeviceNotification(notif)

	total, err := PeekNotificationLength(wire[:4])
	require.NoError(t, err)
	assert.Equal(t, uint32(len(wire)), total)
}
