package amscore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrpasztoradam/amscore/ams"
)

func TestNotificationHandleCloseSendsDeleteOnce(t *testing.T) {
	conn, peer := newMockPeer(t)
	defer conn.Close()

	target := ams.Addr{NetID: ams.NetID{10, 0, 0, 2, 1, 1}, Port: 851}
	addDone := make(chan *NotificationHandle)
	var addErr error
	go func() {
		h, err := conn.AddNotification(30005, target, 1, 2, 4, 4, 0, func(ams.NotificationStamp) {}, time.Second)
		addErr = err
		addDone <- h
	}()

	req, _ := peer.readRequest()
	assert.Equal(t, ams.CmdAddDeviceNotify, req.CmdID)
	addReply := make([]byte, 8) // result=0 (ErrNoError), hNotify=55
	addReply[4] = 55
	peer.writeReply(req, addReply)

	handle := <-addDone
	require.NoError(t, addErr)
	require.NotNil(t, handle)
	assert.Equal(t, uint32(55), handle.HNotify())

	closeDone := make(chan error)
	go func() { closeDone <- handle.Close() }()

	delReq, payload := peer.readRequest()
	assert.Equal(t, ams.CmdDeleteDeviceNotify, delReq.CmdID)
	require.Len(t, payload, 4)
	assert.Equal(t, uint32(55), uint32(payload[0])|uint32(payload[1])<<8|uint32(payload[2])<<16|uint32(payload[3])<<24)
	peer.writeReply(delReq, []byte{0, 0, 0, 0})

	require.NoError(t, <-closeDone)

	// Second Close must not send anything further and must return nil.
	require.NoError(t, handle.Close())
}

func TestNotificationHandleCloseSkipsNetworkAfterConnectionClosed(t *testing.T) {
	conn, peer := newMockPeer(t)

	target := ams.Addr{NetID: ams.NetID{10, 0, 0, 2, 1, 1}, Port: 851}
	handle := newNotificationHandle(conn, 30006, target, 99, time.Second)

	require.NoError(t, conn.Close())
	peer.conn.Close()

	assert.NoError(t, handle.Close())
}
