package ams

import (
	"testing"

	"github.com/pascaldekloe/goe/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTcpHeaderRoundTrip(t *testing.T) {
	h := TcpHeader{Reserved: 0, Length: 42}
	f := NewFrame(TcpHeaderSize)
	require.NoError(t, h.Encode(f))
	require.Equal(t, TcpHeaderSize, f.Len())

	got := DecodeTcpHeader(f.Bytes())
	verify.Values(t, "tcp header", got, h)
}

func TestAoEHeaderRoundTrip(t *testing.T) {
	h := AoEHeader{
		TargetNetID: NetID{192, 168, 1, 10, 1, 1},
		TargetPort:  851,
		SourceNetID: NetID{10, 0, 0, 5, 1, 1},
		SourcePort:  30000,
		CmdID:       CmdRead,
		StateFlags:  StateFlagADSCmd,
		Length:      12,
		ErrorCode:   0,
		InvokeID:    7,
	}
	f := NewFrame(AoEHeaderSize)
	require.NoError(t, h.Encode(f))
	require.Equal(t, AoEHeaderSize, f.Len())

	got := DecodeAoEHeader(f.Bytes())
	verify.Values(t, "aoe header", got, h)
}

func TestIsReplyCmd(t *testing.T) {
	assert.True(t, IsReplyCmd(CmdRead))
	assert.True(t, IsReplyCmd(CmdAddDeviceNotify))
	assert.False(t, IsReplyCmd(CmdDeviceNotification))
}

func TestHasState(t *testing.T) {
	h := AoEHeader{StateFlags: StateFlagADSCmd | StateFlagResponse}
	assert.True(t, HasState(h, StateFlagResponse))
	assert.True(t, HasState(h, StateFlagADSCmd|StateFlagResponse))
	assert.False(t, HasState(h, 0x0002))
}

func TestAddrString(t *testing.T) {
	a := Addr{NetID: NetID{192, 168, 1, 10, 1, 1}, Port: 851}
	assert.Equal(t, "192.168.1.10.1.1:851", a.String())
}
