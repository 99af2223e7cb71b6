// Copyright 2021 gotwincat authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package amscore

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mrpasztoradam/amscore/ams"
)

// PortBase is the first local AMS port this package hands out. Local ports
// below PortBase are never used as response-slot table indices.
const PortBase = 30000

// maxLocalPorts bounds the size of the response-slot table. Raising it only
// costs memory (one *ResponseSlot per slot, lazily unused).
const maxLocalPorts = 4096

// DefaultRequestTimeout is used by Write callers that do not specify their
// own timeout.
const DefaultRequestTimeout = 5 * time.Second

// defaultNotificationRingSize sizes a fresh NotificationDispatcher's ring
// buffer, large enough to absorb a burst of notification frames between
// worker wakeups before a slow consumer causes notifications to be dropped.
const defaultNotificationRingSize = 64 * 1024

// AmsConnection owns one TCP socket to one AMS router/device and
// multiplexes every logical request/response and notification stream
// crossing it. A single reader goroutine demultiplexes incoming frames: a
// reply frame is routed to the ResponseSlot reserved for its local port and
// invoke ID; a DEVICE_NOTIFICATION frame is routed to the
// NotificationDispatcher keyed by its target local port. Dispatchers are not
// keyed by remote address: notifications from different remote ports to the
// same local port share one dispatcher.
type AmsConnection struct {
	sock           *Socket
	local          ams.NetID
	remote         ams.Addr
	log            *log.Logger
	notifyRingSize int

	invokeID atomic.Uint32

	slotsMu sync.Mutex
	slots   [maxLocalPorts]*ResponseSlot

	dispMu      sync.Mutex
	dispatchers map[uint16]*NotificationDispatcher

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    atomic.Bool
	readerWG  sync.WaitGroup
}

// Option configures an AmsConnection at construction time.
type Option func(*AmsConnection)

// WithLogger overrides the connection's default logger (log.Default()).
func WithLogger(logger *log.Logger) Option {
	return func(c *AmsConnection) { c.log = logger }
}

// WithNotificationRingSize overrides the byte capacity a freshly created
// NotificationDispatcher's ring buffer is allocated with (the default is
// defaultNotificationRingSize). Smaller values make BufferOverflow easier to
// trigger deliberately; callers expecting large or bursty notifications may
// want a bigger one.
func WithNotificationRingSize(n int) Option {
	return func(c *AmsConnection) { c.notifyRingSize = n }
}

// NewAmsConnection wraps sock and starts the reader goroutine. local is the
// NetID this process presents as the AMS source address; remote identifies
// the peer's NetID (the port component of remote is ignored per-request,
// since each request carries its own target port).
func NewAmsConnection(sock *Socket, local ams.NetID, remote ams.Addr, opts ...Option) *AmsConnection {
	c := &AmsConnection{
		sock:           sock,
		local:          local,
		remote:         remote,
		log:            log.Default(),
		notifyRingSize: defaultNotificationRingSize,
		dispatchers:    make(map[uint16]*NotificationDispatcher),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.readerWG.Add(1)
	go c.readLoop()
	return c
}

// slotIndex maps a local AMS port to its ResponseSlot table index.
func slotIndex(localPort uint16) (int, bool) {
	idx := int(localPort) - PortBase
	if idx < 0 || idx >= maxLocalPorts {
		return 0, false
	}
	return idx, true
}

// slotFor lazily allocates the ResponseSlot for localPort.
func (c *AmsConnection) slotFor(localPort uint16) (*ResponseSlot, error) {
	idx, ok := slotIndex(localPort)
	if !ok {
		return nil, fmt.Errorf("amscore: local port %d out of range", localPort)
	}
	// slotsMu makes check-and-allocate atomic, so every caller on a port
	// gets the same ResponseSlot and a second request on it sees
	// ErrBusyPort from Reserve.
	c.slotsMu.Lock()
	defer c.slotsMu.Unlock()
	if c.slots[idx] == nil {
		c.slots[idx] = NewResponseSlot()
	}
	return c.slots[idx], nil
}

// dispatcherFor returns the NotificationDispatcher for localPort, creating
// it on first use. The map access is always taken under dispMu; there is no
// unlocked fast path, trading a small amount of lock contention for the
// certainty that two callers can never race to create two dispatchers for
// the same port.
func (c *AmsConnection) dispatcherFor(localPort uint16) *NotificationDispatcher {
	c.dispMu.Lock()
	defer c.dispMu.Unlock()
	d, ok := c.dispatchers[localPort]
	if !ok {
		d = NewNotificationDispatcher(c.notifyRingSize, c.log)
		c.dispatchers[localPort] = d
	}
	return d
}

// nextInvokeID returns the next invoke ID, skipping 0 (reserved to mean "no
// correlation" in some ADS tooling traces).
func (c *AmsConnection) nextInvokeID() uint32 {
	for {
		id := c.invokeID.Add(1)
		if id != 0 {
			return id
		}
	}
}

// Write sends an ADS request addressed to target with the given command ID
// and payload, and blocks for up to timeout for the matching reply. It
// returns the reply's payload bytes (the portion after the AoEHeader).
func (c *AmsConnection) Write(localPort uint16, target ams.Addr, cmdID uint16, payload []byte, timeout time.Duration) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrConnectionClosed
	}
	slot, err := c.slotFor(localPort)
	if err != nil {
		return nil, err
	}
	invokeID := c.nextInvokeID()
	if !slot.Reserve(invokeID) {
		return nil, ErrBusyPort
	}

	frame := ams.NewFrame(ams.TcpHeaderSize + ams.AoEHeaderSize + len(payload))
	if err := frame.Append(payload); err != nil {
		slot.Fail(err)
		slot.Wait(0) // release the reservation
		return nil, err
	}
	header := ams.AoEHeader{
		TargetNetID: target.NetID,
		TargetPort:  target.Port,
		SourceNetID: c.local,
		SourcePort:  localPort,
		CmdID:       cmdID,
		StateFlags:  ams.StateFlagADSCmd,
		Length:      uint32(len(payload)),
		InvokeID:    invokeID,
	}
	if err := header.Encode(frame); err != nil {
		slot.Fail(err)
		slot.Wait(0)
		return nil, err
	}
	tcpHeader := ams.TcpHeader{Length: uint32(ams.AoEHeaderSize + len(payload))}
	if err := tcpHeader.Encode(frame); err != nil {
		slot.Fail(err)
		slot.Wait(0)
		return nil, err
	}

	c.writeMu.Lock()
	err = c.sock.WriteFull(frame.Bytes())
	c.writeMu.Unlock()
	if err != nil {
		slot.Fail(err)
		slot.Wait(0)
		return nil, err
	}

	return slot.Wait(timeout)
}

// ReadDeviceInfo sends READ_DEVICE_INFO to target and decodes the device's
// version triple and name from the reply.
func (c *AmsConnection) ReadDeviceInfo(localPort uint16, target ams.Addr, timeout time.Duration) (ams.ReadDeviceInfoResponse, error) {
	reply, err := c.Write(localPort, target, ams.CmdReadDeviceInfo, nil, timeout)
	if err != nil {
		return ams.ReadDeviceInfoResponse{}, err
	}
	info, err := ams.DecodeReadDeviceInfoResponse(reply)
	if err != nil {
		return ams.ReadDeviceInfoResponse{}, err
	}
	if info.Result != ams.ErrNoError {
		return ams.ReadDeviceInfoResponse{}, fmt.Errorf("amscore: read device info: %s", info.Result)
	}
	return info, nil
}

// AddNotification sends ADD_DEVICE_NOTIFICATION for the given symbol
// address (indexGroup/indexOffset/length) on target, wires cb to receive
// the resulting DEVICE_NOTIFICATION samples, and returns a handle whose
// Close deregisters the subscription.
func (c *AmsConnection) AddNotification(localPort uint16, target ams.Addr, indexGroup, indexOffset, length, transMode uint32, cycleTime time.Duration, cb NotificationCallback, timeout time.Duration) (*NotificationHandle, error) {
	req := ams.AddDeviceNotificationRequest{
		IndexGroup:  indexGroup,
		IndexOffset: indexOffset,
		Length:      length,
		TransMode:   uint32(transMode),
		MaxDelay:    uint32(cycleTime / time.Millisecond),
		CycleTime:   uint32(cycleTime / time.Millisecond),
	}
	buf := ams.NewFrame(ams.AddDeviceNotificationRequestSize)
	if err := req.Encode(buf); err != nil {
		return nil, err
	}

	reply, err := c.Write(localPort, target, ams.CmdAddDeviceNotify, buf.Bytes(), timeout)
	if err != nil {
		return nil, err
	}
	if len(reply) < 8 {
		return nil, ErrMalformedFrame
	}
	resp := ams.DecodeAddDeviceNotificationResponse(reply)
	if resp.Result != ams.ErrNoError {
		return nil, fmt.Errorf("amscore: add notification: %s", resp.Result)
	}

	c.CreateNotifyMapping(localPort, resp.HNotify, cb)
	return newNotificationHandle(c, localPort, target, resp.HNotify, timeout), nil
}

// CreateNotifyMapping registers a callback to receive samples for hNotify
// on localPort, creating that port's NotificationDispatcher on first use.
// It does not itself send ADD_DEVICE_NOTIFICATION; callers build and send
// that request via Write and call CreateNotifyMapping once they have the
// handle the device returned.
func (c *AmsConnection) CreateNotifyMapping(localPort uint16, hNotify uint32, cb NotificationCallback) {
	c.dispatcherFor(localPort).Emplace(hNotify, cb)
}

// DeleteNotification unregisters hNotify's callback on localPort and sends
// DEL_DEVICE_NOTIFICATION to target, waiting up to timeout for the
// confirming reply.
func (c *AmsConnection) DeleteNotification(localPort uint16, target ams.Addr, hNotify uint32, timeout time.Duration) error {
	c.dispatcherFor(localPort).Erase(hNotify)

	req := ams.DeleteDeviceNotificationRequest{HNotify: hNotify}
	buf := ams.NewFrame(ams.DeleteDeviceNotificationRequestSize)
	if err := req.Encode(buf); err != nil {
		return err
	}

	reply, err := c.Write(localPort, target, ams.CmdDeleteDeviceNotify, buf.Bytes(), timeout)
	if err != nil {
		return err
	}
	if len(reply) < 4 {
		return ErrMalformedFrame
	}
	resp := ams.DecodeDeleteDeviceNotificationResponse(reply)
	if resp.Result != ams.ErrNoError {
		return fmt.Errorf("amscore: delete notification: %s", resp.Result)
	}
	return nil
}

// readLoop is the connection's single demultiplexing goroutine: read one
// AmsTcpHeader, read its declared AoEHeader+payload, then either deliver the
// frame to the ResponseSlot its invoke ID matches or push it to the
// dispatcher keyed by its local port.
func (c *AmsConnection) readLoop() {
	defer c.readerWG.Done()
	defer c.teardown()

	for {
		var tcpHeaderBuf [ams.TcpHeaderSize]byte
		if err := c.sock.ReadFull(tcpHeaderBuf[:]); err != nil {
			return
		}
		tcpHeader := ams.DecodeTcpHeader(tcpHeaderBuf[:])
		if tcpHeader.Length < ams.AoEHeaderSize {
			c.log.Printf("amscore: reader: %v: declared length %d below header size", ErrMalformedFrame, tcpHeader.Length)
			// Drain the advertised bytes so the next AmsTcpHeader on the
			// wire stays aligned, then keep reading: one bad frame must
			// not poison the whole connection.
			if tcpHeader.Length > 0 {
				junk := make([]byte, tcpHeader.Length)
				if err := c.sock.ReadFull(junk); err != nil {
					return
				}
			}
			continue
		}

		body := make([]byte, tcpHeader.Length)
		if err := c.sock.ReadFull(body); err != nil {
			return
		}
		aoeHeader := ams.DecodeAoEHeader(body[:ams.AoEHeaderSize])
		payload := body[ams.AoEHeaderSize:]

		if aoeHeader.CmdID == ams.CmdDeviceNotification {
			d := c.dispatcherFor(aoeHeader.TargetPort)
			// Rebuild the length-prefixed notification payload the
			// dispatcher expects: it is exactly the AoE payload here,
			// already length-prefixed by the device itself.
			if err := d.Push(payload); err != nil {
				c.log.Printf("amscore: reader: dropping notification on port %d: %v", aoeHeader.TargetPort, err)
			}
			continue
		}

		slot, err := c.slotFor(aoeHeader.TargetPort)
		if err != nil {
			c.log.Printf("amscore: reader: %v", err)
			continue
		}

		// An unrecognized cmdId or a reply missing the response state bit
		// still unblocks whoever is waiting on this slot (with an empty
		// frame) rather than leaving them to time out: the invoke ID
		// already correlated this frame to their request, so silently
		// dropping it would just trade one error (MalformedFrame, visible
		// here in the log) for a worse one (a spurious TimedOut at the
		// caller).
		var replyFrame []byte
		if ams.IsReplyCmd(aoeHeader.CmdID) && ams.HasState(aoeHeader, ams.StateFlagResponse) {
			replyFrame = payload
		} else {
			c.log.Printf("amscore: reader: %v: cmd=%d state=0x%x", ErrMalformedFrame, aoeHeader.CmdID, aoeHeader.StateFlags)
		}

		if !slot.Notify(aoeHeader.InvokeID, replyFrame) {
			c.log.Printf("amscore: reader: %v: port %d invoke %d", ErrInvokeIDMismatch, aoeHeader.TargetPort, aoeHeader.InvokeID)
		}
	}
}

// teardown runs once the reader loop exits for any reason: it marks the
// connection closed, broadcast-releases every reserved ResponseSlot with
// ErrConnectionClosed so no caller blocks forever on a connection that will
// never deliver a reply, and closes every notification dispatcher.
func (c *AmsConnection) teardown() {
	c.closed.Store(true)
	c.slotsMu.Lock()
	for _, slot := range c.slots {
		if slot != nil {
			slot.Fail(ErrConnectionClosed)
		}
	}
	c.slotsMu.Unlock()
	c.dispMu.Lock()
	dispatchers := make([]*NotificationDispatcher, 0, len(c.dispatchers))
	for _, d := range c.dispatchers {
		dispatchers = append(dispatchers, d)
	}
	c.dispMu.Unlock()
	for _, d := range dispatchers {
		d.Close()
	}
}

// Close shuts down the socket, which unblocks the reader goroutine's
// pending read and drives it through teardown, then waits for it to exit.
// Close is idempotent.
func (c *AmsConnection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.sock.Close()
		c.readerWG.Wait()
	})
	return err
}
