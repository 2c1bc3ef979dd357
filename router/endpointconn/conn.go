// Copyright 2026 The Frame Router Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package endpointconn provides the UDP socket lifecycle shared by all
// five endpoint workers: a read loop, a strictly serialized send
// queue with exactly one outstanding write at a time, and idempotent
// cancellation. All queue and completion state is touched only by the
// caller-supplied Post function, so a single reactor worker can own
// several Conns without locking.
package endpointconn

import (
	"errors"
	"net"
	"sync"

	"github.com/relaysat/framerouter/pkg/log"
)

// MaxDatagramSize is the largest UDP datagram the router will read,
// per spec.md §6 (MAX_UDP_BUFFER).
const MaxDatagramSize = 65535

type writeJob struct {
	buf  []byte
	addr *net.UDPAddr
}

// Conn wraps one UDP socket with a send queue and read loop. Posted
// work (OnReadData, OnFatalError, and write completion) is only ever
// invoked through Post, so all queue mutation is serialized on one
// goroutine.
type Conn struct {
	// Post schedules fn to run on the owning reactor worker.
	Post func(fn func())
	// OnReadData is invoked (on the reactor) with each successfully
	// received datagram.
	OnReadData func(buf []byte)
	// OnFatalError is invoked (on the reactor) when the socket must be
	// considered dead: a non-cancellation read or write error.
	OnFatalError func(err error)
	// OnQueueDepth, if set, is invoked (on the reactor) with the send
	// queue's length whenever it changes.
	OnQueueDepth func(depth int)
	Logger       log.Logger

	conn      *net.UDPConn
	writeCh   chan writeJob
	queue     [][]byte
	queueAddr []*net.UDPAddr
	writing   bool
	closeOnce sync.Once
	closed    bool
	readDone  chan struct{}
}

// socketBufferBytes sizes the kernel receive/send buffers on every
// endpoint socket. Set generously above MaxDatagramSize so a burst of
// datagrams arriving faster than the reactor drains them does not
// trigger kernel-side drops before OnReadData ever sees them.
const socketBufferBytes = 1 << 20

// Listen opens a UDP socket bound to addr. The read and write loops
// begin only when Start is called.
func Listen(addr string) (*Conn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	_ = conn.SetReadBuffer(socketBufferBytes)
	_ = conn.SetWriteBuffer(socketBufferBytes)
	return &Conn{
		conn:     conn,
		writeCh:  make(chan writeJob, 1),
		readDone: make(chan struct{}),
	}, nil
}

func (c *Conn) logger() log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Root()
}

// Start launches the reader and writer goroutines. Must be called
// after OnReadData, OnFatalError, and Post are set.
func (c *Conn) Start() {
	go c.readLoop()
	go c.writeLoop()
}

func (c *Conn) readLoop() {
	defer close(c.readDone)
	buf := make([]byte, MaxDatagramSize)
	for {
		n, _, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			if c.isCancellation(err) {
				return
			}
			c.Post(func() { c.OnFatalError(err) })
			return
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		c.Post(func() { c.OnReadData(data) })
	}
}

func (c *Conn) writeLoop() {
	for job := range c.writeCh {
		_, err := c.conn.WriteToUDP(job.buf, job.addr)
		c.Post(func() { c.onWriteComplete(err) })
	}
}

// EnqueueSend appends buf to the send queue, addressed to addr. If the
// queue was empty, a write is initiated immediately (I2). Must be
// called from the reactor worker.
func (c *Conn) EnqueueSend(buf []byte, addr *net.UDPAddr) {
	if c.closed {
		return
	}
	wasEmpty := len(c.queue) == 0
	c.queue = append(c.queue, buf)
	c.queueAddr = append(c.queueAddr, addr)
	c.reportQueueDepth()
	if wasEmpty && !c.writing {
		c.doWrite()
	}
}

func (c *Conn) reportQueueDepth() {
	if c.OnQueueDepth != nil {
		c.OnQueueDepth(len(c.queue))
	}
}

func (c *Conn) doWrite() {
	if len(c.queue) == 0 {
		return
	}
	c.writing = true
	c.writeCh <- writeJob{buf: c.queue[0], addr: c.queueAddr[0]}
}

func (c *Conn) onWriteComplete(err error) {
	c.writing = false
	if err != nil {
		if c.isCancellation(err) {
			return
		}
		c.OnFatalError(err)
		return
	}
	c.queue = c.queue[1:]
	c.queueAddr = c.queueAddr[1:]
	c.reportQueueDepth()
	if len(c.queue) > 0 {
		c.doWrite()
	}
}

// LocalAddr returns the socket's bound local address.
func (c *Conn) LocalAddr() *net.UDPAddr {
	return c.conn.LocalAddr().(*net.UDPAddr)
}

// CancelAndCloseSocket cancels the outstanding read/write and closes
// the socket. Idempotent: calling it again on an already-closed Conn
// is a no-op.
func (c *Conn) CancelAndCloseSocket() {
	c.closeOnce.Do(func() {
		c.closed = true
		_ = c.conn.Close()
		close(c.writeCh)
	})
}

func (c *Conn) isCancellation(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
