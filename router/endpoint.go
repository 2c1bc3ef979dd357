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

package router

import (
	"net"

	"github.com/relaysat/framerouter/pkg/log"
	"github.com/relaysat/framerouter/router/endpointconn"
)

// endpointBase is the shape shared by all five endpoint workers: one
// UDP socket with a strictly serialized send queue, a component-
// specific read handler, and the standard fatal-vs-cancellation error
// rule (spec.md §4.5).
type endpointBase struct {
	name    string
	conn    *endpointconn.Conn
	reactor *Reactor
	logger  log.Logger
	handle  func(data []byte)
	metrics *Metrics
}

func newEndpointBase(name string, reactor *Reactor, logger log.Logger, handle func([]byte)) *endpointBase {
	return &endpointBase{name: name, reactor: reactor, logger: logger, handle: handle}
}

// start opens the listen socket and begins reading. Must be called on
// the reactor worker, per spec.md §4.6 ("starts all endpoints via
// reactor post").
func (e *endpointBase) start(listenAddr string) error {
	conn, err := endpointconn.Listen(listenAddr)
	if err != nil {
		return err
	}
	conn.Post = e.reactor.Post
	conn.OnReadData = e.onReadData
	conn.OnFatalError = e.onFatalError
	conn.OnQueueDepth = e.onQueueDepth
	conn.Logger = e.logger
	e.conn = conn
	conn.Start()
	return nil
}

func (e *endpointBase) onQueueDepth(depth int) {
	if e.metrics != nil {
		e.metrics.sendQueueDepth.WithLabelValues(e.name).Set(float64(depth))
	}
}

func (e *endpointBase) onReadData(data []byte) {
	if e.handle != nil {
		e.handle(data)
	}
}

func (e *endpointBase) onFatalError(err error) {
	e.logger.Error("endpoint socket error, closing", "endpoint", e.name, "err", err)
	e.conn.CancelAndCloseSocket()
}

// enqueueSend pushes buf onto the send queue addressed to addr. Must
// be called on the reactor worker.
func (e *endpointBase) enqueueSend(buf []byte, addr *net.UDPAddr) {
	if addr == nil {
		return
	}
	e.conn.EnqueueSend(buf, addr)
}

// stop idempotently cancels and closes the endpoint's socket.
func (e *endpointBase) stop() {
	if e.conn != nil {
		e.conn.CancelAndCloseSocket()
	}
}

// resolveDest parses addr into a *net.UDPAddr, or returns nil if addr
// is empty or matches the invalid-address sentinel (spec.md §6): the
// corresponding route becomes a silent drop.
func resolveDest(addr string) *net.UDPAddr {
	if addr == "" {
		return nil
	}
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil
	}
	if udpAddr.IP.IsUnspecified() && udpAddr.Port == InvalidPort {
		return nil
	}
	return udpAddr
}
