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
)

// BusIngressEndpoint terminates the ground-side ingest proxy (TPN).
// Its detailed behaviour is out of scope (spec.md §4.5); it presents
// only the send entry point the Router Core's downlink routing uses.
type BusIngressEndpoint struct {
	*endpointBase
	destAddr *net.UDPAddr
}

func newBusIngressEndpoint(reactor *Reactor, logger log.Logger) *BusIngressEndpoint {
	ep := &BusIngressEndpoint{}
	ep.endpointBase = newEndpointBase("bus-ingress", reactor, logger, ep.handle)
	return ep
}

func (e *BusIngressEndpoint) handle(data []byte) {
	e.logger.Debug("bus-ingress endpoint received unsolicited datagram", "len", len(data))
}

// SendDownlinkMPLSPacket emits an intact MPLS-labelled packet to the
// configured destination.
func (e *BusIngressEndpoint) SendDownlinkMPLSPacket(buf []byte) {
	e.enqueueSend(buf, e.destAddr)
}
