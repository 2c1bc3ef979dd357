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

	"github.com/relaysat/framerouter/pkg/itm"
	"github.com/relaysat/framerouter/pkg/log"
)

// BusSwitchEndpoint is the VMW-style peer: it receives batched
// downlink group messages and transmits batched uplink group messages
// to either the Control-plane or Data-plane destination, chosen
// per-message by the Egress Batcher's flushed plane.
type BusSwitchEndpoint struct {
	*endpointBase
	codec       *Codec
	core        *Core
	hplNodeID   NodeID
	controlAddr *net.UDPAddr
	dataAddr    *net.UDPAddr
}

func newBusSwitchEndpoint(reactor *Reactor, logger log.Logger, codec *Codec, core *Core, hplNodeID NodeID) *BusSwitchEndpoint {
	ep := &BusSwitchEndpoint{codec: codec, core: core, hplNodeID: hplNodeID}
	ep.endpointBase = newEndpointBase("bus-switch", reactor, logger, ep.handle)
	return ep
}

// handle decodes a downlink group message and, per packet, either
// marks the whole message for ingest-proxy passthrough (HPL
// destination) or asks the Router Core to route the individual
// packet. Every non-HPL packet in the message is routed individually
// as the loop runs; once it finishes, a message containing at least
// one HPL-addressed packet is additionally forwarded whole and
// unmodified to the ingest-proxy endpoint.
func (e *BusSwitchEndpoint) handle(data []byte) {
	packets, ok := e.codec.Decode(data)
	if !ok {
		e.core.metrics.invalidGroupMessages.Inc()
		return
	}

	routeToHPL := false
	for _, p := range packets {
		h := itm.Parse(p.Bytes[4:])
		if h.GetDestinationId() == e.hplNodeID {
			routeToHPL = true
			continue
		}
		e.core.RouteDownlinkMPLSPacket(p.Bytes)
	}
	if routeToHPL {
		e.core.RouteDownlinkPassthrough(data)
	}
	e.core.metrics.mplsPacketsConverted.Add(float64(len(packets)))
}

// SendGroup transmits an encoded group message to the plane's
// configured destination.
func (e *BusSwitchEndpoint) SendGroup(plane Plane, groupMessage []byte) {
	addr := e.controlAddr
	if plane == Data {
		addr = e.dataAddr
	}
	e.enqueueSend(groupMessage, addr)
}

// RouteUplinkPassthrough forwards a raw uplink passthrough buffer
// straight to the Control-plane destination, bypassing the codec,
// delay scheduler, and egress batcher entirely.
func (e *BusSwitchEndpoint) RouteUplinkPassthrough(buf []byte) {
	e.enqueueSend(buf, e.controlAddr)
}
