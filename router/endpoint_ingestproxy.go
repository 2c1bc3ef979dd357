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

// IngestProxyEndpoint terminates the K-Band adapter (KBA). It forwards
// whatever it receives, unparsed, to the Router Core as an uplink
// passthrough, and emits whatever it is handed straight to its
// configured destination.
type IngestProxyEndpoint struct {
	*endpointBase
	core     *Core
	destAddr *net.UDPAddr
}

func newIngestProxyEndpoint(reactor *Reactor, logger log.Logger, core *Core) *IngestProxyEndpoint {
	ep := &IngestProxyEndpoint{core: core}
	ep.endpointBase = newEndpointBase("ingest-proxy", reactor, logger, ep.handle)
	return ep
}

func (e *IngestProxyEndpoint) handle(data []byte) {
	e.core.RouteUplinkPassthrough(data)
}

// SendDownlinkPassThroughMessage emits buf to the configured
// destination, unmodified.
func (e *IngestProxyEndpoint) SendDownlinkPassThroughMessage(buf []byte) {
	e.enqueueSend(buf, e.destAddr)
}
