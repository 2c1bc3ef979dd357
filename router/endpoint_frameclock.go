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
	"github.com/relaysat/framerouter/pkg/log"
)

// FrameClockEndpoint owns the SOKF listen socket and feeds received
// timing datagrams into the FrameClock state machine. It never sends;
// the Router Core reads ticks from the clock directly.
type FrameClockEndpoint struct {
	*endpointBase
	clock *FrameClock
}

func newFrameClockEndpoint(reactor *Reactor, logger log.Logger, clock *FrameClock) *FrameClockEndpoint {
	ep := &FrameClockEndpoint{clock: clock}
	ep.endpointBase = newEndpointBase("frame-clock", reactor, logger, ep.handle)
	return ep
}

// handle feeds a received datagram to the clock. A non-nil error is
// fatal per the clock's own state machine (spec.md §4.1) and closes
// the socket the same way any other endpoint's fatal socket error
// does, rather than going through onFatalError (there is no transport
// failure here, just a protocol one).
func (e *FrameClockEndpoint) handle(data []byte) {
	if err := e.clock.OnRead(data); err != nil {
		e.logger.Error("frame clock protocol error, closing", "err", err)
		e.stop()
	}
}
