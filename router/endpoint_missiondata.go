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

// MissionDataEndpoint terminates the mission-data gateway simulator.
// On receive, it forwards validated uplink ITMs to the Router Core.
// On send, it applies its own delay scheduler to downlink ITMs handed
// to it by the Router Core, bypassing the scheduler entirely when the
// configured delay is zero (spec.md §4.2).
type MissionDataEndpoint struct {
	*endpointBase
	core        *Core
	sizes       SizeConfig
	localNodeID NodeID
	destAddr    *net.UDPAddr
	delay       DelayScheduler
}

func newMissionDataEndpoint(reactor *Reactor, logger log.Logger, core *Core, sizes SizeConfig, localNodeID NodeID) *MissionDataEndpoint {
	ep := &MissionDataEndpoint{core: core, sizes: sizes, localNodeID: localNodeID}
	ep.endpointBase = newEndpointBase("mission-data", reactor, logger, ep.handle)
	return ep
}

// handle validates the received ITM's size against its variant and
// forwards it to the Router Core if its payload type is mission-data.
// It reads the source node from the ground-sim "alt" header layout
// (spec.md §9 Open Question (b)): see itm.SourceNodeAlt.
func (e *MissionDataEndpoint) handle(data []byte) {
	if len(data) < itm.HeaderSize {
		e.logger.Error("mission-data itm shorter than header", "len", len(data))
		return
	}
	h := itm.Parse(data)
	if !e.validSize(h, len(data)) {
		e.logger.Error("mission-data itm size does not match its variant",
			"len", len(data), "vitm", h.IsVITM())
		return
	}
	if !h.IsMissionDataPayloadType() {
		e.logger.Info("discarding non-mission-data uplink itm", "plt", h.GetPayloadType())
		return
	}

	source, ok := itm.SourceNodeAlt(data)
	if !ok {
		e.logger.Error("mission-data itm too short for alt source-node layout", "len", len(data))
		return
	}
	e.core.RouteUplinkITM(data, source, h.GetDestinationId())
}

func (e *MissionDataEndpoint) validSize(h itm.Header, length int) bool {
	if h.IsVITM() {
		return length >= itm.HeaderSize+e.sizes.MinVITMPayloadSize &&
			length <= itm.HeaderSize+e.sizes.MaxVITMPayloadSize
	}
	return length == itm.HeaderSize+e.sizes.FixedITMPayloadSize
}

// SendDownlinkITM is invoked by the Router Core's downlink routing
// path. It derives the destination from the ITM's header and the
// source from the configured local node id, then either bypasses the
// delay scheduler (delay == 0) or holds the ITM until its release
// frame.
func (e *MissionDataEndpoint) SendDownlinkITM(itmBuf []byte, delayLookup DelayLookup, currentFrame uint32) {
	h := itm.Parse(itmBuf)
	dest := h.GetDestinationId()
	delay := delayLookup.Delay(e.localNodeID, dest)
	if delay == 0 {
		e.enqueueSend(itmBuf, e.destAddr)
		return
	}
	e.delay.Enqueue(currentFrame+delay, itmBuf)
}

// OnTick releases due downlink ITMs into the send queue.
func (e *MissionDataEndpoint) OnTick(currentFrame uint32) {
	e.delay.DrainDue(currentFrame, func(payload any) {
		e.enqueueSend(payload.([]byte), e.destAddr)
	})
}
