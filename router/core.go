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
	"github.com/relaysat/framerouter/pkg/itm"
	"github.com/relaysat/framerouter/pkg/log"
	"github.com/relaysat/framerouter/pkg/mpls"
)

// uplinkJob is what the Core's shared uplink Delay Scheduler holds:
// an already MPLS-labelled packet plus the classification the Egress
// Batcher needs once it is released. Unlike the mission-data
// endpoint's own downlink scheduler, every uplink packet passes
// through this scheduler regardless of its computed delay (spec.md
// §4.3): a delay of zero still takes one trip through DrainDue on the
// next tick rather than bypassing it.
type uplinkJob struct {
	packet        MPLSPacket
	payloadType   uint8
	isMissionData bool
}

// Core wires the five endpoints, the Frame Clock, the shared uplink
// Delay Scheduler, and the Egress Batcher together, and holds the
// mutable routing tables (delay lookup, drop policies) that the
// dynamic-configuration command surface (SPEC_FULL.md §C.1) mutates.
// The Route* methods touch that state directly and must run on the
// reactor worker, as they do when called from endpoint receive
// handlers; the Change* methods post to the worker and are safe to
// call from any goroutine.
type Core struct {
	reactor *Reactor
	logger  log.Logger
	metrics *Metrics
	cfg     *Config

	busSwitch          *BusSwitchEndpoint
	missionData        *MissionDataEndpoint
	ingestProxy        *IngestProxyEndpoint
	busIngress         *BusIngressEndpoint
	frameClockEndpoint *FrameClockEndpoint
	frameClock         *FrameClock

	uplinkDelay     DelayScheduler
	delayLookup     DelayLookup
	egress          *EgressBatcher
	toSimDropPolicy ToSimDropPolicy

	hplNodeID            NodeID
	localNodeID          NodeID
	mplsQOSForITEDataMsg uint8
	missionDataBypassTPN map[uint8]bool

	lastMissedTicks uint64
}

// NewCore builds a Core and its five endpoints from cfg, wired but not
// yet listening. Call Start to open sockets and begin the reactor
// worker.
func NewCore(cfg *Config, logger log.Logger, metrics *Metrics) *Core {
	reactor := NewReactor(256)
	codec := &Codec{
		GroupMessageID: cfg.GroupMessageID,
		Sizes:          cfg.SizeConfig(),
		Logger:         logger,
	}

	c := &Core{
		reactor:              reactor,
		logger:               logger,
		metrics:              metrics,
		cfg:                  cfg,
		delayLookup:          cfg.BuildDelayTable(),
		hplNodeID:            cfg.HPLNodeID,
		localNodeID:          cfg.LocalNodeID,
		mplsQOSForITEDataMsg: cfg.MPLSQOSForITEDataMsg,
		missionDataBypassTPN: cfg.MissionDataBypassTPN,
	}

	c.frameClock = &FrameClock{ExpectedMsgID: cfg.SOKFMessageID, Logger: logger}
	c.frameClock.OnTick = c.onTick

	c.busSwitch = newBusSwitchEndpoint(reactor, logger, codec, c, cfg.HPLNodeID)
	c.busSwitch.controlAddr = resolveDest(cfg.BusSwitch.ControlDest)
	c.busSwitch.dataAddr = resolveDest(cfg.BusSwitch.DataDest)
	c.busSwitch.metrics = metrics

	c.missionData = newMissionDataEndpoint(reactor, logger, c, cfg.SizeConfig(), cfg.LocalNodeID)
	c.missionData.destAddr = resolveDest(cfg.MissionData.Dest)
	c.missionData.metrics = metrics

	c.ingestProxy = newIngestProxyEndpoint(reactor, logger, c)
	c.ingestProxy.destAddr = resolveDest(cfg.IngestProxy.Dest)
	c.ingestProxy.metrics = metrics

	c.busIngress = newBusIngressEndpoint(reactor, logger)
	c.busIngress.destAddr = resolveDest(cfg.BusIngress.Dest)
	c.busIngress.metrics = metrics

	c.frameClockEndpoint = newFrameClockEndpoint(reactor, logger, c.frameClock)
	c.frameClockEndpoint.metrics = metrics

	c.egress = &EgressBatcher{
		Codec:                 codec,
		MaxPacketsPerTimeslot: cfg.MaxPacketsPerTimeslot,
		Emit:                  c.emitGroup,
		OnDrop:                metrics.toSVDropped.Inc,
	}

	return c
}

// Start opens all five endpoint sockets and the frame clock on the
// reactor worker, and starts that worker's goroutine. Endpoint
// construction (spec.md §4.6) always happens on the reactor, since the
// UDP conns it opens are only ever touched from that goroutine
// afterward.
func (c *Core) Start() error {
	go c.reactor.Run()
	errCh := make(chan error, 1)
	c.reactor.Post(func() {
		errCh <- c.startEndpoints()
	})
	return <-errCh
}

func (c *Core) startEndpoints() error {
	if err := c.busSwitch.start(c.cfg.BusSwitch.Listen); err != nil {
		return err
	}
	if err := c.missionData.start(c.cfg.MissionData.Listen); err != nil {
		return err
	}
	if err := c.ingestProxy.start(c.cfg.IngestProxy.Listen); err != nil {
		return err
	}
	if err := c.busIngress.start(c.cfg.BusIngress.Listen); err != nil {
		return err
	}
	if err := c.frameClockEndpoint.start(c.cfg.FrameClock.Listen); err != nil {
		return err
	}
	c.frameClock.Start()
	return nil
}

// Stop closes every endpoint socket and blocks until the reactor
// worker has exited, satisfying spec.md §5's destruction-blocks-on-
// worker-exit invariant.
func (c *Core) Stop() {
	done := make(chan struct{})
	c.reactor.Post(func() {
		c.busSwitch.stop()
		c.missionData.stop()
		c.ingestProxy.stop()
		c.busIngress.stop()
		c.frameClockEndpoint.stop()
		close(done)
	})
	<-done
	c.reactor.Stop()
}

// RouteUplinkITM is the mission-data endpoint's uplink entry point. It
// derives the synthetic MPLS QoS for the ITM (spec.md §4.3: fixed ITMs
// carry their payload type directly; variable ITMs default to
// out-of-band management QoS unless their embedded ITE sub-header
// marks them a data message, in which case they take the configured
// data-message QoS), applies the fixed-ITM mission-data truncation
// (SPEC_FULL.md §C.4), and hands the resulting packet to
// RouteUplinkMPLSPacket for scheduling.
func (c *Core) RouteUplinkITM(data []byte, source, dest NodeID) {
	h := itm.Parse(data)

	var qos uint8
	payload := data
	if h.IsVITM() {
		if len(data) < itm.HeaderSize+2 {
			c.logger.Error("uplink vitm too short for ite sub-header", "len", len(data))
			return
		}
		ite := itm.ParseITEHeader(data[itm.HeaderSize:])
		if ite.IsDataMessage() {
			qos = c.mplsQOSForITEDataMsg
		} else {
			qos = itm.QOSOAM
		}
	} else {
		if len(data) < 1 {
			return
		}
		if h.IsMissionDataPayloadType() {
			payload = data[:len(data)-1]
		}
		qos = h.GetPayloadType()
	}

	label := mpls.FakeForQOS(qos)
	buf := make([]byte, 0, mpls.HeaderSize+len(payload))
	labelBytes := label.Encode()
	buf = append(buf, labelBytes[:]...)
	buf = append(buf, payload...)

	c.metrics.uplinkITMsRouted.WithLabelValues(sourceLabel(h)).Inc()
	c.RouteUplinkMPLSPacket(MPLSPacket{Bytes: buf}, h.GetPayloadType(), h.IsMissionDataPayloadType(), source, dest)
}

func sourceLabel(h itm.Header) string {
	if h.IsMissionDataPayloadType() {
		return "mission-data"
	}
	return "other"
}

// RouteUplinkMPLSPacket schedules an already MPLS-labelled uplink
// packet on the shared uplink Delay Scheduler, to be released no
// earlier than the current frame plus the configured (source, dest)
// delay (invariant I1).
func (c *Core) RouteUplinkMPLSPacket(packet MPLSPacket, payloadType uint8, isMissionData bool, source, dest NodeID) {
	delay := c.delayLookup.Delay(source, dest)
	release := c.frameClock.FrameCount() + delay
	c.uplinkDelay.Enqueue(release, uplinkJob{packet: packet, payloadType: payloadType, isMissionData: isMissionData})
	c.metrics.delayQueueDepth.Set(float64(c.uplinkDelay.Len()))
}

// RouteUplinkPassthrough forwards a raw uplink buffer straight to the
// bus-switch's Control-plane destination, bypassing the codec,
// scheduler, and batcher entirely (spec.md §4.5).
func (c *Core) RouteUplinkPassthrough(buf []byte) {
	c.busSwitch.RouteUplinkPassthrough(buf)
}

// RouteDownlinkMPLSPacket routes one decoded downlink MPLS packet
// (label + ITM) to either the mission-data endpoint directly or the
// bus-ingress endpoint, per the mission-data-bypass-TPN table. A
// packet that is not bypassed is checked against the to-SIM drop
// policy before it is forwarded to bus-ingress.
func (c *Core) RouteDownlinkMPLSPacket(buf []byte) {
	if len(buf) < mpls.HeaderSize+itm.HeaderSize {
		c.logger.Error("downlink mpls packet shorter than header minimum", "len", len(buf))
		return
	}
	itmBytes := buf[mpls.HeaderSize:]
	h := itm.Parse(itmBytes)
	dst := h.GetDestinationId()

	if c.missionDataBypassTPN[dst] && h.IsMissionDataPayloadType() {
		c.missionData.SendDownlinkITM(itmBytes, c.delayLookup, c.frameClock.FrameCount())
		c.metrics.downlinkPacketsRouted.WithLabelValues("mission-data").Inc()
		return
	}
	if c.toSimDropPolicy != nil && c.toSimDropPolicy.Apply(h.GetPayloadType()) {
		c.metrics.toSIMDropped.Inc()
		return
	}
	c.busIngress.SendDownlinkMPLSPacket(buf)
	c.metrics.downlinkPacketsRouted.WithLabelValues("bus-ingress").Inc()
}

// RouteDownlinkPassthrough forwards a whole downlink group message,
// unmodified, to the ingest-proxy endpoint. The bus-switch endpoint
// calls this once per received group message that contained at least
// one packet addressed to the HPL node id, after routing every other
// packet in that message individually (spec.md §4.4).
func (c *Core) RouteDownlinkPassthrough(buf []byte) {
	c.ingestProxy.SendDownlinkPassThroughMessage(buf)
	c.metrics.downlinkPacketsRouted.WithLabelValues("ingest-proxy").Inc()
}

// onTick is the Frame Clock's per-accepted-datagram callback. It
// releases the mission-data endpoint's own due downlink sends, then
// drains the shared uplink Delay Scheduler into the Egress Batcher,
// then finalizes any partially-filled batch. Only the mission-data and
// bus-switch (via the batcher) endpoints observe ticks; ingest-proxy,
// bus-ingress, and the frame-clock endpoint itself do not.
func (c *Core) onTick() {
	frame := c.frameClock.FrameCount()
	c.missionData.OnTick(frame)

	c.uplinkDelay.DrainDue(frame, func(payload any) {
		job := payload.(uplinkJob)
		c.egress.Add(job.packet, job.payloadType, job.isMissionData)
	})
	c.metrics.delayQueueDepth.Set(float64(c.uplinkDelay.Len()))
	c.egress.Finalize()

	if missed := c.frameClock.MissedTicks(); missed > c.lastMissedTicks {
		c.metrics.missedTicks.Add(float64(missed - c.lastMissedTicks))
		c.lastMissedTicks = missed
	}
}

func (c *Core) emitGroup(plane Plane, groupMessage []byte) {
	c.metrics.batchesEmitted.WithLabelValues(plane.String()).Inc()
	c.metrics.batchBytes.WithLabelValues(plane.String()).Observe(float64(len(groupMessage)))
	c.busSwitch.SendGroup(plane, groupMessage)
}

// ChangeDelayTable applies a dynamic-configuration change to the
// active delay lookup table on the reactor worker.
func (c *Core) ChangeDelayTable(change ConfigChange) {
	c.reactor.Post(func() {
		change.Apply(&c.delayLookup)
	})
}

// ChangeDelayTableToDefault resets the delay lookup table to the
// TOML-configured default on the reactor worker.
func (c *Core) ChangeDelayTableToDefault() {
	def := c.cfg.BuildDelayTable()
	c.reactor.Post(func() {
		c.delayLookup = def
	})
}

// ChangeToSVDropPolicy applies a dynamic-configuration change to the
// uplink (to-SV) drop policy on the reactor worker.
func (c *Core) ChangeToSVDropPolicy(change ConfigChange) {
	c.reactor.Post(func() {
		change.Apply(&c.egress.ToSVDropPolicy)
	})
}

// ChangeToSIMDropPolicy applies a dynamic-configuration change to the
// downlink (to-SIM) drop policy on the reactor worker.
func (c *Core) ChangeToSIMDropPolicy(change ConfigChange) {
	c.reactor.Post(func() {
		change.Apply(&c.toSimDropPolicy)
	})
}
