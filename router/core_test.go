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

package router_test

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaysat/framerouter/pkg/itm"
	"github.com/relaysat/framerouter/pkg/log/testlog"
	"github.com/relaysat/framerouter/pkg/mpls"
	"github.com/relaysat/framerouter/router"
)

func newTestConfig(basePort int) *router.Config {
	p := func(offset int) string { return fmtAddr(basePort + offset) }
	cfg := &router.Config{}
	cfg.BusSwitch.Listen = p(0)
	cfg.BusSwitch.ControlDest = p(1)
	cfg.BusSwitch.DataDest = p(2)
	cfg.MissionData.Listen = p(3)
	cfg.MissionData.Dest = p(4)
	cfg.IngestProxy.Listen = p(5)
	cfg.IngestProxy.Dest = p(6)
	cfg.BusIngress.Listen = p(7)
	cfg.BusIngress.Dest = p(8)
	cfg.FrameClock.Listen = p(9)
	cfg.HPLNodeID = 250
	cfg.LocalNodeID = 3
	cfg.InitDefaults()
	return cfg
}

func fmtAddr(port int) string {
	return "127.0.0.1:" + strconv.Itoa(port)
}

// TestCoreRoutesUplinkMissionDataToBusSwitchDataPlane exercises the full
// uplink path end to end: a fixed mission-data ITM arrives on the
// mission-data socket, gets MPLS-labelled, delay-scheduled, and, once a
// timing datagram ticks the frame clock, batched out to the bus-switch's
// Data-plane destination.
func TestCoreRoutesUplinkMissionDataToBusSwitchDataPlane(t *testing.T) {
	cfg := newTestConfig(23100)
	metrics := router.NewMetrics(nil)
	core := router.NewCore(cfg, testlog.New(t), metrics)
	require.NoError(t, core.Start())
	defer core.Stop()

	dataPlane, err := net.ListenUDP("udp", mustResolve(t, cfg.BusSwitch.DataDest))
	require.NoError(t, err)
	defer dataPlane.Close()

	missionClient, err := net.DialUDP("udp", nil, mustResolve(t, cfg.MissionData.Listen))
	require.NoError(t, err)
	defer missionClient.Close()

	clockClient, err := net.DialUDP("udp", nil, mustResolve(t, cfg.FrameClock.Listen))
	require.NoError(t, err)
	defer clockClient.Close()

	h := itm.Header{CI: false, PLT: itm.PayloadTypeMDD, DstNID: 9}
	hdr := h.Encode()
	itmBuf := append(append([]byte{}, hdr[:]...), make([]byte, cfg.FixedITMPayloadSize)...)
	_, err = missionClient.Write(itmBuf)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, err = clockClient.Write(sokfDatagram(cfg.SOKFMessageID, 0))
	require.NoError(t, err)

	dataPlane.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 2048)
	n, _, err := dataPlane.ReadFromUDP(buf)
	require.NoError(t, err)

	codec := &router.Codec{GroupMessageID: cfg.GroupMessageID, Sizes: cfg.SizeConfig()}
	// The uplink truncation (SPEC_FULL.md §C.4) drops the fixed ITM's
	// last payload byte before MPLS-labelling, so the decoded packet
	// carries FixedITMPayloadSize-1 payload bytes rather than the full
	// fixed size the codec otherwise expects; adjust Sizes to match.
	codec.Sizes.FixedITMPayloadSize--
	packets, ok := codec.Decode(buf[:n])
	require.True(t, ok)
	require.Len(t, packets, 1)

	itmPortion := packets[0].ITM()
	assert.Len(t, itmPortion, itm.HeaderSize+cfg.FixedITMPayloadSize-1)

	label := mpls.Parse(packets[0].Bytes[:mpls.HeaderSize])
	assert.Equal(t, uint8(itm.PayloadTypeMDD), label.QOS)
}

// TestCoreRoutesDownlinkMPLSPacketToBusIngress exercises the downlink
// path: a group message carrying one fixed ITM addressed to a node
// other than the HPL node arrives on the bus-switch socket and is
// forwarded, as the intact MPLS packet it arrived as, to the
// bus-ingress endpoint's destination.
func TestCoreRoutesDownlinkMPLSPacketToBusIngress(t *testing.T) {
	cfg := newTestConfig(23200)
	metrics := router.NewMetrics(nil)
	core := router.NewCore(cfg, testlog.New(t), metrics)
	require.NoError(t, core.Start())
	defer core.Stop()

	busIngress, err := net.ListenUDP("udp", mustResolve(t, cfg.BusIngress.Dest))
	require.NoError(t, err)
	defer busIngress.Close()

	busSwitchClient, err := net.DialUDP("udp", nil, mustResolve(t, cfg.BusSwitch.Listen))
	require.NoError(t, err)
	defer busSwitchClient.Close()

	h := itm.Header{CI: false, PLT: itm.PayloadTypeMDD, DstNID: 9}
	hdr := h.Encode()
	itmBuf := append(append([]byte{}, hdr[:]...), make([]byte, cfg.FixedITMPayloadSize)...)
	mplsPacket := append([]byte{0, 0, 0, 0}, itmBuf...)

	codec := &router.Codec{GroupMessageID: cfg.GroupMessageID, Sizes: cfg.SizeConfig()}
	groupMessage := codec.Encode([]router.MPLSPacket{{Bytes: mplsPacket}})

	_, err = busSwitchClient.Write(groupMessage)
	require.NoError(t, err)

	busIngress.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 2048)
	n, _, err := busIngress.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, len(mplsPacket), n)
}

// TestCoreRoutesMixedHPLGroupMessageToPassthroughAndBusIngress exercises
// the bus-switch's mixed-routing loop: a single downlink group message
// carrying one packet addressed to the HPL node and one addressed
// elsewhere must route the non-HPL packet individually to bus-ingress
// while forwarding the whole original message, once, to the
// ingest-proxy endpoint.
func TestCoreRoutesMixedHPLGroupMessageToPassthroughAndBusIngress(t *testing.T) {
	cfg := newTestConfig(23400)
	metrics := router.NewMetrics(nil)
	core := router.NewCore(cfg, testlog.New(t), metrics)
	require.NoError(t, core.Start())
	defer core.Stop()

	busIngress, err := net.ListenUDP("udp", mustResolve(t, cfg.BusIngress.Dest))
	require.NoError(t, err)
	defer busIngress.Close()

	ingestProxy, err := net.ListenUDP("udp", mustResolve(t, cfg.IngestProxy.Dest))
	require.NoError(t, err)
	defer ingestProxy.Close()

	busSwitchClient, err := net.DialUDP("udp", nil, mustResolve(t, cfg.BusSwitch.Listen))
	require.NoError(t, err)
	defer busSwitchClient.Close()

	hplITM := itm.Header{CI: false, PLT: itm.PayloadTypeMDD, DstNID: cfg.HPLNodeID}.Encode()
	hplPacket := append(append([]byte{0, 0, 0, 0}, hplITM[:]...), make([]byte, cfg.FixedITMPayloadSize)...)

	otherITM := itm.Header{CI: false, PLT: itm.PayloadTypeMDD, DstNID: 9}.Encode()
	otherPacket := append(append([]byte{0, 0, 0, 0}, otherITM[:]...), make([]byte, cfg.FixedITMPayloadSize)...)

	codec := &router.Codec{GroupMessageID: cfg.GroupMessageID, Sizes: cfg.SizeConfig()}
	groupMessage := codec.Encode([]router.MPLSPacket{{Bytes: hplPacket}, {Bytes: otherPacket}})

	_, err = busSwitchClient.Write(groupMessage)
	require.NoError(t, err)

	busIngress.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 2048)
	n, _, err := busIngress.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, otherPacket, buf[:n], "the non-HPL packet alone reaches bus-ingress")

	ingestProxy.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf2 := make([]byte, 2048)
	n2, _, err := ingestProxy.ReadFromUDP(buf2)
	require.NoError(t, err)
	assert.Equal(t, groupMessage, buf2[:n2], "the whole original group message reaches ingest-proxy once")
}

// TestCoreRoutesDownlinkMissionDataBypassToMissionDataEndpoint exercises
// the mission-data-bypass-TPN table: when the destination node id is
// marked for bypass, a downlink mission-data packet is delivered
// straight to the mission-data endpoint's destination instead of
// bus-ingress.
func TestCoreRoutesDownlinkMissionDataBypassToMissionDataEndpoint(t *testing.T) {
	cfg := newTestConfig(23500)
	const dst = 9
	cfg.MissionDataBypassTPN = map[uint8]bool{dst: true}
	metrics := router.NewMetrics(nil)
	core := router.NewCore(cfg, testlog.New(t), metrics)
	require.NoError(t, core.Start())
	defer core.Stop()

	missionData, err := net.ListenUDP("udp", mustResolve(t, cfg.MissionData.Dest))
	require.NoError(t, err)
	defer missionData.Close()

	busIngress, err := net.ListenUDP("udp", mustResolve(t, cfg.BusIngress.Dest))
	require.NoError(t, err)
	defer busIngress.Close()

	busSwitchClient, err := net.DialUDP("udp", nil, mustResolve(t, cfg.BusSwitch.Listen))
	require.NoError(t, err)
	defer busSwitchClient.Close()

	h := itm.Header{CI: false, PLT: itm.PayloadTypeMDD, DstNID: dst}
	hdr := h.Encode()
	itmBuf := append(append([]byte{}, hdr[:]...), make([]byte, cfg.FixedITMPayloadSize)...)
	mplsPacket := append([]byte{0, 0, 0, 0}, itmBuf...)

	codec := &router.Codec{GroupMessageID: cfg.GroupMessageID, Sizes: cfg.SizeConfig()}
	groupMessage := codec.Encode([]router.MPLSPacket{{Bytes: mplsPacket}})

	_, err = busSwitchClient.Write(groupMessage)
	require.NoError(t, err)

	missionData.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 2048)
	n, _, err := missionData.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, itmBuf, buf[:n], "the bare ITM, not the MPLS-labelled packet, reaches mission-data")

	busIngress.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = busIngress.ReadFromUDP(buf)
	assert.Error(t, err, "bus-ingress must not receive a bypassed packet")
}

// TestCoreRoutesIngestProxyUplinkPassthroughToBusSwitchControlPlane
// exercises the uplink passthrough path: a raw datagram received on
// the ingest-proxy (KBA) socket is forwarded verbatim to the
// bus-switch's Control-plane destination, bypassing the codec, delay
// scheduler, and egress batcher entirely.
func TestCoreRoutesIngestProxyUplinkPassthroughToBusSwitchControlPlane(t *testing.T) {
	cfg := newTestConfig(23300)
	metrics := router.NewMetrics(nil)
	core := router.NewCore(cfg, testlog.New(t), metrics)
	require.NoError(t, core.Start())
	defer core.Stop()

	controlPlane, err := net.ListenUDP("udp", mustResolve(t, cfg.BusSwitch.ControlDest))
	require.NoError(t, err)
	defer controlPlane.Close()

	ingestClient, err := net.DialUDP("udp", nil, mustResolve(t, cfg.IngestProxy.Listen))
	require.NoError(t, err)
	defer ingestClient.Close()

	payload := []byte("arbitrary opaque kba frame")
	_, err = ingestClient.Write(payload)
	require.NoError(t, err)

	controlPlane.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 2048)
	n, _, err := controlPlane.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, payload, buf[:n])
}

func mustResolve(t *testing.T, addr string) *net.UDPAddr {
	t.Helper()
	a, err := net.ResolveUDPAddr("udp", addr)
	require.NoError(t, err)
	return a
}

func sokfDatagram(msgID uint32, offset uint32) []byte {
	buf := make([]byte, 12)
	putU32(buf[0:4], msgID)
	putU32(buf[4:8], 12)
	putU32(buf[8:12], offset)
	return buf
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
