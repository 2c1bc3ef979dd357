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
	"fmt"
	"io"

	libconfig "github.com/relaysat/framerouter/private/config"
)

// InvalidIP and InvalidPort are the sentinel values that disable
// transmission to a configured destination (spec.md §6).
const (
	InvalidIP   = "0.0.0.0"
	InvalidPort = 0
)

// EndpointAddrs is one endpoint's listen address and, where
// applicable, destination address(es).
type EndpointAddrs struct {
	Listen string `toml:"listen"`
	Dest   string `toml:"dest,omitempty"`
}

// Config is the router's TOML-loaded configuration. It implements
// private/config.Config via InitDefaults/Validate/Sample.
type Config struct {
	General struct {
		ID string `toml:"id,omitempty"`
	} `toml:"general"`

	BusSwitch struct {
		Listen      string `toml:"listen"`
		ControlDest string `toml:"control_dest"`
		DataDest    string `toml:"data_dest"`
	} `toml:"bus_switch"`
	MissionData EndpointAddrs `toml:"mission_data"`
	IngestProxy EndpointAddrs `toml:"ingest_proxy"`
	BusIngress  EndpointAddrs `toml:"bus_ingress"`
	FrameClock  struct {
		Listen string `toml:"listen"`
	} `toml:"frame_clock"`

	API struct {
		Addr string `toml:"addr,omitempty"`
	} `toml:"api"`

	HPLNodeID            uint8  `toml:"hpl_node_id"`
	LocalNodeID          uint8  `toml:"local_node_id"`
	MPLSQOSForITEDataMsg uint8  `toml:"mpls_qos_for_ite_data_msg"`
	SOKFMessageID        uint32 `toml:"sokf_message_id"`
	GroupMessageID       uint32 `toml:"group_message_id"`

	FixedITMPayloadSize   int `toml:"fixed_itm_payload_size"`
	MinVITMPayloadSize    int `toml:"min_vitm_payload_size"`
	MaxVITMPayloadSize    int `toml:"max_vitm_payload_size"`
	MaxPacketsPerTimeslot int `toml:"max_packets_per_timeslot"`

	// MissionDataBypassTPN[dstnid] == true routes a downlink mission-data
	// payload directly to the mission-data endpoint instead of the
	// bus-ingress endpoint.
	MissionDataBypassTPN map[uint8]bool `toml:"mission_data_bypass_tpn"`

	// DelayTable maps "src,dst" node-id pairs to a frame delay.
	DelayTable map[string]uint32 `toml:"delay_table"`

	libconfig.NoValidator
}

// InitDefaults fills in the literal byte budgets from spec.md §6 when
// unset.
func (c *Config) InitDefaults() {
	if c.FixedITMPayloadSize == 0 {
		c.FixedITMPayloadSize = 43
	}
	if c.MinVITMPayloadSize == 0 {
		c.MinVITMPayloadSize = 1
	}
	if c.MaxVITMPayloadSize == 0 {
		c.MaxVITMPayloadSize = 250
	}
	if c.MaxPacketsPerTimeslot == 0 {
		c.MaxPacketsPerTimeslot = 720
	}
	if c.SOKFMessageID == 0 {
		c.SOKFMessageID = 0x534f4b46 // "SOKF"
	}
	if c.GroupMessageID == 0 {
		c.GroupMessageID = 0x564d5721 // arbitrary fixed constant for this message class
	}
	if c.MissionDataBypassTPN == nil {
		c.MissionDataBypassTPN = map[uint8]bool{}
	}
	if c.DelayTable == nil {
		c.DelayTable = map[string]uint32{}
	}
}

// Sample writes a sample TOML block for the router config.
func (c *Config) Sample(dst io.Writer, path libconfig.Path, ctx libconfig.CtxMap) {
	libconfig.WriteString(dst, `
hpl_node_id = 7
local_node_id = 3
mpls_qos_for_ite_data_msg = 5

[bus_switch]
listen = "0.0.0.0:14100"
control_dest = "10.0.0.1:14101"
data_dest = "10.0.0.1:14102"

[mission_data]
listen = "0.0.0.0:14110"
dest = "10.0.0.2:14111"

[ingest_proxy]
listen = "0.0.0.0:14120"
dest = "10.0.0.3:14121"

[bus_ingress]
listen = "0.0.0.0:14130"
dest = "10.0.0.4:14131"

[frame_clock]
listen = "0.0.0.0:14140"
`)
}

// SizeConfig adapts Config to the codec's narrower SizeConfig view.
func (c *Config) SizeConfig() SizeConfig {
	return SizeConfig{
		FixedITMPayloadSize: c.FixedITMPayloadSize,
		MinVITMPayloadSize:  c.MinVITMPayloadSize,
		MaxVITMPayloadSize:  c.MaxVITMPayloadSize,
	}
}

// BuildDelayTable converts the TOML-friendly "src,dst" string keys
// into a StaticDelayTable.
func (c *Config) BuildDelayTable() StaticDelayTable {
	t := make(StaticDelayTable, len(c.DelayTable))
	for k, v := range c.DelayTable {
		var src, dst uint8
		if _, err := fmt.Sscanf(k, "%d,%d", &src, &dst); err == nil {
			t[[2]NodeID{src, dst}] = v
		}
	}
	return t
}
