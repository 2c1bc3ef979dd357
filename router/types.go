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

// Package router implements the mission-data routing core: the Frame
// Clock, Delay Scheduler, Wire Codec, Egress Batcher, the five
// endpoint workers, and the Router Core that wires them together.
package router

// NodeID identifies a node on the mission-data bus.
type NodeID = uint8

// Plane distinguishes the two uplink destinations a group message can
// be addressed to.
type Plane int

const (
	Control Plane = iota
	Data
)

func (p Plane) String() string {
	if p == Data {
		return "data"
	}
	return "control"
}

// MPLSPacket is one MPLS-labelled ITM as it travels through the
// egress path: a 4-byte MPLS header immediately followed by the ITM
// bytes (header + payload). Bytes is immutable once constructed.
type MPLSPacket struct {
	Bytes []byte
}

// Len returns the on-wire length of the packet (MPLS header + ITM).
func (p MPLSPacket) Len() int { return len(p.Bytes) }

// ITM returns the ITM portion of the packet, past the MPLS header.
func (p MPLSPacket) ITM() []byte { return p.Bytes[4:] }
