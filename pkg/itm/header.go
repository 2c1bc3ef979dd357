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

// Package itm decodes and encodes ITM headers: the 5-byte link-layer
// header carried by every mission-data packet. The source overlays
// several 5-byte layouts on the same bytes, selected by the header's
// ci/plt fields; this package re-expresses that as a safe tagged parse
// over a byte slice instead of a raw-byte transmute.
package itm

// HeaderSize is the size of the common ITM header, in bytes.
const HeaderSize = 5

// Mission-data payload types, as enumerated in the wire format.
const (
	PayloadTypeMDV   = 0 // mission data, variable
	PayloadTypeMDD   = 1 // mission data, discrete
	PayloadTypeMCDISU = 3 // mission command data, ISU
)

var missionDataPayloadTypes = map[uint8]bool{
	PayloadTypeMDV:    true,
	PayloadTypeMDD:    true,
	PayloadTypeMCDISU: true,
}

// QOSOAM is the QoS value assigned to variable ITMs that are not ITE
// data messages.
const QOSOAM = 7

// Header is the parsed common 5-byte ITM header. The three trailing
// bytes (2..4) carry one of three variant-specific interpretations
// (routing channel, source node, checksum); this package exposes them
// as typed accessors rather than re-interpreting the same bytes as
// different structs, since the safety concern spec.md raises is about
// transmuting raw bytes across alignment, not about the dispatch logic
// itself.
type Header struct {
	CI     bool  // true: variable-size ITM (VITM); false: fixed-size ITM
	PLT    uint8 // payload type, 0..7
	HPC    uint8 // hop count, opaque to the router
	DstNID uint8
	tail   [3]byte
}

// Parse decodes the 5-byte common header from buf. buf must be at
// least HeaderSize bytes; callers validate total packet length
// separately per the variant (fixed vs. variable).
func Parse(buf []byte) Header {
	b0 := buf[0]
	var h Header
	h.CI = b0&0x1 != 0
	h.PLT = (b0 >> 1) & 0x7
	h.HPC = (b0 >> 4) & 0xF
	h.DstNID = buf[1]
	copy(h.tail[:], buf[2:5])
	return h
}

// Encode renders h back into a 5-byte common header.
func (h Header) Encode() [HeaderSize]byte {
	var out [HeaderSize]byte
	var b0 uint8
	if h.CI {
		b0 |= 0x1
	}
	b0 |= (h.PLT & 0x7) << 1
	b0 |= (h.HPC & 0xF) << 4
	out[0] = b0
	out[1] = h.DstNID
	copy(out[2:5], h.tail[:])
	return out
}

// IsVITM reports whether h describes a variable-size ITM.
func (h Header) IsVITM() bool { return h.CI }

// IsFixedSizeITM reports whether h describes a fixed-size ITM.
func (h Header) IsFixedSizeITM() bool { return !h.CI }

// GetDestinationId returns the destination node identifier.
func (h Header) GetDestinationId() uint8 { return h.DstNID }

// GetPayloadType returns the payload type.
func (h Header) GetPayloadType() uint8 { return h.PLT }

// IsMissionDataPayloadType reports whether h's payload type is one of
// the mission-data types.
func (h Header) IsMissionDataPayloadType() bool {
	return missionDataPayloadTypes[h.PLT]
}

// RoutingChannel interprets the trailing bytes as a routing-channel
// variant, returning the first tail byte.
func (h Header) RoutingChannel() uint8 { return h.tail[0] }

// SourceNode interprets the trailing bytes as a source-node variant,
// returning the first tail byte.
func (h Header) SourceNode() uint8 { return h.tail[0] }

// Checksum interprets the trailing two bytes as a big-endian checksum
// variant.
func (h Header) Checksum() uint16 { return uint16(h.tail[1])<<8 | uint16(h.tail[2]) }

// SetChecksum sets the trailing two bytes to a big-endian checksum.
func (h *Header) SetChecksum(c uint16) {
	h.tail[1] = byte(c >> 8)
	h.tail[2] = byte(c)
}

// SourceNodeAlt reads the source-node byte from the "alt" ground-sim
// layout used on the mission-data ingress path. That layout places the
// source node one byte past the common header (offset 5). If buf is
// long enough to hold that extra byte, it is read (and may be stale
// data belonging to a shorter packet that reused the same read
// buffer); otherwise SourceNodeAlt reports ok=false rather than
// reading out of bounds. See the companion note in DESIGN.md (Open
// Question b).
func SourceNodeAlt(buf []byte) (node uint8, ok bool) {
	if len(buf) < HeaderSize+1 {
		return 0, false
	}
	return buf[HeaderSize], true
}

// ITEHeader is the sub-header embedded in the payload of a variable
// ITM, used only to decide whether the payload is an ITE data message.
type ITEHeader struct {
	DC       bool // data-message flag
	SrcNID   uint8
}

// ParseITEHeader decodes the 1-byte ite_common_header_t: dc:1, reserved:7.
// The source node byte follows it; ParseITEHeader takes both from buf.
func ParseITEHeader(buf []byte) ITEHeader {
	return ITEHeader{
		DC:     buf[0]&0x1 != 0,
		SrcNID: buf[1],
	}
}

// IsDataMessage reports whether the ITE sub-header marks its payload
// as a data message.
func (h ITEHeader) IsDataMessage() bool { return h.DC }
