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

// Package mpls encodes and decodes the 4-byte MPLS-style label header
// prepended to every ITM on the wire. The header is a packed 32-bit
// bitfield; this package never relies on compiler struct layout and
// always packs/unpacks via explicit shifts and masks.
package mpls

import "encoding/binary"

// HeaderSize is the on-wire size of a Header, in bytes.
const HeaderSize = 4

// Header is the decoded form of the 32-bit, big-endian MPLS header:
// type:2, identifier:8, path:3, port:4, reserved:3, QOS:3, spare:1, TTL:8.
type Header struct {
	Type       uint8
	Identifier uint8
	Path       uint8
	Port       uint8
	Reserved   uint8
	QOS        uint8
	Spare      uint8
	TTL        uint8
}

// Parse decodes a 4-byte big-endian MPLS header.
func Parse(buf []byte) Header {
	v := binary.BigEndian.Uint32(buf[:HeaderSize])
	return Header{
		Type:       uint8(v >> 30 & 0x3),
		Identifier: uint8(v >> 22 & 0xFF),
		Path:       uint8(v >> 19 & 0x7),
		Port:       uint8(v >> 15 & 0xF),
		Reserved:   uint8(v >> 12 & 0x7),
		QOS:        uint8(v >> 9 & 0x7),
		Spare:      uint8(v >> 8 & 0x1),
		TTL:        uint8(v),
	}
}

// Encode packs h into a 4-byte big-endian buffer.
func (h Header) Encode() [HeaderSize]byte {
	v := uint32(h.Type&0x3)<<30 |
		uint32(h.Identifier)<<22 |
		uint32(h.Path&0x7)<<19 |
		uint32(h.Port&0xF)<<15 |
		uint32(h.Reserved&0x7)<<12 |
		uint32(h.QOS&0x7)<<9 |
		uint32(h.Spare&0x1)<<8 |
		uint32(h.TTL)
	var out [HeaderSize]byte
	binary.BigEndian.PutUint32(out[:], v)
	return out
}

// FakeForQOS builds the synthetic MPLS header used to frame uplink
// ITMs that were never natively MPLS-labelled: every field is set to
// its all-ones value except QOS, which carries the caller-supplied
// value. This mirrors the bus-switch endpoint's fake-label behaviour
// when relaying packets that arrived without a real label.
func FakeForQOS(qos uint8) Header {
	return Header{
		Type:       0x3,
		Identifier: 0xFF,
		Path:       0x7,
		Port:       0xF,
		Reserved:   0x7,
		QOS:        qos & 0x7,
		Spare:      0x1,
		TTL:        0xFF,
	}
}
