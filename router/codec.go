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
	"encoding/binary"

	"github.com/relaysat/framerouter/pkg/itm"
	"github.com/relaysat/framerouter/pkg/log"
)

// groupHeaderSize is the 8-byte (message_id, message_length) header.
const groupHeaderSize = 8

// numPacketsSize is the 2-byte packet-count field following the header.
const numPacketsSize = 2

// lengthPrefixSize is the 2-byte per-packet length prefix.
const lengthPrefixSize = 2

// minMPLSPacketSize is the smallest possible on-wire packet: the
// 4-byte MPLS header plus the 5-byte ITM common header.
const minMPLSPacketSize = 4 + itm.HeaderSize

// SizeConfig carries the payload-size bounds the Wire Codec validates
// against, sourced from domain configuration (§6 byte budgets).
type SizeConfig struct {
	FixedITMPayloadSize int
	MinVITMPayloadSize  int
	MaxVITMPayloadSize  int
}

func (c SizeConfig) fixedTotal() int { return minMPLSPacketSize + c.FixedITMPayloadSize }
func (c SizeConfig) minVITMTotal() int { return minMPLSPacketSize + c.MinVITMPayloadSize }
func (c SizeConfig) maxVITMTotal() int { return minMPLSPacketSize + c.MaxVITMPayloadSize }

// Codec encodes and decodes the batched group-message wire format.
type Codec struct {
	GroupMessageID uint32
	Sizes          SizeConfig
	Logger         log.Logger
}

func (c *Codec) logger() log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Root()
}

// Decode parses a group message from buf, returning a slice of
// MPLSPacket views into buf. On any per-packet validation failure, the
// entire message is abandoned and Decode returns (nil, false) per
// spec: a single malformed packet invalidates the whole group.
func (c *Codec) Decode(buf []byte) ([]MPLSPacket, bool) {
	if len(buf) < groupHeaderSize {
		c.logger().Error("group message shorter than header", "len", len(buf))
		return nil, false
	}
	messageLength := binary.BigEndian.Uint32(buf[4:8])
	if int(messageLength) != len(buf) {
		c.logger().Error("group message_length mismatch",
			"declared", messageLength, "actual", len(buf))
		return nil, false
	}

	rest := buf[groupHeaderSize:]
	if len(rest) < numPacketsSize {
		c.logger().Error("group message missing num_packets field")
		return nil, false
	}
	numPackets := binary.BigEndian.Uint16(rest[:numPacketsSize])
	rest = rest[numPacketsSize:]

	packets := make([]MPLSPacket, 0, numPackets)
	for i := uint16(0); i < numPackets; i++ {
		if len(rest) < lengthPrefixSize {
			c.logger().Error("group message truncated before packet length", "packet_index", i)
			return nil, false
		}
		length := int(binary.BigEndian.Uint16(rest[:lengthPrefixSize]))
		rest = rest[lengthPrefixSize:]

		if length < minMPLSPacketSize {
			c.logger().Error("mpls packet shorter than header minimum",
				"packet_index", i, "length", length)
			return nil, false
		}
		if len(rest) < length {
			c.logger().Error("mpls packet exceeds remaining buffer",
				"packet_index", i, "length", length, "remaining", len(rest))
			return nil, false
		}
		packetBuf := rest[:length]
		rest = rest[length:]

		h := itm.Parse(packetBuf[4:])
		if !c.validSize(h, length) {
			c.logger().Error("itm size does not match its variant",
				"packet_index", i, "length", length, "ci", h.IsVITM())
			return nil, false
		}
		packets = append(packets, MPLSPacket{Bytes: packetBuf})
	}

	if len(rest) > 0 {
		c.logger().Info("ignoring extraneous bytes after group message", "bytes", len(rest))
	}
	return packets, true
}

func (c *Codec) validSize(h itm.Header, length int) bool {
	if h.IsVITM() {
		return length >= c.Sizes.minVITMTotal() && length <= c.Sizes.maxVITMTotal()
	}
	return length == c.Sizes.fixedTotal()
}

// Encode builds a group-message buffer from packets. message_length
// is patched last, once the full size is known, satisfying invariant
// I3.
func (c *Codec) Encode(packets []MPLSPacket) []byte {
	total := groupHeaderSize + numPacketsSize
	for _, p := range packets {
		total += lengthPrefixSize + p.Len()
	}

	buf := make([]byte, total)
	binary.BigEndian.PutUint32(buf[0:4], c.GroupMessageID)
	binary.BigEndian.PutUint32(buf[4:8], uint32(total))
	binary.BigEndian.PutUint16(buf[8:10], uint16(len(packets)))

	off := groupHeaderSize + numPacketsSize
	for _, p := range packets {
		binary.BigEndian.PutUint16(buf[off:off+2], uint16(p.Len()))
		off += 2
		copy(buf[off:off+p.Len()], p.Bytes)
		off += p.Len()
	}
	return buf
}
