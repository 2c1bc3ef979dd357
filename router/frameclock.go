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

	"github.com/relaysat/framerouter/pkg/log"
	"github.com/relaysat/framerouter/pkg/serrors"
)

// timingDatagramSize is the fixed size of a valid timing datagram:
// three big-endian uint32 fields.
const timingDatagramSize = 12

// maxFrameOffset is the highest valid kframe_offset; offsets form a
// ring of size frameOffsetRing.
const (
	maxFrameOffset  = 9
	frameOffsetRing = 10
)

// ClockState is the Frame Clock's lifecycle state.
type ClockState int

const (
	ClockClosed ClockState = iota
	ClockListening
	ClockSynchronizing
	ClockRunning
)

// FrameClock validates the external timing datagram, advances the
// monotonic frame counter F, and reports missed ticks. It owns no
// socket itself; the frame-clock endpoint feeds it raw datagrams.
type FrameClock struct {
	ExpectedMsgID uint32
	Logger        log.Logger

	state       ClockState
	frameCount  uint32
	prevOffset  uint32
	synced      bool
	missedTicks uint64

	// OnTick is invoked exactly once per accepted datagram, after F
	// has been advanced. It must return quickly and must not block.
	OnTick func()
}

func (c *FrameClock) logger() log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Root()
}

// Start moves the clock from Closed to Listening.
func (c *FrameClock) Start() {
	c.state = ClockListening
	c.synced = false
}

// State returns the clock's current lifecycle state.
func (c *FrameClock) State() ClockState { return c.state }

// FrameCount returns the current monotonic frame counter F.
func (c *FrameClock) FrameCount() uint32 { return c.frameCount }

// MissedTicks returns the cumulative missed-tick count.
func (c *FrameClock) MissedTicks() uint64 { return c.missedTicks }

// OnRead processes one received timing datagram. Any validation
// failure is fatal: it is logged and the clock transitions to Closed;
// the caller (the frame-clock endpoint) must then stop reading. A
// length mismatch alone is non-fatal: it is logged and the clock
// keeps listening, mirroring the original socket-layer short-read
// tolerance (spec.md §8 scenario 6).
func (c *FrameClock) OnRead(buf []byte) error {
	if len(buf) != timingDatagramSize {
		c.logger().Info("timing datagram has unexpected length, ignoring",
			"length", len(buf))
		return nil
	}

	msgID := binary.BigEndian.Uint32(buf[0:4])
	msgLen := binary.BigEndian.Uint32(buf[4:8])
	offset := binary.BigEndian.Uint32(buf[8:12])

	if msgID != c.ExpectedMsgID {
		c.state = ClockClosed
		return serrors.New("timing datagram message id mismatch",
			"got", msgID, "want", c.ExpectedMsgID)
	}
	if msgLen != timingDatagramSize {
		c.state = ClockClosed
		return serrors.New("timing datagram message length mismatch", "got", msgLen)
	}
	if offset > maxFrameOffset {
		c.state = ClockClosed
		return serrors.New("timing datagram frame offset out of range", "offset", offset)
	}

	c.state = ClockSynchronizing
	c.frameCount++

	if !c.synced {
		c.prevOffset = offset
		c.synced = true
		c.state = ClockRunning
		c.logger().Info("frame clock synchronized", "offset", offset)
	} else {
		elapsed := (offset - c.prevOffset + frameOffsetRing) % frameOffsetRing
		if elapsed == 0 {
			elapsed = 1
		}
		c.missedTicks += uint64(elapsed - 1)
		c.prevOffset = offset
		c.state = ClockRunning
	}

	if c.OnTick != nil {
		c.OnTick()
	}
	return nil
}
