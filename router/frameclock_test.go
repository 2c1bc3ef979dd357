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
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaysat/framerouter/router"
)

const testMsgID = 0x534f4b46

func timingDatagram(msgID, msgLen, offset uint32) []byte {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint32(buf[0:4], msgID)
	binary.BigEndian.PutUint32(buf[4:8], msgLen)
	binary.BigEndian.PutUint32(buf[8:12], offset)
	return buf
}

func TestFrameClockFirstDatagramSynchronizes(t *testing.T) {
	c := &router.FrameClock{ExpectedMsgID: testMsgID}
	c.Start()

	err := c.OnRead(timingDatagram(testMsgID, 12, 3))
	require.NoError(t, err)
	assert.Equal(t, router.ClockRunning, c.State())
	assert.Equal(t, uint32(1), c.FrameCount())
	assert.Equal(t, uint64(0), c.MissedTicks())
}

func TestFrameClockAdvanceAccumulatesMissedTicks(t *testing.T) {
	c := &router.FrameClock{ExpectedMsgID: testMsgID}
	c.Start()
	require.NoError(t, c.OnRead(timingDatagram(testMsgID, 12, 0)))

	// offset jumps from 0 to 3: elapsed=3, 2 missed ticks.
	require.NoError(t, c.OnRead(timingDatagram(testMsgID, 12, 3)))
	assert.Equal(t, uint32(2), c.FrameCount())
	assert.Equal(t, uint64(2), c.MissedTicks())
}

func TestFrameClockRepeatedOffsetClampsToOne(t *testing.T) {
	c := &router.FrameClock{ExpectedMsgID: testMsgID}
	c.Start()
	require.NoError(t, c.OnRead(timingDatagram(testMsgID, 12, 4)))
	require.NoError(t, c.OnRead(timingDatagram(testMsgID, 12, 4)))

	assert.Equal(t, uint32(2), c.FrameCount())
	assert.Equal(t, uint64(0), c.MissedTicks())
}

func TestFrameClockBadMessageIDIsFatal(t *testing.T) {
	c := &router.FrameClock{ExpectedMsgID: testMsgID}
	c.Start()
	err := c.OnRead(timingDatagram(0xDEADBEEF, 12, 0))
	assert.Error(t, err)
	assert.Equal(t, router.ClockClosed, c.State())
}

func TestFrameClockOffsetOutOfRangeIsFatal(t *testing.T) {
	c := &router.FrameClock{ExpectedMsgID: testMsgID}
	c.Start()
	err := c.OnRead(timingDatagram(testMsgID, 12, 99))
	assert.Error(t, err)
	assert.Equal(t, router.ClockClosed, c.State())
}

func TestFrameClockShortDatagramIsNonFatal(t *testing.T) {
	c := &router.FrameClock{ExpectedMsgID: testMsgID}
	c.Start()
	err := c.OnRead([]byte{1, 2, 3})
	assert.NoError(t, err)
	assert.NotEqual(t, router.ClockClosed, c.State())
}

func TestFrameClockOnTickFiresAfterStateUpdate(t *testing.T) {
	c := &router.FrameClock{ExpectedMsgID: testMsgID}
	c.Start()

	var observedFrame uint32
	c.OnTick = func() { observedFrame = c.FrameCount() }

	require.NoError(t, c.OnRead(timingDatagram(testMsgID, 12, 0)))
	assert.Equal(t, c.FrameCount(), observedFrame)
}
