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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relaysat/framerouter/router"
)

func TestStaticDelayTableDefaultsToZero(t *testing.T) {
	table := router.StaticDelayTable{}
	assert.Equal(t, uint32(0), table.Delay(1, 2))

	table[[2]router.NodeID{1, 2}] = 7
	assert.Equal(t, uint32(7), table.Delay(1, 2))
	assert.Equal(t, uint32(0), table.Delay(2, 1))
}

func TestDelaySchedulerDrainDueOrdersByFrameThenInsertion(t *testing.T) {
	var s router.DelayScheduler
	s.Enqueue(5, "late")
	s.Enqueue(2, "first")
	s.Enqueue(2, "second") // same frame as "first", enqueued after it

	var released []string
	s.DrainDue(4, func(payload any) {
		released = append(released, payload.(string))
	})

	assert.Equal(t, []string{"first", "second"}, released)
	assert.Equal(t, 1, s.Len())
}

func TestDelaySchedulerDrainDueRemovesOnlyDueEntries(t *testing.T) {
	var s router.DelayScheduler
	s.Enqueue(10, "not-due")

	var released []string
	s.DrainDue(3, func(payload any) {
		released = append(released, payload.(string))
	})

	assert.Empty(t, released)
	assert.Equal(t, 1, s.Len())
}

func TestDelaySchedulerDrainDueOnEmptyIsNoop(t *testing.T) {
	var s router.DelayScheduler
	called := false
	s.DrainDue(100, func(payload any) { called = true })
	assert.False(t, called)
}
