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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/relaysat/framerouter/router"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestReactorRunsPostedCommandsInOrder(t *testing.T) {
	r := router.NewReactor(8)
	go r.Run()
	defer r.Stop()

	var order []int
	done := make(chan struct{})
	r.Post(func() { order = append(order, 1) })
	r.Post(func() { order = append(order, 2) })
	r.Post(func() { order = append(order, 3); close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("commands did not complete in time")
	}
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestReactorStopBlocksUntilWorkerExits(t *testing.T) {
	r := router.NewReactor(1)
	go r.Run()

	var ran int32
	r.Post(func() { atomic.AddInt32(&ran, 1) })
	r.Stop()

	require.EqualValues(t, 1, ran)
	// Stop returned only after the worker ran the posted command and
	// exited; TestMain's goleak check confirms no worker goroutine is
	// left behind.
}
