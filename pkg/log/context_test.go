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

package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaysat/framerouter/pkg/log"
	"github.com/relaysat/framerouter/pkg/log/testlog"
)

func TestFromCtxReturnsRootWhenUnset(t *testing.T) {
	assert.Same(t, log.Root(), log.FromCtx(context.Background()))
}

func TestCtxWithRoundTrips(t *testing.T) {
	l := testlog.New(t)
	ctx := log.CtxWith(context.Background(), l)

	got := log.FromCtx(ctx)
	require.NotNil(t, got)
}

func TestWithLabelsAttachesLoggerToContext(t *testing.T) {
	ctx, l := log.WithLabels(context.Background(), "request_id", "abc")
	require.NotNil(t, l)

	again := log.FromCtx(ctx)
	require.NotNil(t, again)
}

func TestCtxWithPanicsOnNilContext(t *testing.T) {
	assert.Panics(t, func() {
		//lint:ignore SA1012 exercising the documented nil-context panic
		log.CtxWith(nil, testlog.New(t))
	})
}
