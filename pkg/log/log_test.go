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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaysat/framerouter/pkg/log"
)

func TestConfigInitDefaults(t *testing.T) {
	var cfg log.Config
	cfg.InitDefaults()
	assert.Equal(t, log.DefaultConsoleLevel, cfg.Console.Level)
	assert.Equal(t, "human", cfg.Console.Format)
	assert.Equal(t, log.DefaultStacktraceLevel, cfg.Console.StacktraceLevel)
}

func TestConfigValidateRejectsBadLevel(t *testing.T) {
	cfg := log.Config{Console: log.ConsoleConfig{Level: "not-a-level"}}
	assert.Error(t, cfg.Validate())
}

func TestSetupInstallsRootLogger(t *testing.T) {
	cfg := log.Config{Console: log.ConsoleConfig{Level: "debug", Format: "json"}}
	require.NoError(t, log.Setup(cfg))
	defer log.Flush()

	root := log.Root()
	require.NotNil(t, root)
	assert.True(t, root.Enabled(log.DebugLevel))
}

func TestLoggerNewAttachesContext(t *testing.T) {
	cfg := log.Config{Console: log.ConsoleConfig{Level: "info", Format: "json"}}
	require.NoError(t, log.Setup(cfg))
	defer log.Flush()

	child := log.Root().New("component", "test")
	require.NotNil(t, child)
	assert.True(t, child.Enabled(log.InfoLevel))
	assert.False(t, child.Enabled(log.DebugLevel))
}
