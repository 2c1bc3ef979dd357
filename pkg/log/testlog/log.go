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

// Package testlog builds loggers that write into a testing.TB, for use
// in package tests that want real log output on failure without
// polluting normal test runs.
package testlog

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/relaysat/framerouter/pkg/log"
)

// New builds a logger that writes every entry to t via zaptest.
func New(t testing.TB, opts ...zaptest.LoggerOption) log.Logger {
	return wrap(zaptest.NewLogger(t, opts...))
}

func wrap(zl *zap.Logger) log.Logger {
	return &testLogger{logger: zl}
}

type testLogger struct {
	logger *zap.Logger
}

func (l *testLogger) Debug(msg string, ctx ...any) { l.logger.Sugar().Debugw(msg, ctx...) }
func (l *testLogger) Info(msg string, ctx ...any)  { l.logger.Sugar().Infow(msg, ctx...) }
func (l *testLogger) Error(msg string, ctx ...any) { l.logger.Sugar().Errorw(msg, ctx...) }

func (l *testLogger) New(ctx ...any) log.Logger {
	return &testLogger{logger: l.logger.Sugar().With(ctx...).Desugar()}
}

func (l *testLogger) Enabled(lvl log.Level) bool {
	return l.logger.Core().Enabled(lvl)
}
