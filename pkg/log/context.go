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

package log

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type loggerContextKey string

const loggerKey loggerContextKey = "logger"

// CtxWith returns a new context, based on ctx, that embeds logger. The
// logger can be recovered using FromCtx. Attaching a logger to a
// context that already carries one overwrites the existing value.
func CtxWith(ctx context.Context, logger Logger) context.Context {
	if ctx == nil {
		panic("nil context")
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromCtx returns the logger embedded in ctx if one exists, or Root()
// otherwise. Never returns nil.
func FromCtx(ctx context.Context) Logger {
	if ctx == nil {
		return Root()
	}
	if l := ctx.Value(loggerKey); l != nil {
		return attachSpan(ctx, l.(Logger))
	}
	return attachSpan(ctx, Root())
}

// WithLabels returns a context with additional labels added to the
// logger, along with the logger itself for convenience.
func WithLabels(ctx context.Context, labels ...any) (context.Context, Logger) {
	l := FromCtx(ctx).New(labels...)
	return CtxWith(ctx, l), l
}

func attachSpan(ctx context.Context, l Logger) Logger {
	span := opentracing.SpanFromContext(ctx)
	if span == nil {
		return l
	}
	if il, ok := l.(*logger); ok {
		return &spanLogger{Logger: &logger{logger: il.logger.WithOptions(zap.AddCallerSkip(1))}, span: span}
	}
	return &spanLogger{Logger: l, span: span}
}

// spanLogger attaches log fields to the active opentracing span in
// addition to emitting the ordinary log entry.
type spanLogger struct {
	Logger
	span opentracing.Span
}

func (s *spanLogger) Error(msg string, ctx ...any) {
	s.span.LogKV("event", "error", "message", msg)
	s.Logger.Error(msg, ctx...)
}
