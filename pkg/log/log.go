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

// Package log provides structured logging for the router and its
// ambient support packages. It wraps zap behind a small interface so
// call sites never depend on zap directly.
package log

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors zapcore.Level so callers never need to import zap.
type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	ErrorLevel = zapcore.ErrorLevel
)

const (
	DefaultConsoleLevel     = "info"
	DefaultStacktraceLevel  = "none"
)

// Logger is the interface satisfied by every logger handed out by this
// package, including the ones returned by pkg/log/testlog.
type Logger interface {
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	New(ctx ...any) Logger
	Enabled(lvl Level) bool
}

// ConsoleConfig configures the console log sink.
type ConsoleConfig struct {
	Level           string `toml:"level,omitempty"`
	Format          string `toml:"format,omitempty"`
	StacktraceLevel string `toml:"stacktrace_level,omitempty"`
}

// Config is the top-level logging configuration, embeddable in an
// application's TOML config.
type Config struct {
	Console ConsoleConfig `toml:"console,omitempty"`
}

// InitDefaults fills in unset fields. Implements config.Defaulter.
func (c *Config) InitDefaults() {
	if c.Console.Level == "" {
		c.Console.Level = DefaultConsoleLevel
	}
	if c.Console.Format == "" {
		c.Console.Format = "human"
	}
	if c.Console.StacktraceLevel == "" {
		c.Console.StacktraceLevel = DefaultStacktraceLevel
	}
}

// Validate checks the configuration. Implements config.Validator.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Console.Level); err != nil {
		return fmt.Errorf("invalid console log level %q: %w", c.Console.Level, err)
	}
	return nil
}

// EntriesCounter counts emitted log entries, broken down by level. A
// prometheus.Counter (via its Inc method) satisfies the fields below.
type EntriesCounter struct {
	Debug interface{ Inc() }
	Info  interface{ Inc() }
	Error interface{ Inc() }
}

// Option configures the package-level logger built by Setup.
type Option func(*options)

type options struct {
	entries *EntriesCounter
}

// WithEntriesCounter attaches a counter incremented once per emitted
// log entry, split out by level.
func WithEntriesCounter(c EntriesCounter) Option {
	return func(o *options) { o.entries = &c }
}

var (
	mu   sync.Mutex
	root Logger = &logger{logger: zap.NewNop()}
)

// Setup builds the package-level logger from cfg and installs it as Root().
func Setup(cfg Config, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	lvl, err := zapcore.ParseLevel(cfg.Console.Level)
	if err != nil {
		return fmt.Errorf("parsing console log level: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.Console.Format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(os.Stderr), lvl)
	if o.entries != nil {
		core = &countingCore{Core: core, entries: o.entries}
	}

	zl := zap.New(core, zap.AddCaller())
	mu.Lock()
	root = &logger{logger: zl}
	mu.Unlock()
	return nil
}

// Flush syncs the underlying zap core. Safe to call even if Setup was
// never called.
func Flush() {
	mu.Lock()
	l, ok := root.(*logger)
	mu.Unlock()
	if ok {
		_ = l.logger.Sync()
	}
}

// Root returns the current package-level logger. Never nil.
func Root() Logger {
	mu.Lock()
	defer mu.Unlock()
	return root
}

// HandlePanic recovers a panic in the calling goroutine, logs it at
// error level, and re-panics. Deferred at the top of every
// long-running goroutine so a crash is never silent.
func HandlePanic() {
	if r := recover(); r != nil {
		Root().Error("goroutine panicked", "panic", r)
		panic(r)
	}
}

func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { Root().Info(msg, ctx...) }
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }

type logger struct {
	logger *zap.Logger
}

func (l *logger) Debug(msg string, ctx ...any) { l.logger.Sugar().Debugw(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.logger.Sugar().Infow(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.logger.Sugar().Errorw(msg, ctx...) }

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.Sugar().With(ctx...).Desugar()}
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(lvl)
}

// countingCore wraps a zapcore.Core, incrementing an EntriesCounter
// bucket once per entry that is actually written.
type countingCore struct {
	zapcore.Core
	entries *EntriesCounter
}

func (c *countingCore) With(fields []zapcore.Field) zapcore.Core {
	return &countingCore{Core: c.Core.With(fields), entries: c.entries}
}

func (c *countingCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Core.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c *countingCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	switch {
	case e.Level >= zapcore.ErrorLevel && c.entries.Error != nil:
		c.entries.Error.Inc()
	case e.Level == zapcore.DebugLevel && c.entries.Debug != nil:
		c.entries.Debug.Inc()
	case c.entries.Info != nil:
		c.entries.Info.Inc()
	}
	return c.Core.Write(e, fields)
}
