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

// Package launcher provides the common command-line harness shared by
// the router binary: flag parsing, TOML config loading, logging setup,
// and signal-driven shutdown.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relaysat/framerouter/pkg/log"
	"github.com/relaysat/framerouter/pkg/serrors"
	libconfig "github.com/relaysat/framerouter/private/config"
)

const (
	cfgConfigFile           = "config"
	cfgLogConsoleLevel      = "log.console.level"
	cfgLogConsoleFormat     = "log.console.format"
	cfgLogConsoleStacktrace = "log.console.stacktrace_level"
)

// Application models a router-family server application: a Cobra
// command that loads TOML config, sets up logging, and then hands
// control to Main until the process receives a shutdown signal.
type Application struct {
	// TOMLConfig holds the application-specific TOML configuration.
	TOMLConfig libconfig.Config

	// ShortName names the application in logs and in the command and
	// sample-config help text. If empty, the executable name is used.
	ShortName string

	// Main is the application's custom logic. Run blocks until it
	// returns; ctx is cancelled when a shutdown signal (SIGINT or
	// SIGTERM) is received.
	Main func(ctx context.Context) error

	// ErrorWriter receives the fatal-error message printed by Run. If
	// nil, os.Stderr is used.
	ErrorWriter io.Writer

	cmd    *cobra.Command
	config *viper.Viper
}

// Run executes the command-line harness and exits the process with a
// non-zero code on fatal error.
func (a *Application) Run() {
	if err := a.run(); err != nil {
		fmt.Fprintf(a.errorWriter(), "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func (a *Application) run() error {
	executable := filepathBase(os.Args[0])
	shortName := a.shortName(executable)

	a.cmd = newCommandTemplate(executable, shortName, a.TOMLConfig)
	a.config = viper.New()
	a.config.SetDefault(cfgLogConsoleLevel, log.DefaultConsoleLevel)
	a.config.SetDefault(cfgLogConsoleFormat, "human")
	a.config.SetDefault(cfgLogConsoleStacktrace, log.DefaultStacktraceLevel)
	if err := a.config.BindPFlag(cfgConfigFile, a.cmd.Flags().Lookup(cfgConfigFile)); err != nil {
		return err
	}

	a.cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return a.executeCommand(ctx, shortName)
	}
	return a.cmd.Execute()
}

func (a *Application) executeCommand(ctx context.Context, shortName string) error {
	configFile := a.config.GetString(cfgConfigFile)
	if err := libconfig.LoadFile(configFile, a.TOMLConfig); err != nil {
		return serrors.Wrap("loading config from file", err, "file", configFile)
	}
	libconfig.InitAll(a.TOMLConfig)

	logEntriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framerouter_log_emitted_entries_total",
			Help: "Total number of log entries emitted.",
		},
		[]string{"level"},
	)
	opt := log.WithEntriesCounter(log.EntriesCounter{
		Debug: logEntriesTotal.With(prometheus.Labels{"level": "debug"}),
		Info:  logEntriesTotal.With(prometheus.Labels{"level": "info"}),
		Error: logEntriesTotal.With(prometheus.Labels{"level": "error"}),
	})
	if err := log.Setup(a.logConfig(), opt); err != nil {
		return serrors.Wrap("initialize logging", err)
	}
	defer log.Flush()
	defer log.HandlePanic()

	if err := libconfig.ValidateAll(a.TOMLConfig); err != nil {
		return serrors.Wrap("validate config", err)
	}

	log.Info("starting application", "name", shortName, "config", configFile)
	defer log.Info("application stopped", "name", shortName)

	if a.Main == nil {
		return nil
	}
	return a.Main(ctx)
}

func (a *Application) shortName(executable string) string {
	if a.ShortName != "" {
		return a.ShortName
	}
	return executable
}

func (a *Application) logConfig() log.Config {
	return log.Config{
		Console: log.ConsoleConfig{
			Level:           a.config.GetString(cfgLogConsoleLevel),
			Format:          a.config.GetString(cfgLogConsoleFormat),
			StacktraceLevel: a.config.GetString(cfgLogConsoleStacktrace),
		},
	}
}

func (a *Application) errorWriter() io.Writer {
	if a.ErrorWriter != nil {
		return a.ErrorWriter
	}
	return os.Stderr
}

func filepathBase(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
