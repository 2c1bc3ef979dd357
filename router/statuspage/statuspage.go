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

// Package statuspage serves the router's HTTP introspection surface:
// process info, the effective TOML configuration, and the Prometheus
// metrics registry, behind a chi router in the manner of the examined
// dataplane's service status pages.
package statuspage

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config is anything that can render itself as a sample-shaped value
// for the /status/config page. The router's Config satisfies this trivially
// by being TOML-tagged.
type Config any

// New builds the status HTTP handler: /status/info, /status/config,
// and /metrics (registered against reg). reg must be a concrete
// *prometheus.Registry since /metrics instruments its own handler,
// which requires a Registerer as well as a Gatherer.
func New(id string, cfg Config, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{AllowedOrigins: []string{"*"}}))

	r.Get("/", indexHandler(id))
	r.Get("/status/info", infoHandler(id))
	r.Get("/status/config", configHandler(cfg))
	r.Handle("/metrics", promhttp.InstrumentMetricHandler(reg, promhttp.HandlerFor(
		reg, promhttp.HandlerOpts{},
	)))
	return r
}

func indexHandler(id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "%s\n\n  /status/info\n  /status/config\n  /metrics\n", id)
	}
}

func infoHandler(id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "id:       %s\npid:      %d\ncmd line: %q\n", id, os.Getpid(), os.Args)
	}
}

func configHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			http.Error(w, "cannot encode configuration", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, buf.String())
	}
}
