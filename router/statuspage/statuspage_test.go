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

package statuspage_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaysat/framerouter/router/statuspage"
)

type sampleConfig struct {
	Foo string `toml:"foo"`
}

func TestIndexListsRoutes(t *testing.T) {
	handler := statuspage.New("test-router", sampleConfig{Foo: "bar"}, prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test-router")
	assert.Contains(t, rec.Body.String(), "/status/info")
}

func TestStatusInfoReportsID(t *testing.T) {
	handler := statuspage.New("test-router", sampleConfig{}, prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/status/info", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test-router")
}

func TestStatusConfigEncodesAsTOML(t *testing.T) {
	handler := statuspage.New("test-router", sampleConfig{Foo: "bar"}, prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/status/config", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `foo = "bar"`)
}

func TestMetricsServesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter", Help: "."})
	require.NoError(t, reg.Register(counter))
	counter.Inc()

	handler := statuspage.New("test-router", sampleConfig{}, reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_counter")
}
