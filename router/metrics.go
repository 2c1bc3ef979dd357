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

package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "framerouter"

// Metrics holds the router's exported counters and gauges. It is
// constructed once per Core and registered against a caller-supplied
// registry, following the promauto pattern used throughout the
// examined dataplane code.
type Metrics struct {
	invalidGroupMessages prometheus.Counter
	mplsPacketsConverted prometheus.Counter
	uplinkITMsRouted      *prometheus.CounterVec
	downlinkPacketsRouted *prometheus.CounterVec
	toSVDropped           prometheus.Counter
	toSIMDropped          prometheus.Counter
	missedTicks           prometheus.Counter
	batchesEmitted        *prometheus.CounterVec
	batchBytes            *prometheus.HistogramVec
	delayQueueDepth       prometheus.Gauge
	sendQueueDepth        *prometheus.GaugeVec
}

// NewMetrics registers the router's metrics against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		invalidGroupMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "bus_switch",
			Name:      "invalid_group_messages_total",
			Help:      "Downlink group messages discarded for failing wire-codec validation.",
		}),
		mplsPacketsConverted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "bus_switch",
			Name:      "mpls_packets_converted_total",
			Help:      "MPLS-labelled packets successfully decoded from downlink group messages.",
		}),
		uplinkITMsRouted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "core",
			Name:      "uplink_itms_routed_total",
			Help:      "Uplink ITMs accepted and scheduled for egress, by payload class (mission-data or other).",
		}, []string{"source"}),
		downlinkPacketsRouted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "core",
			Name:      "downlink_packets_routed_total",
			Help:      "Downlink MPLS packets routed, by destination endpoint.",
		}, []string{"destination"}),
		toSVDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "core",
			Name:      "to_sv_dropped_total",
			Help:      "Uplink packets dropped by the to-SV drop policy before egress batching.",
		}),
		toSIMDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "core",
			Name:      "to_sim_dropped_total",
			Help:      "Downlink packets dropped by the to-SIM drop policy before reaching bus-ingress.",
		}),
		missedTicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "frame_clock",
			Help:      "Cumulative missed timing-datagram ticks inferred from frame-offset gaps.",
			Name:      "missed_ticks_total",
		}),
		batchesEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "egress_batcher",
			Name:      "batches_emitted_total",
			Help:      "Group messages emitted, by plane.",
		}, []string{"plane"}),
		batchBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "egress_batcher",
			Name:      "batch_bytes",
			Help:      "Size in bytes of emitted group messages, by plane.",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 12),
		}, []string{"plane"}),
		delayQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "core",
			Name:      "uplink_delay_queue_depth",
			Help:      "Entries currently held in the uplink delay scheduler.",
		}),
		sendQueueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "endpoint",
			Name:      "send_queue_depth",
			Help:      "Outstanding buffers queued for send, by endpoint.",
		}, []string{"endpoint"}),
	}
}
