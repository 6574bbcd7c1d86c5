// Copyright 2025 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes Prometheus counters for the shell engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vshell_commands_total",
			Help: "Total number of dispatched commands",
		},
		[]string{"command"},
	)

	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vshell_command_duration_seconds",
			Help:    "Command dispatch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	pingSessionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vshell_ping_sessions_total",
			Help: "Total number of started ping sessions",
		},
	)

	autocompleteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vshell_autocomplete_total",
			Help: "Total number of autocomplete requests",
		},
		[]string{"result"},
	)

	entities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vshell_entities",
			Help: "Number of entities in the virtual filesystem",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCommand counts one dispatched command.
func RecordCommand(command string, duration time.Duration) {
	commandsTotal.WithLabelValues(command).Inc()
	commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordPing counts one started ping session.
func RecordPing() {
	pingSessionsTotal.Inc()
}

// RecordAutocomplete counts one completion attempt.
func RecordAutocomplete(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	autocompleteTotal.WithLabelValues(result).Inc()
}

// SetEntities publishes the filesystem size.
func SetEntities(n int) {
	entities.Set(float64(n))
}
