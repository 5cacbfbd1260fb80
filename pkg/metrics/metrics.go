// Copyright 2025 walteh LLC
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

// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 📊 Result labels shared by the counters below.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultConflict = "conflict"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

var (
	// StoreOperations counts versioned store calls by operation and outcome.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogcreator_store_operations_total",
		Help: "Versioned file store operations by outcome.",
	}, []string{"op", "result"})

	// RewriteDuration tracks provider latency.
	RewriteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogcreator_rewrite_duration_seconds",
		Help:    "Time spent waiting on a rewrite provider.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider"})

	// RewriteResults counts dispatches by provider and result (ok or a failure reason).
	RewriteResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogcreator_rewrite_results_total",
		Help: "Rewrite dispatches by provider and outcome.",
	}, []string{"provider", "result"})

	// RewriteInputChars tracks the distribution of source text lengths.
	RewriteInputChars = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blogcreator_rewrite_input_chars",
		Help:    "Number of characters in rewrite source text.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 50000},
	})

	// ProviderAvailable is set by probes: 1 reachable, 0 not.
	ProviderAvailable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "blogcreator_provider_available",
		Help: "Whether a rewrite provider answered its last probe (1) or not (0).",
	}, []string{"provider"})

	// RequestsTotal counts HTTP requests by method, route and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogcreator_http_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "route", "status"})
)
