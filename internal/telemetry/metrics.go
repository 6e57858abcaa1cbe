/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestsTotal counts HTTP API requests by method, endpoint and status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bragi_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIRequestDuration observes API request latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bragi_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIActiveConnections gauges in-flight API requests.
	APIActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bragi_api_active_connections",
			Help: "Number of in-flight API requests",
		},
	)

	// EventSubscribers gauges connected event WebSocket clients.
	EventSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bragi_event_subscribers",
			Help: "Number of connected event stream clients",
		},
	)

	// RoundsTotal counts completed playback rounds per session outcome.
	RoundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bragi_rounds_total",
			Help: "Total number of playback rounds by outcome",
		},
		[]string{"outcome"},
	)

	// RoundFailures counts aborted rounds by the phase that failed.
	RoundFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bragi_round_failures_total",
			Help: "Total number of failed rounds by phase",
		},
		[]string{"phase"},
	)

	// PreviewCutoffs counts previews stopped by the timer rather than
	// finishing naturally.
	PreviewCutoffs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bragi_preview_cutoffs_total",
			Help: "Total number of previews cut off at the preview window",
		},
	)

	// DatabaseQueryDuration observes GORM operation latency by table.
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bragi_db_query_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// DatabaseErrorsTotal counts failed GORM operations.
	DatabaseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bragi_db_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"operation"},
	)

	// DatabaseConnectionsActive gauges open connections in the pool.
	DatabaseConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bragi_db_connections_active",
			Help: "Number of open database connections",
		},
	)

	// SpeechSynthesisDuration observes TTS gateway round-trip latency.
	SpeechSynthesisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bragi_speech_synthesis_duration_seconds",
			Help:    "Speech synthesis round-trip duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
