// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI provider attempts by outcome",
		},
		[]string{"task_type", "provider", "outcome"},
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ai_request_duration_seconds",
			Help: "Duration of AI provider attempts in seconds",
		},
		[]string{"task_type", "provider"},
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_rows_total",
			Help: "Total number of imported rows by result",
		},
		[]string{"result"},
	)

	LeaderboardRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "leaderboard_refresh_duration_seconds",
			Help: "Duration of a full leaderboard recomputation in seconds",
		},
	)

	QueryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_errors_total",
			Help: "Total number of repository query errors",
		},
		[]string{"query_type"},
	)

	ChangeEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "change_events_total",
			Help: "Total number of row-change notifications received",
		},
	)
)
