// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReviewLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_loads_total",
			Help: "Total number of application detail loads",
		},
		[]string{"result"},
	)

	ReviewTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_transitions_total",
			Help: "Total number of status transition submissions",
		},
		[]string{"action", "result"},
	)

	ReviewTransitionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "review_transition_duration_seconds",
			Help: "Duration of status transition round trips in seconds",
		},
		[]string{"action"},
	)

	ReviewSubmissionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "review_submissions_active",
			Help: "Number of in-flight action submissions",
		},
		[]string{"action"},
	)

	SideEffectFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_side_effect_failures_total",
			Help: "Total number of failed side-effecting collaborator calls",
		},
		[]string{"kind"},
	)
)
