package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiapx_animate_generations_total",
		Help: "Total number of generation requests, by outcome",
	}, []string{"outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fiapx_animate_stage_duration_seconds",
		Help:    "Duration of each orchestration stage",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
	}, []string{"stage"})

	FramesNormalizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiapx_animate_frames_normalized_total",
		Help: "Total number of motion sequence frames normalized",
	})

	ActiveGenerations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fiapx_animate_active_generations",
		Help: "Number of external generator processes currently running",
	})
)

const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeTimeout   = "timeout"
	OutcomeRejected  = "rejected"
	OutcomeBusy      = "busy"
)
