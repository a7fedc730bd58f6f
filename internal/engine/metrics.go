package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	mirrorJobs *prometheus.CounterVec
	hydrations *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		mirrorJobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "favorites_engine_mirror_jobs_total",
				Help: "Remote mirror jobs by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		hydrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "favorites_engine_hydrations_total",
				Help: "Remote hydrations by outcome",
			},
			[]string{"outcome"},
		),
	}
}
