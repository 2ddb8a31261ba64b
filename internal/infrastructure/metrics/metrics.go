// Package metrics holds the Prometheus collectors for the attendance flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CheckIns       *prometheus.CounterVec
	TokenRotations prometheus.Counter
	Joins          prometheus.Counter
	Cancellations  prometheus.Counter
}

// New registers the attendance collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CheckIns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agora_checkins_total",
				Help: "Check-in attempts by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		TokenRotations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agora_token_rotations_total",
				Help: "Attendance token rotations",
			},
		),
		Joins: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agora_event_joins_total",
				Help: "Successful event registrations",
			},
		),
		Cancellations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agora_event_cancellations_total",
				Help: "Successful registration cancellations",
			},
		),
	}
}
