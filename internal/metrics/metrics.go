// Package metrics holds the Prometheus instruments of a simulator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ancsim"

// Metrics is a set of instruments registered on one registry, so several
// simulators in a process do not collide.
type Metrics struct {
	Registry *prometheus.Registry

	// Gauges
	ActiveSessions prometheus.Gauge
	CancellationDB prometheus.Gauge

	// Counters
	SessionsStartedTotal   prometheus.Counter
	SessionsStoppedTotal   prometheus.Counter
	UnavailableStartsTotal prometheus.Counter
	ParamUpdatesTotal      *prometheus.CounterVec
	TeardownErrorsTotal    *prometheus.CounterVec
	FramesDrawnTotal       prometheus.Counter
}

// New creates the instruments on a fresh registry.
func New() *Metrics {
	return NewWith(prometheus.NewRegistry())
}

// NewWith creates the instruments on reg.
func NewWith(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,

		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of running interference sessions",
		}),
		CancellationDB: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cancellation_db",
			Help:      "Last measured level of the sum relative to the reference in dB",
		}),

		SessionsStartedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total sessions started",
		}),
		SessionsStoppedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_stopped_total",
			Help:      "Total sessions stopped",
		}),
		UnavailableStartsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_unavailable_starts_total",
			Help:      "Start requests refused because no audio engine was available",
		}),
		ParamUpdatesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "param_updates_total",
			Help:      "Parameter changes by name",
		}, []string{"param"}),
		TeardownErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "teardown_errors_total",
			Help:      "Errors ignored while tearing a session down, by node kind",
		}, []string{"node"}),
		FramesDrawnTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_drawn_total",
			Help:      "Waveform frames painted",
		}),
	}
}
