// Package metrics exposes the application manager's counters and gauges as
// real Prometheus collectors. BaseSupervisor
// (kernel/threads/supervisor/base.go) commits every supervisor to a
// Metrics() method; here that contract is backed by
// github.com/prometheus/client_golang instead of a hand-rolled struct,
// since the dependency is already part of the module's graph.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the application manager's Prometheus collectors. A fresh
// Metrics is registered against its own Registry rather than the global
// default one, so multiple AppManager instances (as in tests) never
// collide registering the same collector twice.
type Metrics struct {
	Registry *prometheus.Registry

	StartsTotal      prometheus.Counter
	StartErrorsTotal *prometheus.CounterVec
	QuitsTotal       prometheus.Counter
	QueueDroppedTotal *prometheus.CounterVec
	GuestTaskAlive   prometheus.Gauge
}

// New creates and registers the application manager's collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		StartsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appmanager_starts_total",
			Help: "Number of successful app start transitions.",
		}),
		StartErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appmanager_start_errors_total",
			Help: "Number of failed app start attempts, by error kind.",
		}, []string{"kind"}),
		QuitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appmanager_quits_total",
			Help: "Number of running guests terminated by the controller before starting a replacement.",
		}),
		QueueDroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appmanager_queue_dropped_total",
			Help: "Number of events dropped because a queue was full, by queue.",
		}, []string{"queue"}),
		GuestTaskAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "appmanager_guest_task_alive",
			Help: "1 if a guest task currently exists, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		m.StartsTotal,
		m.StartErrorsTotal,
		m.QuitsTotal,
		m.QueueDroppedTotal,
		m.GuestTaskAlive,
	)

	return m
}
