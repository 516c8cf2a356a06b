package ops

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the monitor's operational counters, registered on a private
// registry served by the ops HTTP server.
type Metrics struct {
	Registry *prometheus.Registry

	Cycles         prometheus.Counter
	CycleFailures  prometheus.Counter
	Actions        *prometheus.CounterVec
	RemoteFailures prometheus.Counter
	CycleDuration  prometheus.Gauge
	CampaignCount  prometheus.Gauge
}

// NewMetrics creates and registers the metric set.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adspilot_cycles_total",
			Help: "Completed evaluation cycles.",
		}),
		CycleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adspilot_cycle_failures_total",
			Help: "Cycles that ended with an error or panic.",
		}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adspilot_actions_total",
			Help: "Budget actions executed, by kind.",
		}, []string{"kind"}),
		RemoteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adspilot_remote_failures_total",
			Help: "Actions whose remote mirror did not succeed.",
		}),
		CycleDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adspilot_cycle_duration_seconds",
			Help: "Duration of the most recent cycle.",
		}),
		CampaignCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adspilot_campaigns",
			Help: "Campaigns seen in the most recent cycle.",
		}),
	}
	reg.MustRegister(m.Cycles, m.CycleFailures, m.Actions, m.RemoteFailures, m.CycleDuration, m.CampaignCount)
	return m
}
