package services

import "github.com/prometheus/client_golang/prometheus"

var (
	OrderRefetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console",
			Subsystem: "orders",
			Name:      "refetches_total",
			Help:      "Order collection fetches by outcome (changed, unchanged, error)",
		},
		[]string{"outcome"},
	)

	LiveEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console",
			Subsystem: "live",
			Name:      "events_total",
			Help:      "Push channel events received by kind",
		},
		[]string{"kind"},
	)

	DraftSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console",
			Subsystem: "drafts",
			Name:      "submissions_total",
			Help:      "Product draft submissions by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	OpenDrafts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "console",
			Subsystem: "drafts",
			Name:      "open",
			Help:      "Drafts currently held in memory",
		},
	)
)

// Collectors lists the console metrics for registration
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{OrderRefetches, LiveEvents, DraftSubmissions, OpenDrafts}
}
