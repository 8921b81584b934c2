package curator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vondralink",
			Name:      "search_duration_seconds",
			Help:      "Search latency in seconds by mode",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode"},
	)

	strategiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vondralink",
			Name:      "strategies_total",
			Help:      "Executed plan strategies by outcome",
		},
		[]string{"outcome"}, // filled, partial, empty, skipped
	)

	matchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vondralink",
			Name:      "matches_total",
			Help:      "Recommended products by match type",
		},
		[]string{"match_type"},
	)

	tierSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vondralink",
			Name:      "tier_selections_total",
			Help:      "Quality tier chosen per search",
		},
		[]string{"tier"},
	)
)
