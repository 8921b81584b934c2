package planner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var planFallbacks = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "vondralink",
		Name:      "plan_fallbacks_total",
		Help:      "LLM plan failures handled by the rule planner",
	},
)
