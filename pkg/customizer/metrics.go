package customizer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	edgesUpdatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "customizer",
		Name:      "edges_updated_total",
		Help:      "Precomputed edge cost rows written, by maintainer and operation.",
	}, []string{"maintainer", "operation"})

	edgesDeletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "customizer",
		Name:      "edges_deleted_total",
		Help:      "Accessibility cost rows deleted, by operation.",
	}, []string{"operation"})

	skippedItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "customizer",
		Name:      "skipped_items_total",
		Help:      "Hazards or edges skipped because of missing or invalid data.",
	}, []string{"maintainer", "reason"})
)
