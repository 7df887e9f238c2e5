package geodata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const LOG_PROGRESS_EVERY = 1000

var sweepItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "saferoute",
	Subsystem: "geodata",
	Name:      "sweep_items_total",
	Help:      "Locations processed by the environmental sweep, by outcome.",
}, []string{"outcome"})
