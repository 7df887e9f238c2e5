package usecases

import (
	"errors"

	"github.com/groundtruth/saferoute/pkg/engine/routing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	routeDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "saferoute",
		Subsystem: "routing",
		Name:      "route_duration_seconds",
		Help:      "Route request latency by route type and outcome.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"route_type", "outcome"})

	radiusAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoute",
		Subsystem: "routing",
		Name:      "radius_attempts_total",
		Help:      "Subgraph extraction attempts, one per radius tried.",
	}, []string{"route_type"})
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, routing.ErrSnapFailure):
		return "snap_failure"
	case errors.Is(err, routing.ErrNoRouteFound):
		return "no_route"
	case errors.Is(err, routing.ErrDataIntegrity):
		return "data_integrity"
	default:
		return "error"
	}
}
