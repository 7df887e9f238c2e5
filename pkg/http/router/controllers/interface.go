package controllers

import (
	"context"

	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/geo"
)

type RoutingService interface {
	Route(ctx context.Context, start, end geo.Coordinate, radiusMeters float64, routeType da.RouteType) (da.RouteResult, error)
	PathCoordinates(ctx context.Context, nodePath []da.NodeID) ([]geo.Coordinate, error)
}

type WalkSafeService interface {
	Initialize(ctx context.Context) (int, error)
	UpdateModifier(ctx context.Context, field da.ModifierField, lat, lon, radiusMeters, value float64) (int, error)
	ComputeAt(ctx context.Context, lat, lon, radiusMeters float64) (int, error)
	ComputeAll(ctx context.Context) (int, error)
}

type AccessibilityService interface {
	Initialize(ctx context.Context) (int, error)
	ReportHazard(ctx context.Context, h da.Hazard) (da.Hazard, int, error)
	ResolveHazard(ctx context.Context, id da.HazardID) (int, error)
}

type OverlayService interface {
	AddOverlay(ctx context.Context, o da.CostOverlay) error
	PurgeExpired(ctx context.Context) (int, error)
}
