package usecases

import (
	"context"
	"time"

	"github.com/groundtruth/saferoute/pkg"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/engine/routing"
)

type GraphStore interface {
	SnapNearestNode(ctx context.Context, lat, lon float64) (da.NodeID, bool, error)
	GetNode(ctx context.Context, id da.NodeID) (da.Node, bool, error)
	LoadNodesWithinRadius(ctx context.Context, lat, lon, radiusMeters float64) ([]da.Node, error)
	LoadEdgesAmong(ctx context.Context, nodeIDs []da.NodeID, mode pkg.TravelMode) ([]da.Edge, error)
}

type OverlayStore interface {
	LoadActiveOverlays(ctx context.Context, edgeIDs []da.EdgeID, mode pkg.TravelMode, asOf time.Time) ([]da.CostOverlay, error)
}

type SafetyCostReader interface {
	LoadSafetyCosts(ctx context.Context, ids []da.EdgeID) ([]da.SafetyEdgeCost, error)
}

type AccessibilityCostReader interface {
	LoadAccessibilityCosts(ctx context.Context, ids []da.EdgeID) ([]da.AccessibilityEdgeCost, error)
}

type Router interface {
	ShortestPathSearch(graph routing.SearchGraph, s, t da.NodeID) (da.RouteResult, error)
}

type SafetyMaintainer interface {
	RecomputeAll(ctx context.Context) (int, error)
	UpdatePopDensity(ctx context.Context, lat, lon, radiusMeters, value float64) (int, error)
	UpdateStreetlight(ctx context.Context, lat, lon, radiusMeters, value float64) (int, error)
	UpdateCrimeInArea(ctx context.Context, lat, lon, radiusMeters, value float64) (int, error)
}

type EnvironmentalSweeper interface {
	SweepAll(ctx context.Context) (int, error)
	SweepPoint(ctx context.Context, lat, lon, radiusMeters float64) (int, error)
}

type AccessibilityMaintainer interface {
	RebuildAll(ctx context.Context) (int, error)
	ApplyHazard(ctx context.Context, h da.Hazard) (int, error)
	RemoveHazard(ctx context.Context, hazardID da.HazardID) (int, error)
}

type HazardRepository interface {
	UpsertHazard(ctx context.Context, h da.Hazard) error
	GetHazard(ctx context.Context, id da.HazardID) (da.Hazard, bool, error)
	DeleteHazard(ctx context.Context, id da.HazardID) error
}

type OverlayRepository interface {
	AddOverlay(ctx context.Context, o da.CostOverlay) error
	DeleteExpiredOverlays(ctx context.Context, asOf time.Time) (int, error)
}
