package customizer

import (
	"context"

	"github.com/groundtruth/saferoute/pkg"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
)

type EdgeStore interface {
	GetEdges(ctx context.Context, ids []da.EdgeID) ([]da.Edge, error)
	ListEdgesByMode(ctx context.Context, mode pkg.TravelMode) ([]da.Edge, error)
	FindEdgesNear(ctx context.Context, lat, lon, radiusMeters float64, mode pkg.TravelMode) ([]da.EdgeID, error)
}

type SafetyModifierStore interface {
	LoadSafetyModifiers(ctx context.Context, ids []da.EdgeID) ([]da.SafetyModifier, error)
	UpsertSafetyModifiers(ctx context.Context, rows []da.SafetyModifier) error
}

type SafetyCostStore interface {
	UpsertSafetyCosts(ctx context.Context, rows []da.SafetyEdgeCost) error
}

type AccessibilityCostStore interface {
	LoadAccessibilityCosts(ctx context.Context, ids []da.EdgeID) ([]da.AccessibilityEdgeCost, error)
	FindAccessibilityCostsByHazard(ctx context.Context, hazardID da.HazardID) ([]da.AccessibilityEdgeCost, error)
	ListAccessibilityCostEdgeIDs(ctx context.Context) ([]da.EdgeID, error)
	UpsertAccessibilityCost(ctx context.Context, row da.AccessibilityEdgeCost) error
	DeleteAccessibilityCost(ctx context.Context, edgeID da.EdgeID) error
}

type HazardStore interface {
	LoadHazardsByIds(ctx context.Context, ids []da.HazardID) ([]da.Hazard, error)
	ListHazardsByTypes(ctx context.Context, types []da.HazardType) ([]da.Hazard, error)
}
