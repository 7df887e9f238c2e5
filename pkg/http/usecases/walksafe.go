package usecases

import (
	"context"

	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/util"
	"go.uber.org/zap"
)

type WalkSafeService struct {
	log     *zap.Logger
	safety  SafetyMaintainer
	sweeper EnvironmentalSweeper // nil when no environmental data provider is configured
}

func NewWalkSafeService(log *zap.Logger, safety SafetyMaintainer, sweeper EnvironmentalSweeper) *WalkSafeService {
	return &WalkSafeService{log: log, safety: safety, sweeper: sweeper}
}

// Initialize. full rebuild of the safety cost table from the stored modifiers.
func (ws *WalkSafeService) Initialize(ctx context.Context) (int, error) {
	n, err := ws.safety.RecomputeAll(ctx)
	if err != nil {
		return n, util.WrapErrorf(err, util.ErrInternalServerError, "recompute safety costs")
	}
	return n, nil
}

// UpdateModifier. sets one modifier field for every walk edge within radiusMeters of the point.
func (ws *WalkSafeService) UpdateModifier(ctx context.Context, field da.ModifierField, lat, lon, radiusMeters,
	value float64) (int, error) {
	var (
		n   int
		err error
	)
	switch field {
	case da.POP_DENSITY:
		n, err = ws.safety.UpdatePopDensity(ctx, lat, lon, radiusMeters, value)
	case da.STREETLIGHT:
		n, err = ws.safety.UpdateStreetlight(ctx, lat, lon, radiusMeters, value)
	case da.CRIME_IN_AREA:
		n, err = ws.safety.UpdateCrimeInArea(ctx, lat, lon, radiusMeters, value)
	default:
		return 0, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown modifier field %d", field)
	}
	if err != nil {
		return n, util.WrapErrorf(err, util.ErrInternalServerError, "update %s modifier", field)
	}
	return n, nil
}

// ComputeAt. fetches and applies every environmental signal at one location.
func (ws *WalkSafeService) ComputeAt(ctx context.Context, lat, lon, radiusMeters float64) (int, error) {
	if ws.sweeper == nil {
		return 0, util.WrapErrorf(nil, util.ErrUnavailable, "environmental data provider is not configured")
	}
	n, err := ws.sweeper.SweepPoint(ctx, lat, lon, radiusMeters)
	if err != nil {
		return n, util.WrapErrorf(err, util.ErrInternalServerError, "environmental sweep at (%f, %f)", lat, lon)
	}
	return n, nil
}

// ComputeAll. sweeps every walk edge, then rebuilds the safety cost table.
func (ws *WalkSafeService) ComputeAll(ctx context.Context) (int, error) {
	if ws.sweeper == nil {
		return 0, util.WrapErrorf(nil, util.ErrUnavailable, "environmental data provider is not configured")
	}
	n, err := ws.sweeper.SweepAll(ctx)
	if err != nil {
		return n, util.WrapErrorf(err, util.ErrInternalServerError, "environmental sweep")
	}
	return n, nil
}
