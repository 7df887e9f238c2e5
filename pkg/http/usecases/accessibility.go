package usecases

import (
	"context"

	"github.com/google/uuid"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/util"
	"go.uber.org/zap"
)

type AccessibilityService struct {
	log         *zap.Logger
	maintainer  AccessibilityMaintainer
	hazardStore HazardRepository
}

func NewAccessibilityService(log *zap.Logger, maintainer AccessibilityMaintainer,
	hazardStore HazardRepository) *AccessibilityService {
	return &AccessibilityService{log: log, maintainer: maintainer, hazardStore: hazardStore}
}

func (as *AccessibilityService) Initialize(ctx context.Context) (int, error) {
	n, err := as.maintainer.RebuildAll(ctx)
	if err != nil {
		return n, util.WrapErrorf(err, util.ErrInternalServerError, "rebuild accessibility costs")
	}
	return n, nil
}

// ReportHazard. stores the hazard, assigning an id when it has none, then applies it to nearby walk edges.
func (as *AccessibilityService) ReportHazard(ctx context.Context, h da.Hazard) (da.Hazard, int, error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Location == nil || !h.Location.IsValid() {
		return h, 0, util.WrapErrorf(nil, util.ErrBadParamInput, "hazard location is invalid")
	}
	if err := as.hazardStore.UpsertHazard(ctx, h); err != nil {
		return h, 0, util.WrapErrorf(err, util.ErrInternalServerError, "save hazard %s", h.ID)
	}
	n, err := as.maintainer.ApplyHazard(ctx, h)
	if err != nil {
		return h, n, util.WrapErrorf(err, util.ErrorCode(err), "apply hazard %s", h.ID)
	}
	return h, n, nil
}

// ResolveHazard. removes the hazard's contribution from every edge, then deletes the hazard record.
func (as *AccessibilityService) ResolveHazard(ctx context.Context, id da.HazardID) (int, error) {
	_, ok, err := as.hazardStore.GetHazard(ctx, id)
	if err != nil {
		return 0, util.WrapErrorf(err, util.ErrInternalServerError, "load hazard %s", id)
	}
	if !ok {
		return 0, util.WrapErrorf(nil, util.ErrNotFound, "hazard %s not found", id)
	}

	n, err := as.maintainer.RemoveHazard(ctx, id)
	if err != nil {
		return n, util.WrapErrorf(err, util.ErrInternalServerError, "remove hazard %s", id)
	}
	if err := as.hazardStore.DeleteHazard(ctx, id); err != nil {
		return n, util.WrapErrorf(err, util.ErrInternalServerError, "delete hazard %s", id)
	}
	return n, nil
}
