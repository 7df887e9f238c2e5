package usecases

import (
	"context"
	"time"

	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/util"
	"go.uber.org/zap"
)

type OverlayService struct {
	log   *zap.Logger
	store OverlayRepository
	now   func() time.Time
}

func NewOverlayService(log *zap.Logger, store OverlayRepository) *OverlayService {
	return &OverlayService{log: log, store: store, now: time.Now}
}

func (ovs *OverlayService) AddOverlay(ctx context.Context, o da.CostOverlay) error {
	if o.Multiplier < 0 {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "overlay multiplier must not be negative")
	}
	if o.ValidFrom != nil && o.ValidTo != nil && !o.ValidTo.After(*o.ValidFrom) {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "overlay validity window is empty")
	}
	if err := ovs.store.AddOverlay(ctx, o); err != nil {
		return util.WrapErrorf(err, util.ErrInternalServerError, "add overlay on edge %d", o.EdgeID)
	}
	ovs.log.Info("cost overlay added", zap.Int64("edge_id", int64(o.EdgeID)), zap.Stringer("mode", o.Mode),
		zap.Float64("multiplier", o.Multiplier), zap.Float64("delta_seconds", o.DeltaSeconds))
	return nil
}

// PurgeExpired. deletes overlays whose validity window has ended.
func (ovs *OverlayService) PurgeExpired(ctx context.Context) (int, error) {
	n, err := ovs.store.DeleteExpiredOverlays(ctx, ovs.now())
	if err != nil {
		return n, util.WrapErrorf(err, util.ErrInternalServerError, "purge expired overlays")
	}
	return n, nil
}
