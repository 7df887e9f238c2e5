package customizer

import (
	"context"
	"fmt"

	"github.com/groundtruth/saferoute/pkg"
	"github.com/groundtruth/saferoute/pkg/costfunction"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/util"
	"go.uber.org/zap"
)

// AccessibilityCustomizer. owns the writes of the accessibility cost table.
// the contributing hazard set of a row is the source of truth: every recompute re-reads the
// hazard records of the set instead of trusting a cached multiplier.
type AccessibilityCustomizer struct {
	edges   EdgeStore
	hazards HazardStore
	costs   AccessibilityCostStore
	config  *costfunction.HazardCostConfig
	log     *zap.Logger
}

func NewAccessibilityCustomizer(edges EdgeStore, hazards HazardStore, costs AccessibilityCostStore,
	config *costfunction.HazardCostConfig, log *zap.Logger) *AccessibilityCustomizer {
	return &AccessibilityCustomizer{
		edges:   edges,
		hazards: hazards,
		costs:   costs,
		config:  config,
		log:     log,
	}
}

// contributes. a stored hazard counts toward accessibility cost when its type is known and in the
// accessibility class. a missing severity counts as the default severity.
func (c *AccessibilityCustomizer) contributes(h da.Hazard) bool {
	return h.Type != da.UNKNOWN_HAZARD && c.config.IsAccessibilityHazard(h.Type)
}

// RebuildAll. recomputes the whole table from the hazard store. edges with no qualifying hazard
// nearby are left without a row, stale rows are deleted. a hazard whose edge lookup fails or a row
// whose write fails is skipped and counted; stale rows are kept when any lookup failed.
// returns the number of rows written.
func (c *AccessibilityCustomizer) RebuildAll(ctx context.Context) (int, error) {
	hazards, err := c.hazards.ListHazardsByTypes(ctx, c.config.AccessibilityHazardTypes())
	if err != nil {
		return 0, fmt.Errorf("list accessibility hazards: %w", err)
	}
	c.log.Info("rebuilding accessibility costs", zap.Int("hazards", len(hazards)))

	groups := make(map[da.EdgeID]*costfunction.AccessibilityAccumulator)
	edgeOrder := make([]da.EdgeID, 0)
	lookupFailed := 0
	for i, h := range hazards {
		if util.StopConcurrentOperation(ctx) {
			return 0, ctx.Err()
		}
		if !c.contributes(h) || h.Location == nil || !h.Location.IsValid() {
			skippedItemsTotal.WithLabelValues("accessibility", "incomplete_hazard").Inc()
			c.log.Warn("skipping hazard with unknown type or location", zap.Stringer("hazard_id", h.ID))
			continue
		}
		edgeIDs, err := c.edges.FindEdgesNear(ctx, h.Location.Lat, h.Location.Lon,
			c.config.GetEffectRadiusMeters(), pkg.WALK)
		if err != nil {
			lookupFailed++
			skippedItemsTotal.WithLabelValues("accessibility", "lookup_failed").Inc()
			c.log.Warn("skipping hazard, walk edge lookup failed", zap.Stringer("hazard_id", h.ID), zap.Error(err))
			continue
		}
		for _, id := range edgeIDs {
			acc, ok := groups[id]
			if !ok {
				acc = costfunction.NewAccessibilityAccumulator(c.config)
				groups[id] = acc
				edgeOrder = append(edgeOrder, id)
			}
			acc.Add(h)
		}
		if (i+1)%LOG_PROGRESS_EVERY == 0 {
			c.log.Debug("accessibility rebuild progress", zap.Int("hazards", i+1))
		}
	}

	baseCosts, err := c.baseCosts(ctx, edgeOrder)
	if err != nil {
		return 0, err
	}

	updated, failed := 0, 0
	for _, id := range edgeOrder {
		if util.StopConcurrentOperation(ctx) {
			return updated, ctx.Err()
		}
		base, ok := baseCosts[id]
		if !ok {
			skippedItemsTotal.WithLabelValues("accessibility", "missing_edge").Inc()
			continue
		}
		acc := groups[id]
		if err := c.costs.UpsertAccessibilityCost(ctx, newAccessibilityRow(id, base, acc)); err != nil {
			failed++
			skippedItemsTotal.WithLabelValues("accessibility", "upsert_failed").Inc()
			c.log.Warn("failed to write accessibility cost", zap.Int64("edge_id", int64(id)), zap.Error(err))
			continue
		}
		updated++
	}

	deleted := 0
	if lookupFailed == 0 {
		deleted, err = c.deleteStaleRows(ctx, groups)
		if err != nil {
			return updated, err
		}
	} else {
		c.log.Warn("keeping stale accessibility rows, some hazard lookups failed", zap.Int("hazards", lookupFailed))
	}

	edgesUpdatedTotal.WithLabelValues("accessibility", "rebuild_all").Add(float64(updated))
	edgesDeletedTotal.WithLabelValues("rebuild_all").Add(float64(deleted))
	c.log.Info("accessibility costs rebuilt", zap.Int("updated", updated), zap.Int("deleted", deleted),
		zap.Int("lookup_failed", lookupFailed), zap.Int("write_failed", failed))
	return updated, nil
}

func (c *AccessibilityCustomizer) deleteStaleRows(ctx context.Context,
	live map[da.EdgeID]*costfunction.AccessibilityAccumulator) (int, error) {
	existing, err := c.costs.ListAccessibilityCostEdgeIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list accessibility costs: %w", err)
	}
	deleted := 0
	for _, id := range existing {
		if _, ok := live[id]; ok {
			continue
		}
		if err := c.costs.DeleteAccessibilityCost(ctx, id); err != nil {
			return deleted, fmt.Errorf("delete accessibility cost %d: %w", id, err)
		}
		deleted++
	}
	return deleted, nil
}

// ApplyHazard. adds or replaces the hazard's contribution on every walk edge within the effect radius.
// rows that counted the hazard at a previous location outside the new radius drop it.
// hazards outside the accessibility class are ignored. unknown severity counts as the default severity.
// returns the number of rows written or deleted.
func (c *AccessibilityCustomizer) ApplyHazard(ctx context.Context, h da.Hazard) (int, error) {
	if !c.config.IsAccessibilityHazard(h.Type) {
		c.log.Debug("hazard type does not affect accessibility", zap.Stringer("hazard_id", h.ID),
			zap.Stringer("type", h.Type))
		return 0, nil
	}
	if h.Location == nil || !h.Location.IsValid() {
		return 0, util.WrapErrorf(nil, util.ErrBadParamInput, "hazard %s has no valid location", h.ID)
	}
	if h.Severity == nil {
		severity := h.SeverityOrDefault()
		h.Severity = &severity
	}

	edgeIDs, err := c.edges.FindEdgesNear(ctx, h.Location.Lat, h.Location.Lon, c.config.GetEffectRadiusMeters(), pkg.WALK)
	if err != nil {
		return 0, fmt.Errorf("find walk edges near hazard %s: %w", h.ID, err)
	}

	moved, err := c.dropFromMovedEdges(ctx, h.ID, edgeIDs)
	if err != nil {
		return moved, err
	}
	if len(edgeIDs) == 0 {
		c.log.Info("no walk edges near hazard", zap.Stringer("hazard_id", h.ID), zap.Int("moved_from", moved))
		return moved, nil
	}

	existing, err := c.costs.LoadAccessibilityCosts(ctx, edgeIDs)
	if err != nil {
		return 0, fmt.Errorf("load accessibility costs: %w", err)
	}
	setByEdge := make(map[da.EdgeID][]da.HazardID, len(existing))
	others := make([]da.HazardID, 0)
	for _, row := range existing {
		ids := make([]da.HazardID, 0, len(row.ContributingHazardIDs))
		for _, id := range row.ContributingHazardIDs {
			if id != h.ID {
				ids = append(ids, id)
			}
		}
		setByEdge[row.EdgeID] = ids
		others = append(others, ids...)
	}

	hydrated, err := c.rehydrate(ctx, others)
	if err != nil {
		return moved, err
	}
	baseCosts, err := c.baseCosts(ctx, edgeIDs)
	if err != nil {
		return moved, err
	}

	updated := 0
	for _, id := range edgeIDs {
		base, ok := baseCosts[id]
		if !ok {
			skippedItemsTotal.WithLabelValues("accessibility", "missing_edge").Inc()
			continue
		}
		acc := costfunction.NewAccessibilityAccumulator(c.config)
		for _, otherID := range setByEdge[id] {
			if other, ok := hydrated[otherID]; ok {
				acc.Add(other)
			}
		}
		acc.Add(h)
		if err := c.costs.UpsertAccessibilityCost(ctx, newAccessibilityRow(id, base, acc)); err != nil {
			return moved + updated, fmt.Errorf("upsert accessibility cost %d: %w", id, err)
		}
		updated++
	}

	edgesUpdatedTotal.WithLabelValues("accessibility", "apply_hazard").Add(float64(updated))
	c.log.Info("hazard applied", zap.Stringer("hazard_id", h.ID), zap.Stringer("type", h.Type),
		zap.Float64("severity", *h.Severity), zap.Int("edges", updated), zap.Int("moved_from", moved))
	return moved + updated, nil
}

// dropFromMovedEdges. removes the hazard from rows that still count it but whose edge is no longer
// within its effect radius.
func (c *AccessibilityCustomizer) dropFromMovedEdges(ctx context.Context, hazardID da.HazardID,
	nearIDs []da.EdgeID) (int, error) {
	rows, err := c.costs.FindAccessibilityCostsByHazard(ctx, hazardID)
	if err != nil {
		return 0, fmt.Errorf("find accessibility costs of hazard %s: %w", hazardID, err)
	}
	near := make(map[da.EdgeID]struct{}, len(nearIDs))
	for _, id := range nearIDs {
		near[id] = struct{}{}
	}
	stale := make([]da.AccessibilityEdgeCost, 0)
	for _, row := range rows {
		if _, ok := near[row.EdgeID]; !ok {
			stale = append(stale, row)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	updated, deleted, err := c.dropHazard(ctx, hazardID, stale)
	edgesUpdatedTotal.WithLabelValues("accessibility", "apply_hazard").Add(float64(updated))
	edgesDeletedTotal.WithLabelValues("apply_hazard").Add(float64(deleted))
	return updated + deleted, err
}

// RemoveHazard. drops the hazard from every row that counts it. a row whose remaining set has no
// contributing hazard is deleted so the edge reverts to base cost. returns the number of rows touched.
func (c *AccessibilityCustomizer) RemoveHazard(ctx context.Context, hazardID da.HazardID) (int, error) {
	rows, err := c.costs.FindAccessibilityCostsByHazard(ctx, hazardID)
	if err != nil {
		return 0, fmt.Errorf("find accessibility costs of hazard %s: %w", hazardID, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	updated, deleted, err := c.dropHazard(ctx, hazardID, rows)
	edgesUpdatedTotal.WithLabelValues("accessibility", "remove_hazard").Add(float64(updated))
	edgesDeletedTotal.WithLabelValues("remove_hazard").Add(float64(deleted))
	if err != nil {
		return updated + deleted, err
	}
	c.log.Info("hazard removed", zap.Stringer("hazard_id", hazardID), zap.Int("updated", updated),
		zap.Int("deleted", deleted))
	return updated + deleted, nil
}

// dropHazard. recomputes rows without the hazard. a row left with no contributing hazard is deleted.
func (c *AccessibilityCustomizer) dropHazard(ctx context.Context, hazardID da.HazardID,
	rows []da.AccessibilityEdgeCost) (updated, deleted int, err error) {
	edgeIDs := make([]da.EdgeID, len(rows))
	remaining := make([]da.HazardID, 0)
	for i, row := range rows {
		edgeIDs[i] = row.EdgeID
		for _, id := range row.ContributingHazardIDs {
			if id != hazardID {
				remaining = append(remaining, id)
			}
		}
	}
	hydrated, err := c.rehydrate(ctx, remaining)
	if err != nil {
		return 0, 0, err
	}
	baseCosts, err := c.baseCosts(ctx, edgeIDs)
	if err != nil {
		return 0, 0, err
	}

	for _, row := range rows {
		acc := costfunction.NewAccessibilityAccumulator(c.config)
		for _, id := range row.ContributingHazardIDs {
			if h, ok := hydrated[id]; ok && id != hazardID {
				acc.Add(h)
			}
		}

		base, ok := baseCosts[row.EdgeID]
		if acc.Len() == 0 || !ok {
			if err := c.costs.DeleteAccessibilityCost(ctx, row.EdgeID); err != nil {
				return updated, deleted, fmt.Errorf("delete accessibility cost %d: %w", row.EdgeID, err)
			}
			deleted++
			continue
		}
		if err := c.costs.UpsertAccessibilityCost(ctx, newAccessibilityRow(row.EdgeID, base, acc)); err != nil {
			return updated, deleted, fmt.Errorf("upsert accessibility cost %d: %w", row.EdgeID, err)
		}
		updated++
	}
	return updated, deleted, nil
}

// rehydrate. loads the hazard records of ids, dropping the ones that no longer contribute.
func (c *AccessibilityCustomizer) rehydrate(ctx context.Context, ids []da.HazardID) (map[da.HazardID]da.Hazard, error) {
	out := make(map[da.HazardID]da.Hazard, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	hazards, err := c.hazards.LoadHazardsByIds(ctx, dedupe(ids))
	if err != nil {
		return nil, fmt.Errorf("load hazards: %w", err)
	}
	for _, h := range hazards {
		if !c.contributes(h) {
			skippedItemsTotal.WithLabelValues("accessibility", "incomplete_hazard").Inc()
			continue
		}
		out[h.ID] = h
	}
	return out, nil
}

func (c *AccessibilityCustomizer) baseCosts(ctx context.Context, ids []da.EdgeID) (map[da.EdgeID]float64, error) {
	edges, err := c.edges.GetEdges(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get edges: %w", err)
	}
	out := make(map[da.EdgeID]float64, len(edges))
	for _, e := range edges {
		out[e.GetID()] = e.GetCostSeconds()
	}
	return out, nil
}

func newAccessibilityRow(edgeID da.EdgeID, baseCost float64,
	acc *costfunction.AccessibilityAccumulator) da.AccessibilityEdgeCost {
	return da.AccessibilityEdgeCost{
		EdgeID:                edgeID,
		CostSeconds:           acc.Apply(baseCost),
		ContributingHazardIDs: acc.HazardIDs(),
	}
}

func dedupe[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
