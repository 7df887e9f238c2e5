package customizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/groundtruth/saferoute/pkg"
	"github.com/groundtruth/saferoute/pkg/concurrent"
	"github.com/groundtruth/saferoute/pkg/costfunction"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/util"
	"go.uber.org/zap"
)

// ModifierTarget. either a single edge or every walk edge within RadiusMeters of (Lat, Lon).
type ModifierTarget struct {
	edgeID       *da.EdgeID
	lat          float64
	lon          float64
	radiusMeters float64
}

func RegionTarget(lat, lon, radiusMeters float64) ModifierTarget {
	if radiusMeters <= 0 {
		radiusMeters = pkg.DEFAULT_BULK_RADIUS_METERS
	}
	return ModifierTarget{lat: lat, lon: lon, radiusMeters: radiusMeters}
}

func EdgeTarget(edgeID da.EdgeID) ModifierTarget {
	return ModifierTarget{edgeID: &edgeID}
}

func (t ModifierTarget) IsEdge() bool {
	return t.edgeID != nil
}

func (t ModifierTarget) String() string {
	if t.edgeID != nil {
		return fmt.Sprintf("edge %d", *t.edgeID)
	}
	return fmt.Sprintf("(%f, %f) r=%.0fm", t.lat, t.lon, t.radiusMeters)
}

// SafetyCustomizer. owns the writes of the safety cost table.
// cost = max(0, base x safety multiplier of the edge's modifier), walk edges only.
type SafetyCustomizer struct {
	edges     EdgeStore
	modifiers SafetyModifierStore
	costs     SafetyCostStore
	log       *zap.Logger

	numWorkers int
	batchSize  int
}

func NewSafetyCustomizer(edges EdgeStore, modifiers SafetyModifierStore, costs SafetyCostStore,
	log *zap.Logger) *SafetyCustomizer {
	return &SafetyCustomizer{
		edges:      edges,
		modifiers:  modifiers,
		costs:      costs,
		log:        log,
		numWorkers: SAFETY_UPDATER_WORKER,
		batchSize:  SAFETY_BATCH_SIZE,
	}
}

type batchResult struct {
	updated int
	err     error
}

// RecomputeAll. recomputes the safety cost of every walk edge and upserts all rows.
// returns the number of rows written.
func (c *SafetyCustomizer) RecomputeAll(ctx context.Context) (int, error) {
	edges, err := c.edges.ListEdgesByMode(ctx, pkg.WALK)
	if err != nil {
		return 0, fmt.Errorf("list walk edges: %w", err)
	}
	c.log.Info("recomputing safety costs", zap.Int("edges", len(edges)))

	batches := concurrent.Chunk(edges, c.batchSize)
	results := concurrent.Map(c.numWorkers, batches, func(batch []da.Edge) batchResult {
		n, err := c.recompute(ctx, batch)
		return batchResult{updated: n, err: err}
	})

	updated := 0
	var errs []error
	for _, res := range results {
		updated += res.updated
		if res.err != nil {
			errs = append(errs, res.err)
		}
	}
	edgesUpdatedTotal.WithLabelValues("safety", "recompute_all").Add(float64(updated))

	if len(errs) > 0 {
		return updated, fmt.Errorf("recompute safety costs: %w", errors.Join(errs...))
	}
	c.log.Info("safety costs recomputed", zap.Int("updated", updated))
	return updated, nil
}

// recompute. reads the current modifiers of the edges and upserts their costs in one batch.
func (c *SafetyCustomizer) recompute(ctx context.Context, edges []da.Edge) (int, error) {
	if len(edges) == 0 {
		return 0, nil
	}
	ids := make([]da.EdgeID, len(edges))
	for i, e := range edges {
		ids[i] = e.GetID()
	}

	mods, err := c.modifiers.LoadSafetyModifiers(ctx, ids)
	if err != nil {
		return 0, err
	}
	modByEdge := make(map[da.EdgeID]*da.SafetyModifier, len(mods))
	for i := range mods {
		modByEdge[mods[i].EdgeID] = &mods[i]
	}

	rows := make([]da.SafetyEdgeCost, len(edges))
	for i, e := range edges {
		rows[i] = da.SafetyEdgeCost{
			EdgeID:      e.GetID(),
			CostSeconds: costfunction.SafetyCost(e.GetCostSeconds(), modByEdge[e.GetID()]),
		}
	}
	if err := c.costs.UpsertSafetyCosts(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ApplyModifierUpdate. sets one modifier field on the target walk edges, then recomputes exactly those edges.
// value is clamped to [0,1]. returns the number of edges whose cost was recomputed.
func (c *SafetyCustomizer) ApplyModifierUpdate(ctx context.Context, target ModifierTarget, field da.ModifierField,
	value float64) (int, error) {
	value = util.Clamp(value, 0, 1)

	edges, err := c.targetEdges(ctx, target)
	if err != nil {
		return 0, err
	}
	if len(edges) == 0 {
		c.log.Debug("no walk edges for modifier update", zap.Stringer("target", target),
			zap.Stringer("field", field))
		return 0, nil
	}

	ids := make([]da.EdgeID, len(edges))
	for i, e := range edges {
		ids[i] = e.GetID()
	}
	existing, err := c.modifiers.LoadSafetyModifiers(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("load safety modifiers: %w", err)
	}
	modByEdge := make(map[da.EdgeID]da.SafetyModifier, len(existing))
	for _, m := range existing {
		modByEdge[m.EdgeID] = m
	}

	rows := make([]da.SafetyModifier, len(ids))
	for i, id := range ids {
		m, ok := modByEdge[id]
		if !ok {
			m = da.NewSafetyModifier(id)
		}
		m.Set(field, value)
		rows[i] = m
	}
	if err := c.modifiers.UpsertSafetyModifiers(ctx, rows); err != nil {
		return 0, fmt.Errorf("upsert safety modifiers: %w", err)
	}

	updated, err := c.recompute(ctx, edges)
	if err != nil {
		return updated, fmt.Errorf("recompute safety costs: %w", err)
	}
	edgesUpdatedTotal.WithLabelValues("safety", "modifier_"+field.String()).Add(float64(updated))
	c.log.Info("safety modifier applied", zap.Stringer("target", target), zap.Stringer("field", field),
		zap.Float64("value", value), zap.Int("edges", updated))
	return updated, nil
}

func (c *SafetyCustomizer) targetEdges(ctx context.Context, target ModifierTarget) ([]da.Edge, error) {
	var ids []da.EdgeID
	if target.IsEdge() {
		ids = []da.EdgeID{*target.edgeID}
	} else {
		var err error
		ids, err = c.edges.FindEdgesNear(ctx, target.lat, target.lon, target.radiusMeters, pkg.WALK)
		if err != nil {
			return nil, fmt.Errorf("find walk edges near %s: %w", target, err)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	edges, err := c.edges.GetEdges(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get edges: %w", err)
	}
	walk := edges[:0]
	for _, e := range edges {
		if e.GetMode() == pkg.WALK {
			walk = append(walk, e)
		}
	}
	if target.IsEdge() && len(walk) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "walk edge %d not found", *target.edgeID)
	}
	return walk, nil
}

func (c *SafetyCustomizer) UpdatePopDensity(ctx context.Context, lat, lon, radiusMeters, value float64) (int, error) {
	return c.ApplyModifierUpdate(ctx, RegionTarget(lat, lon, radiusMeters), da.POP_DENSITY, value)
}

func (c *SafetyCustomizer) UpdateStreetlight(ctx context.Context, lat, lon, radiusMeters, value float64) (int, error) {
	return c.ApplyModifierUpdate(ctx, RegionTarget(lat, lon, radiusMeters), da.STREETLIGHT, value)
}

func (c *SafetyCustomizer) UpdateCrimeInArea(ctx context.Context, lat, lon, radiusMeters, value float64) (int, error) {
	return c.ApplyModifierUpdate(ctx, RegionTarget(lat, lon, radiusMeters), da.CRIME_IN_AREA, value)
}
