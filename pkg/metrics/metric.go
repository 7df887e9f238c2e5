package metrics

import (
	"math"
	"time"

	"github.com/groundtruth/saferoute/pkg/costfunction"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
)

// Metric. effective edge costs of one routing request: base cost, replaced by the precomputed
// safety/accessibility cost the route type selects (max of both when both apply), then the
// active overlays. built per request from read-only snapshots of the cost stores.
type Metric struct {
	routeType    da.RouteType
	costFunction costfunction.CostFunction

	precomputed map[da.EdgeID]float64
	overlays    map[da.EdgeID]*costfunction.OverlayAccumulator
}

func NewMetric(routeType da.RouteType, costFunction costfunction.CostFunction) *Metric {
	return &Metric{
		routeType:    routeType,
		costFunction: costFunction,
		precomputed:  make(map[da.EdgeID]float64),
		overlays:     make(map[da.EdgeID]*costfunction.OverlayAccumulator),
	}
}

func (met *Metric) mergePrecomputed(edgeID da.EdgeID, cost float64) {
	if existing, ok := met.precomputed[edgeID]; ok {
		met.precomputed[edgeID] = math.Max(existing, cost)
		return
	}
	met.precomputed[edgeID] = cost
}

// SetSafetyCosts. ignored unless the route type uses the safety table.
func (met *Metric) SetSafetyCosts(rows []da.SafetyEdgeCost) {
	if !met.routeType.UsesSafetyCosts() {
		return
	}
	for _, row := range rows {
		met.mergePrecomputed(row.EdgeID, row.CostSeconds)
	}
}

// SetAccessibilityCosts. ignored unless the route type uses the accessibility table.
func (met *Metric) SetAccessibilityCosts(rows []da.AccessibilityEdgeCost) {
	if !met.routeType.UsesAccessibilityCosts() {
		return
	}
	for _, row := range rows {
		met.mergePrecomputed(row.EdgeID, row.CostSeconds)
	}
}

// SetOverlays. overlays of another travel mode or outside their validity window at asOf are skipped.
func (met *Metric) SetOverlays(overlays []da.CostOverlay, asOf time.Time) {
	mode := met.routeType.TravelMode()
	for _, o := range overlays {
		if o.Mode != mode || !o.IsActive(asOf) {
			continue
		}
		acc, ok := met.overlays[o.EdgeID]
		if !ok {
			acc = costfunction.NewOverlayAccumulator()
			met.overlays[o.EdgeID] = acc
		}
		acc.Add(o)
	}
}

func (met *Metric) GetWeight(e costfunction.EdgeAttributes) float64 {
	cost := met.costFunction.GetWeight(e)
	if precomputed, ok := met.precomputed[e.GetID()]; ok {
		cost = precomputed
	}
	if acc, ok := met.overlays[e.GetID()]; ok {
		cost = acc.Apply(cost)
	}
	return cost
}
