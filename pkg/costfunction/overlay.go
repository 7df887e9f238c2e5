package costfunction

import (
	"math"

	"github.com/groundtruth/saferoute/pkg/datastructure"
)

// OverlayAccumulator. composes the active overlays of one edge: multiplier = product of factors,
// delta = sum of deltas. Apply multiplies first, then adds, then clamps to >= 0.
type OverlayAccumulator struct {
	multiplier float64
	delta      float64
	count      int
}

func NewOverlayAccumulator() *OverlayAccumulator {
	return &OverlayAccumulator{multiplier: 1.0}
}

func (a *OverlayAccumulator) Add(o datastructure.CostOverlay) {
	a.multiplier *= o.Multiplier
	a.delta += o.DeltaSeconds
	a.count++
}

func (a *OverlayAccumulator) Len() int {
	return a.count
}

func (a *OverlayAccumulator) Apply(cost float64) float64 {
	if a.count == 0 {
		return cost
	}
	return math.Max(0, cost*a.multiplier+a.delta)
}
