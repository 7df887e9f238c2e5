package costfunction

import (
	"github.com/groundtruth/saferoute/pkg/datastructure"
)

type EdgeAttributes interface {
	GetID() datastructure.EdgeID
	GetCostSeconds() float64
}

// CostFunction. effective traversal cost in seconds of an edge.
type CostFunction interface {
	GetWeight(e EdgeAttributes) float64
}

// BaseCostFunction. stored base cost, no adjustment.
type BaseCostFunction struct{}

func NewBaseCostFunction() BaseCostFunction {
	return BaseCostFunction{}
}

func (BaseCostFunction) GetWeight(e EdgeAttributes) float64 {
	return e.GetCostSeconds()
}
