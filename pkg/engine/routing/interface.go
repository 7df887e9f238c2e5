package routing

import (
	"github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/geo"
)

// SearchGraph. adjacency view consumed by the path search. costs are effective costs in seconds.
type SearchGraph interface {
	GetCoordinate(id datastructure.NodeID) (geo.Coordinate, bool)
	ForOutEdgesOf(u datastructure.NodeID, handle func(e *datastructure.OutEdge))
	GetOutEdge(id datastructure.EdgeID) (datastructure.OutEdge, bool)
}

type Router interface {
	ShortestPathSearch(graph SearchGraph, s, t datastructure.NodeID) (datastructure.RouteResult, error)
}
