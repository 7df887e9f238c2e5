package routing

import (
	da "github.com/groundtruth/saferoute/pkg/datastructure"
)

// vertexEdgePair. predecessor node and the edge used to leave it.
type vertexEdgePair struct {
	vertex da.NodeID
	edge   da.EdgeID
}

func newVertexEdgePair(vertex da.NodeID, edge da.EdgeID) vertexEdgePair {
	return vertexEdgePair{vertex: vertex, edge: edge}
}

func (ve *vertexEdgePair) getVertex() da.NodeID {
	return ve.vertex
}

func (ve *vertexEdgePair) getEdge() da.EdgeID {
	return ve.edge
}

type VertexInfo struct {
	travelTime float64
	parent     vertexEdgePair
}

func NewVertexInfo(travelTime float64, parent vertexEdgePair) VertexInfo {
	return VertexInfo{travelTime: travelTime, parent: parent}
}

func (vi *VertexInfo) GetTravelTime() float64 {
	return vi.travelTime
}

func (vi *VertexInfo) GetParent() vertexEdgePair {
	return vi.parent
}
