package datastructure

import "github.com/groundtruth/saferoute/pkg/geo"

// OutEdge. directed edge as seen by the search: target, physical length and effective cost.
type OutEdge struct {
	edgeID      EdgeID
	head        NodeID
	length      float64
	costSeconds float64
}

func NewOutEdge(edgeID EdgeID, head NodeID, length, costSeconds float64) OutEdge {
	return OutEdge{edgeID: edgeID, head: head, length: length, costSeconds: costSeconds}
}

func (e *OutEdge) GetEdgeID() EdgeID {
	return e.edgeID
}

func (e *OutEdge) GetHead() NodeID {
	return e.head
}

func (e *OutEdge) GetLength() float64 {
	return e.length
}

func (e *OutEdge) GetCostSeconds() float64 {
	return e.costSeconds
}

// SubGraph. materialized adjacency view over an extracted slice of the graph, built per request.
type SubGraph struct {
	coords   map[NodeID]geo.Coordinate
	outgoing map[NodeID][]OutEdge
	edgeByID map[EdgeID]OutEdge
}

func NewSubGraph(numNodes, numEdges int) *SubGraph {
	return &SubGraph{
		coords:   make(map[NodeID]geo.Coordinate, numNodes),
		outgoing: make(map[NodeID][]OutEdge, numNodes),
		edgeByID: make(map[EdgeID]OutEdge, numEdges),
	}
}

func (sg *SubGraph) SetCoordinate(id NodeID, lat, lon float64) {
	sg.coords[id] = geo.NewCoordinate(lat, lon)
}

func (sg *SubGraph) AddOutEdge(source NodeID, e OutEdge) {
	sg.outgoing[source] = append(sg.outgoing[source], e)
	sg.edgeByID[e.edgeID] = e
}

func (sg *SubGraph) GetCoordinate(id NodeID) (geo.Coordinate, bool) {
	c, ok := sg.coords[id]
	return c, ok
}

func (sg *SubGraph) ForOutEdgesOf(u NodeID, handle func(e *OutEdge)) {
	outs := sg.outgoing[u]
	for i := range outs {
		handle(&outs[i])
	}
}

func (sg *SubGraph) GetOutEdge(id EdgeID) (OutEdge, bool) {
	e, ok := sg.edgeByID[id]
	return e, ok
}

func (sg *SubGraph) NumberOfEdges() int {
	return len(sg.edgeByID)
}

func (sg *SubGraph) NumberOfNodes() int {
	return len(sg.coords)
}
