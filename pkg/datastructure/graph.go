package datastructure

import (
	"errors"
	"fmt"
	"sort"

	"github.com/groundtruth/saferoute/pkg"
)

type NodeID int64

type EdgeID int64

var (
	ErrNegativeLength = errors.New("edge length must be >= 0")
	ErrNegativeCost   = errors.New("edge base cost must be >= 0")
	ErrDuplicateEdge  = errors.New("edge already exists")
	ErrUnknownNode    = errors.New("edge references unknown node")
)

// Node. graph vertex, immutable once created.
type Node struct {
	id  NodeID
	lat float64
	lon float64
}

func NewNode(id NodeID, lat, lon float64) Node {
	return Node{id: id, lat: lat, lon: lon}
}

func (n Node) GetID() NodeID {
	return n.id
}

func (n Node) GetLat() float64 {
	return n.lat
}

func (n Node) GetLon() float64 {
	return n.lon
}

// Edge. directed street/sidewalk segment from source to target for one travel mode.
type Edge struct {
	id          EdgeID
	source      NodeID
	target      NodeID
	length      float64 // meters
	costSeconds float64 // base traversal cost
	mode        pkg.TravelMode
}

func NewEdge(id EdgeID, source, target NodeID, length, costSeconds float64, mode pkg.TravelMode) Edge {
	return Edge{
		id:          id,
		source:      source,
		target:      target,
		length:      length,
		costSeconds: costSeconds,
		mode:        mode,
	}
}

func (e Edge) Validate() error {
	if e.length < 0 {
		return fmt.Errorf("edge %d: %w", e.id, ErrNegativeLength)
	}
	if e.costSeconds < 0 {
		return fmt.Errorf("edge %d: %w", e.id, ErrNegativeCost)
	}
	return nil
}

func (e Edge) GetID() EdgeID {
	return e.id
}

func (e Edge) GetSource() NodeID {
	return e.source
}

func (e Edge) GetTarget() NodeID {
	return e.target
}

func (e Edge) GetLength() float64 {
	return e.length
}

func (e Edge) GetCostSeconds() float64 {
	return e.costSeconds
}

func (e Edge) GetMode() pkg.TravelMode {
	return e.mode
}

// Graph. in-memory node/edge container. not safe for concurrent mutation, read-only use after loading is fine.
type Graph struct {
	nodes     []Node
	edges     []Edge
	nodeIndex map[NodeID]int
	edgeIndex map[EdgeID]int
	outEdges  map[NodeID][]int // node id -> positions in edges
}

func NewGraph() *Graph {
	return NewGraphWithSize(0, 0)
}

func NewGraphWithSize(numNodes, numEdges int) *Graph {
	return &Graph{
		nodes:     make([]Node, 0, numNodes),
		edges:     make([]Edge, 0, numEdges),
		nodeIndex: make(map[NodeID]int, numNodes),
		edgeIndex: make(map[EdgeID]int, numEdges),
		outEdges:  make(map[NodeID][]int, numNodes),
	}
}

// AddNode. re-adding an existing id is a no-op, nodes are immutable.
func (g *Graph) AddNode(n Node) {
	if _, ok := g.nodeIndex[n.id]; ok {
		return
	}
	g.nodeIndex[n.id] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

func (g *Graph) AddEdge(e Edge) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, ok := g.edgeIndex[e.id]; ok {
		return fmt.Errorf("edge %d: %w", e.id, ErrDuplicateEdge)
	}
	if _, ok := g.nodeIndex[e.source]; !ok {
		return fmt.Errorf("edge %d source %d: %w", e.id, e.source, ErrUnknownNode)
	}
	if _, ok := g.nodeIndex[e.target]; !ok {
		return fmt.Errorf("edge %d target %d: %w", e.id, e.target, ErrUnknownNode)
	}
	g.edgeIndex[e.id] = len(g.edges)
	g.outEdges[e.source] = append(g.outEdges[e.source], len(g.edges))
	g.edges = append(g.edges, e)
	return nil
}

func (g *Graph) GetNode(id NodeID) (Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

func (g *Graph) GetEdge(id EdgeID) (Edge, bool) {
	i, ok := g.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

func (g *Graph) NumberOfNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

func (g *Graph) ForNodes(handle func(n Node)) {
	for _, n := range g.nodes {
		handle(n)
	}
}

func (g *Graph) ForEdges(handle func(e Edge)) {
	for _, e := range g.edges {
		handle(e)
	}
}

func (g *Graph) ForOutEdgesOf(u NodeID, handle func(e Edge)) {
	for _, i := range g.outEdges[u] {
		handle(g.edges[i])
	}
}

// SortedNodeIDs. deterministic iteration order, used by graph serialization.
func (g *Graph) SortedNodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for _, n := range g.nodes {
		ids = append(ids, n.id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
