package memgraph

import (
	"context"

	"github.com/groundtruth/saferoute/pkg"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/spatialindex"
	"go.uber.org/zap"
)

// GraphStore. read-only graph store over an in-memory graph and its r-tree.
// the graph must not be mutated after NewGraphStore, all methods are safe for concurrent use.
type GraphStore struct {
	graph *da.Graph
	rtree *spatialindex.Rtree
	log   *zap.Logger
}

func NewGraphStore(graph *da.Graph, log *zap.Logger) *GraphStore {
	rt := spatialindex.NewRtree()
	rt.Build(graph, log)
	return &GraphStore{graph: graph, rtree: rt, log: log}
}

func (gs *GraphStore) SnapNearestNode(ctx context.Context, lat, lon float64) (da.NodeID, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	id, _, ok := gs.rtree.NearestNode(lat, lon)
	return id, ok, nil
}

func (gs *GraphStore) GetNode(ctx context.Context, id da.NodeID) (da.Node, bool, error) {
	n, ok := gs.graph.GetNode(id)
	return n, ok, nil
}

func (gs *GraphStore) LoadNodesWithinRadius(ctx context.Context, lat, lon, radiusMeters float64) ([]da.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids := gs.rtree.SearchNodesWithinRadius(lat, lon, radiusMeters)
	nodes := make([]da.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := gs.graph.GetNode(id); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// LoadEdgesAmong. edges of the mode whose source and target are both in nodeIDs.
func (gs *GraphStore) LoadEdgesAmong(ctx context.Context, nodeIDs []da.NodeID, mode pkg.TravelMode) ([]da.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inSet := make(map[da.NodeID]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		inSet[id] = struct{}{}
	}

	edges := make([]da.Edge, 0, len(nodeIDs))
	for _, u := range nodeIDs {
		gs.graph.ForOutEdgesOf(u, func(e da.Edge) {
			if e.GetMode() != mode {
				return
			}
			if _, ok := inSet[e.GetTarget()]; ok {
				edges = append(edges, e)
			}
		})
	}
	return edges, nil
}

func (gs *GraphStore) GetEdges(ctx context.Context, ids []da.EdgeID) ([]da.Edge, error) {
	edges := make([]da.Edge, 0, len(ids))
	for _, id := range ids {
		if e, ok := gs.graph.GetEdge(id); ok {
			edges = append(edges, e)
		}
	}
	return edges, nil
}

func (gs *GraphStore) ListEdgesByMode(ctx context.Context, mode pkg.TravelMode) ([]da.Edge, error) {
	edges := make([]da.Edge, 0, gs.graph.NumberOfEdges())
	gs.graph.ForEdges(func(e da.Edge) {
		if e.GetMode() == mode {
			edges = append(edges, e)
		}
	})
	return edges, nil
}

// FindEdgesNear. edges of the mode passing within radiusMeters of the point.
func (gs *GraphStore) FindEdgesNear(ctx context.Context, lat, lon, radiusMeters float64, mode pkg.TravelMode) ([]da.EdgeID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hits := gs.rtree.SearchEdgesWithinRadius(lat, lon, radiusMeters, mode)
	ids := make([]da.EdgeID, len(hits))
	for i, h := range hits {
		ids[i] = h.EdgeID
	}
	return ids, nil
}

// EdgeMidpoint. midpoint of the edge's straight segment.
func (gs *GraphStore) EdgeMidpoint(e da.Edge) (float64, float64, bool) {
	from, okFrom := gs.graph.GetNode(e.GetSource())
	to, okTo := gs.graph.GetNode(e.GetTarget())
	if !okFrom || !okTo {
		return 0, 0, false
	}
	return (from.GetLat() + to.GetLat()) / 2, (from.GetLon() + to.GetLon()) / 2, true
}
