package routing

import (
	"math"

	"github.com/groundtruth/saferoute/pkg"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/geo"
	"github.com/groundtruth/saferoute/pkg/util"
)

// AStar. unidirectional A* with g = accumulated effective cost (seconds) and
// h = great-circle distance to goal / maxSpeed. stale queue entries are skipped on pop
// instead of decrease-key. stateless between calls, safe for concurrent use.
type AStar struct {
	maxSpeed float64 // m/s, <= 0 or +Inf disables the heuristic
}

func NewAStar(maxSpeed float64) *AStar {
	return &AStar{maxSpeed: maxSpeed}
}

func NewDefaultAStar() *AStar {
	return NewAStar(pkg.DEFAULT_MAX_SPEED_MPS)
}

func (as *AStar) heuristicEnabled() bool {
	return as.maxSpeed > 0 && !math.IsInf(as.maxSpeed, 1)
}

type astarQuery struct {
	graph    SearchGraph
	maxSpeed float64
	useH     bool
	goal     geo.Coordinate

	info map[da.NodeID]VertexInfo
	pq   *da.MinHeap[searchKey]
}

// searchKey. queue entry ranked by f, carrying the g it was pushed with.
type searchKey struct {
	node da.NodeID
	g    float64
}

// ShortestPathSearch. returns ErrNoRouteFound when the goal is unreachable and ErrDataIntegrity
// when a node reached by the search has no coordinate.
func (as *AStar) ShortestPathSearch(graph SearchGraph, s, t da.NodeID) (da.RouteResult, error) {
	if s == t {
		return da.NewTrivialRouteResult(s), nil
	}

	q := &astarQuery{
		graph:    graph,
		maxSpeed: as.maxSpeed,
		useH:     as.heuristicEnabled(),
		info:     make(map[da.NodeID]VertexInfo),
		pq:       da.NewFourAryHeap[searchKey](),
	}

	if q.useH {
		goal, ok := graph.GetCoordinate(t)
		if !ok {
			return da.RouteResult{}, util.WrapErrorf(ErrDataIntegrity, util.ErrInternalServerError,
				"missing coordinate for goal node %d", t)
		}
		q.goal = goal
	}

	hs, err := q.heuristic(s)
	if err != nil {
		return da.RouteResult{}, err
	}

	q.info[s] = NewVertexInfo(0, newVertexEdgePair(INVALID_NODE_ID, INVALID_EDGE_ID))
	q.pq.Insert(da.NewPriorityQueueNode(hs, searchKey{node: s, g: 0}))

	found, err := q.search(t)
	if err != nil {
		return da.RouteResult{}, err
	}
	if !found {
		return da.RouteResult{}, util.WrapErrorf(ErrNoRouteFound, util.ErrNotFound,
			"no route from node %d to node %d", s, t)
	}

	return q.reconstruct(s, t)
}

func (q *astarQuery) heuristic(u da.NodeID) (float64, error) {
	if !q.useH {
		return 0, nil
	}
	c, ok := q.graph.GetCoordinate(u)
	if !ok {
		return 0, util.WrapErrorf(ErrDataIntegrity, util.ErrInternalServerError,
			"missing coordinate for node %d", u)
	}
	return geo.HaversineBetween(c, q.goal) / q.maxSpeed, nil
}

func (q *astarQuery) search(t da.NodeID) (bool, error) {
	for !q.pq.IsEmpty() {
		item, _ := q.pq.ExtractMin()
		key := item.GetItem()
		u := key.node
		uInfo := q.info[u]
		gU := uInfo.GetTravelTime()

		if key.g > gU+pkg.STALE_EPSILON {
			// stale, a cheaper entry for u was pushed later
			continue
		}

		if u == t {
			return true, nil
		}

		var relaxErr error
		q.graph.ForOutEdgesOf(u, func(e *da.OutEdge) {
			if relaxErr != nil {
				return
			}
			v := e.GetHead()
			newTravelTime := gU + e.GetCostSeconds()
			if newTravelTime >= pkg.INF_WEIGHT {
				return
			}

			vInfo, visited := q.info[v]
			if visited && newTravelTime >= vInfo.GetTravelTime() {
				return
			}

			hV, err := q.heuristic(v)
			if err != nil {
				relaxErr = err
				return
			}

			q.info[v] = NewVertexInfo(newTravelTime, newVertexEdgePair(u, e.GetEdgeID()))
			q.pq.Insert(da.NewPriorityQueueNode(newTravelTime+hV, searchKey{node: v, g: newTravelTime}))
		})
		if relaxErr != nil {
			return false, relaxErr
		}
	}
	return false, nil
}

func (q *astarQuery) reconstruct(s, t da.NodeID) (da.RouteResult, error) {
	nodePath := []da.NodeID{t}
	edgePath := []da.EdgeID{}
	distance := 0.0

	cur := t
	for cur != s {
		info, ok := q.info[cur]
		if !ok {
			return da.RouteResult{}, util.WrapErrorf(ErrNoRouteFound, util.ErrNotFound,
				"broken predecessor chain at node %d", cur)
		}
		parent := info.GetParent()
		if parent.getVertex() == INVALID_NODE_ID || len(nodePath) > len(q.info) {
			return da.RouteResult{}, util.WrapErrorf(ErrNoRouteFound, util.ErrNotFound,
				"predecessor chain from node %d does not reach node %d", t, s)
		}

		e, ok := q.graph.GetOutEdge(parent.getEdge())
		if !ok {
			return da.RouteResult{}, util.WrapErrorf(ErrDataIntegrity, util.ErrInternalServerError,
				"missing edge %d on reconstructed path", parent.getEdge())
		}
		distance += e.GetLength()

		edgePath = append(edgePath, parent.getEdge())
		nodePath = append(nodePath, parent.getVertex())
		cur = parent.getVertex()
	}

	tInfo := q.info[t]
	return da.RouteResult{
		NodePath:        util.ReverseG(nodePath),
		EdgePath:        util.ReverseG(edgePath),
		DistanceMeters:  distance,
		DurationSeconds: tInfo.GetTravelTime(),
	}, nil
}
