package spatialindex

import (
	"math"
	"sort"

	"github.com/groundtruth/saferoute/pkg"
	"github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

const (
	initialSnapRadiusMeters = 100.0
	maxSnapRadiusMeters     = 50_000.0
	snapRadiusGrowth        = 4.0
)

// Rtree. spatial index over graph nodes (points) and edges (segment bounding boxes).
// rectangles are stored as [lon, lat].
type Rtree struct {
	nodeTree *rtree.RTreeG[datastructure.NodeID]
	edgeTree *rtree.RTreeG[datastructure.EdgeID]

	coords   map[datastructure.NodeID]geo.Coordinate
	segments map[datastructure.EdgeID]segment
}

type segment struct {
	from geo.Coordinate
	to   geo.Coordinate
	mode pkg.TravelMode
}

// EdgeHit. edge near a query point with its distance in meters.
type EdgeHit struct {
	EdgeID   datastructure.EdgeID
	Distance float64
}

func NewRtree() *Rtree {
	var nodeTree rtree.RTreeG[datastructure.NodeID]
	var edgeTree rtree.RTreeG[datastructure.EdgeID]
	return &Rtree{
		nodeTree: &nodeTree,
		edgeTree: &edgeTree,
		coords:   make(map[datastructure.NodeID]geo.Coordinate),
		segments: make(map[datastructure.EdgeID]segment),
	}
}

// Build. index every node and edge of the graph.
func (rt *Rtree) Build(graph *datastructure.Graph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...", zap.Int("nodes", graph.NumberOfNodes()),
		zap.Int("edges", graph.NumberOfEdges()))

	graph.ForNodes(func(n datastructure.Node) {
		rt.InsertNode(n)
	})

	graph.ForEdges(func(e datastructure.Edge) {
		from, okFrom := graph.GetNode(e.GetSource())
		to, okTo := graph.GetNode(e.GetTarget())
		if !okFrom || !okTo {
			log.Warn("edge references unknown node, skipped", zap.Int64("edgeId", int64(e.GetID())))
			return
		}
		rt.InsertEdge(e, from, to)
	})

	log.Info("R-tree spatial index built.")
}

func (rt *Rtree) InsertNode(n datastructure.Node) {
	p := [2]float64{n.GetLon(), n.GetLat()}
	rt.nodeTree.Insert(p, p, n.GetID())
	rt.coords[n.GetID()] = geo.NewCoordinate(n.GetLat(), n.GetLon())
}

func (rt *Rtree) InsertEdge(e datastructure.Edge, from, to datastructure.Node) {
	min := [2]float64{math.Min(from.GetLon(), to.GetLon()), math.Min(from.GetLat(), to.GetLat())}
	max := [2]float64{math.Max(from.GetLon(), to.GetLon()), math.Max(from.GetLat(), to.GetLat())}
	rt.edgeTree.Insert(min, max, e.GetID())
	rt.segments[e.GetID()] = segment{
		from: geo.NewCoordinate(from.GetLat(), from.GetLon()),
		to:   geo.NewCoordinate(to.GetLat(), to.GetLon()),
		mode: e.GetMode(),
	}
}

func (rt *Rtree) NumberOfNodes() int {
	return len(rt.coords)
}

func searchBox(qLat, qLon, radius float64) ([2]float64, [2]float64) {
	bb := geo.BoundingBoxAround(qLat, qLon, radius)
	return [2]float64{bb.GetMinLon(), bb.GetMinLat()}, [2]float64{bb.GetMaxLon(), bb.GetMaxLat()}
}

// SearchNodesWithinRadius. all nodes within radius (meters) of (qLat, qLon), sorted by id.
func (rt *Rtree) SearchNodesWithinRadius(qLat, qLon, radius float64) []datastructure.NodeID {
	lower, upper := searchBox(qLat, qLon, radius)

	results := make([]datastructure.NodeID, 0, 16)
	rt.nodeTree.Search(lower, upper,
		func(min, max [2]float64, id datastructure.NodeID) bool {
			if geo.CalculateHaversineDistance(qLat, qLon, min[1], min[0]) <= radius {
				results = append(results, id)
			}
			return true
		})
	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	return results
}

// NearestNode. the node closest to (qLat, qLon). the search window grows until a node is found,
// then falls back to a full scan so that any non-empty index always snaps.
func (rt *Rtree) NearestNode(qLat, qLon float64) (datastructure.NodeID, float64, bool) {
	if len(rt.coords) == 0 {
		return 0, 0, false
	}

	for radius := initialSnapRadiusMeters; radius <= maxSnapRadiusMeters; radius *= snapRadiusGrowth {
		lower, upper := searchBox(qLat, qLon, radius)

		var (
			best     datastructure.NodeID
			bestDist = math.Inf(1)
		)
		rt.nodeTree.Search(lower, upper,
			func(min, max [2]float64, id datastructure.NodeID) bool {
				d := geo.CalculateHaversineDistance(qLat, qLon, min[1], min[0])
				if d < bestDist || (d == bestDist && id < best) {
					best, bestDist = id, d
				}
				return true
			})

		// a node inside the circle is the global nearest, every closer node lies in the same window.
		if bestDist <= radius {
			return best, bestDist, true
		}
	}

	var (
		best     datastructure.NodeID
		bestDist = math.Inf(1)
	)
	for id, c := range rt.coords {
		d := geo.CalculateHaversineDistance(qLat, qLon, c.Lat, c.Lon)
		if d < bestDist || (d == bestDist && id < best) {
			best, bestDist = id, d
		}
	}
	return best, bestDist, true
}

// SearchEdgesWithinRadius. edges of the given mode whose segment passes within radius (meters) of (qLat, qLon).
func (rt *Rtree) SearchEdgesWithinRadius(qLat, qLon, radius float64, mode pkg.TravelMode) []EdgeHit {
	lower, upper := searchBox(qLat, qLon, radius)
	q := geo.NewCoordinate(qLat, qLon)

	results := make([]EdgeHit, 0, 8)
	rt.edgeTree.Search(lower, upper,
		func(min, max [2]float64, id datastructure.EdgeID) bool {
			seg, ok := rt.segments[id]
			if !ok || seg.mode != mode {
				return true
			}
			d := geo.PointLinePerpendicularDistance(seg.from, seg.to, q)
			if d <= radius {
				results = append(results, EdgeHit{EdgeID: id, Distance: d})
			}
			return true
		})
	sort.Slice(results, func(i, j int) bool { return results[i].EdgeID < results[j].EdgeID })
	return results
}
