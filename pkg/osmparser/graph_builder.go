package osmparser

import (
	"github.com/groundtruth/saferoute/pkg"
	"github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/geo"
)

type segment struct {
	nodes   []int64
	length  float64
	barrier bool
}

// BuildGraph. splits every scanned way at junction nodes; each segment becomes a pair of walk
// edges and up to two drive edges. segments touching nodes outside the extract are dropped.
func (p *OsmParser) BuildGraph() (*datastructure.Graph, error) {
	graph := datastructure.NewGraphWithSize(len(p.acceptedNodeMap)/4, len(p.ways)*4)
	nextEdgeID := datastructure.EdgeID(0)

	addEdge := func(from, to int64, length, cost float64, mode pkg.TravelMode) error {
		err := graph.AddEdge(datastructure.NewEdge(nextEdgeID, datastructure.NodeID(from), datastructure.NodeID(to),
			length, cost, mode))
		if err != nil {
			return err
		}
		nextEdgeID++
		return nil
	}

	for _, way := range p.ways {
		for _, seg := range p.splitWay(way) {
			from, to := seg.nodes[0], seg.nodes[len(seg.nodes)-1]
			for _, id := range []int64{from, to} {
				c := p.acceptedNodeMap[id]
				graph.AddNode(datastructure.NewNode(datastructure.NodeID(id), c.lat, c.lon))
			}

			if way.class.walk {
				cost := seg.length / pkg.WALK_SPEED_MPS
				if err := addEdge(from, to, seg.length, cost, pkg.WALK); err != nil {
					return nil, err
				}
				if err := addEdge(to, from, seg.length, cost, pkg.WALK); err != nil {
					return nil, err
				}
			}

			if way.class.drive && !seg.barrier {
				cost := seg.length / (way.class.speedKmh / 3.6)
				if way.class.forward {
					if err := addEdge(from, to, seg.length, cost, pkg.DRIVE); err != nil {
						return nil, err
					}
				}
				if way.class.backward {
					if err := addEdge(to, from, seg.length, cost, pkg.DRIVE); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return graph, nil
}

func (p *OsmParser) splitWay(way osmWay) []segment {
	segments := make([]segment, 0, 1)
	current := make([]int64, 0, len(way.nodes))

	flush := func() {
		if len(current) < 2 {
			return
		}
		if current[0] == current[len(current)-1] {
			if len(current) < 3 {
				return
			}
			// closed loop, split at the middle so both halves have distinct endpoints
			mid := len(current) / 2
			segments = p.appendSegment(segments, current[:mid+1])
			segments = p.appendSegment(segments, current[mid:])
			return
		}
		segments = p.appendSegment(segments, current)
	}

	for i, id := range way.nodes {
		if _, ok := p.acceptedNodeMap[id]; !ok {
			flush()
			current = current[:0]
			continue
		}
		current = append(current, id)
		if i > 0 && i < len(way.nodes)-1 && p.isJunctionNode(id) {
			flush()
			current = append(current[:0], id)
		}
	}
	flush()
	return segments
}

func (p *OsmParser) appendSegment(segments []segment, nodes []int64) []segment {
	seg := segment{nodes: append([]int64(nil), nodes...)}
	for i, id := range nodes {
		if p.barrierNodes[id] {
			seg.barrier = true
		}
		if i == 0 {
			continue
		}
		a, b := p.acceptedNodeMap[nodes[i-1]], p.acceptedNodeMap[id]
		seg.length += geo.CalculateHaversineDistance(a.lat, a.lon, b.lat, b.lon)
	}
	return append(segments, seg)
}
