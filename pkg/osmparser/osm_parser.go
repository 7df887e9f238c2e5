package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

type nodeCoord struct {
	lat float64
	lon float64
}

type osmWay struct {
	id    int64
	nodes []int64
	class wayClass
}

type OsmParser struct {
	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]nodeCoord
	barrierNodes    map[int64]bool
	ways            []osmWay
	logger          *zap.Logger
}

func NewOSMParser(logger *zap.Logger) *OsmParser {
	return &OsmParser{
		wayNodeMap:      make(map[int64]NodeType),
		acceptedNodeMap: make(map[int64]nodeCoord),
		barrierNodes:    make(map[int64]bool),
		ways:            make([]osmWay, 0),
		logger:          logger,
	}
}

// Parse. reads an .osm.pbf extract and builds the walk and drive street graph.
func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*datastructure.Graph, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return p.ParseReader(ctx, f)
}

// ParseReader. two passes over the pbf: ways first to find junctions, then node coordinates.
func (p *OsmParser) ParseReader(ctx context.Context, r io.ReadSeeker) (*datastructure.Graph, error) {
	scanner := osmpbf.New(ctx, r, 0)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if p.addWay(way) {
			if (countWays+1)%50000 == 0 {
				p.logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
			}
			countWays++
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("scan ways: %w", err)
	}
	scanner.Close()

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	scanner = osmpbf.New(ctx, r, 0)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	defer scanner.Close()

	countNodes := 0
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if (countNodes+1)%500000 == 0 {
			p.logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
		}
		countNodes++
		p.addNode(node)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan nodes: %w", err)
	}

	graph, err := p.BuildGraph()
	if err != nil {
		return nil, err
	}

	p.logger.Sugar().Infof("number of vertices: %v", graph.NumberOfNodes())
	p.logger.Sugar().Infof("number of edges: %v", graph.NumberOfEdges())
	return graph, nil
}

// addWay. records an accepted way and marks its end and junction nodes.
func (p *OsmParser) addWay(way *osm.Way) bool {
	if len(way.Nodes) < 2 {
		return false
	}
	class := classifyWay(way.Tags)
	if !class.accepted() {
		return false
	}

	nodes := make([]int64, 0, len(way.Nodes))
	for i, node := range way.Nodes {
		id := int64(node.ID)
		nodes = append(nodes, id)
		if _, ok := p.wayNodeMap[id]; !ok {
			if i == 0 || i == len(way.Nodes)-1 {
				p.wayNodeMap[id] = END_NODE
			} else {
				p.wayNodeMap[id] = BETWEEN_NODE
			}
		} else {
			p.wayNodeMap[id] = JUNCTION_NODE
		}
	}
	p.ways = append(p.ways, osmWay{id: int64(way.ID), nodes: nodes, class: class})
	return true
}

func (p *OsmParser) addNode(node *osm.Node) {
	id := int64(node.ID)
	if _, ok := p.wayNodeMap[id]; !ok {
		return
	}
	p.acceptedNodeMap[id] = nodeCoord{lat: node.Lat, lon: node.Lon}

	if _, ok := acceptedBarrierType[node.Tags.Find("barrier")]; ok && isRestricted(node.Tags.Find("access")) {
		p.barrierNodes[id] = true
	}
}

func (p *OsmParser) isJunctionNode(nodeID int64) bool {
	return p.wayNodeMap[nodeID] == JUNCTION_NODE
}
