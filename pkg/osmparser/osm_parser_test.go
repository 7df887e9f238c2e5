package osmparser

import (
	"testing"

	"github.com/groundtruth/saferoute/pkg"
	"github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tags(kv ...string) osm.Tags {
	t := make(osm.Tags, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		t = append(t, osm.Tag{Key: kv[i], Value: kv[i+1]})
	}
	return t
}

func TestClassifyWay(t *testing.T) {
	testCases := []struct {
		name string
		tags osm.Tags
		want wayClass
	}{
		{
			name: "residential street is walkable and two-way drivable",
			tags: tags("highway", "residential"),
			want: wayClass{walk: true, drive: true, forward: true, backward: true, speedKmh: 30},
		},
		{
			name: "footway is walk only",
			tags: tags("highway", "footway"),
			want: wayClass{walk: true},
		},
		{
			name: "motorway is drive only and implicitly oneway",
			tags: tags("highway", "motorway"),
			want: wayClass{drive: true, forward: true, speedKmh: 100},
		},
		{
			name: "reverse oneway with maxspeed in mph",
			tags: tags("highway", "primary", "oneway", "-1", "maxspeed", "20 mph"),
			want: wayClass{walk: true, drive: true, backward: true, speedKmh: 20 * MPH_TO_KMH},
		},
		{
			name: "roundabout is oneway",
			tags: tags("highway", "tertiary", "junction", "roundabout"),
			want: wayClass{walk: true, drive: true, forward: true, speedKmh: 50},
		},
		{
			name: "foot=no removes the sidewalk",
			tags: tags("highway", "secondary", "foot", "no", "maxspeed", "45"),
			want: wayClass{drive: true, forward: true, backward: true, speedKmh: 45},
		},
		{
			name: "private service road is walk and drive restricted",
			tags: tags("highway", "service", "access", "private"),
			want: wayClass{},
		},
		{
			name: "non routable way",
			tags: tags("building", "yes"),
			want: wayClass{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyWay(tc.tags)
			assert.Equal(t, tc.want.walk, got.walk)
			assert.Equal(t, tc.want.drive, got.drive)
			assert.Equal(t, tc.want.forward, got.forward)
			assert.Equal(t, tc.want.backward, got.backward)
			assert.InDelta(t, tc.want.speedKmh, got.speedKmh, 1e-9)
		})
	}
}

func TestParseMaxSpeed(t *testing.T) {
	testCases := []struct {
		value string
		want  float64
	}{
		{"50", 50},
		{"50 km/h", 50},
		{"30 mph", 30 * MPH_TO_KMH},
		{"10 knots", 10 * KNOTS_TO_KMH},
		{"signals", 0},
		{"", 0},
	}
	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			assert.InDelta(t, tc.want, parseMaxSpeed(tc.value), 1e-9)
		})
	}
}

func wayOf(id int64, nodeIDs []int64, t osm.Tags) *osm.Way {
	nodes := make(osm.WayNodes, 0, len(nodeIDs))
	for _, n := range nodeIDs {
		nodes = append(nodes, osm.WayNode{ID: osm.NodeID(n)})
	}
	return &osm.Way{ID: osm.WayID(id), Nodes: nodes, Tags: t}
}

func countModes(g *datastructure.Graph) (walk, drive int) {
	g.ForEdges(func(e datastructure.Edge) {
		if e.GetMode() == pkg.WALK {
			walk++
		} else {
			drive++
		}
	})
	return walk, drive
}

func TestBuildGraph(t *testing.T) {
	// street 1-2-3 crossed at 2 by footway 4-2-5, bollard at 3
	p := NewOSMParser(zap.NewNop())
	require.True(t, p.addWay(wayOf(10, []int64{1, 2, 3}, tags("highway", "residential", "oneway", "yes"))))
	require.True(t, p.addWay(wayOf(11, []int64{4, 2, 5}, tags("highway", "footway"))))
	require.False(t, p.addWay(wayOf(12, []int64{6, 7}, tags("waterway", "river"))))
	require.False(t, p.addWay(wayOf(13, []int64{8}, tags("highway", "residential"))))

	coords := map[int64][2]float64{
		1: {-7.7700, 110.3700},
		2: {-7.7700, 110.3710},
		3: {-7.7700, 110.3720},
		4: {-7.7710, 110.3710},
		5: {-7.7690, 110.3710},
		6: {0, 0},
	}
	for id, c := range coords {
		n := &osm.Node{ID: osm.NodeID(id), Lat: c[0], Lon: c[1]}
		if id == 3 {
			n.Tags = tags("barrier", "bollard", "access", "no")
		}
		p.addNode(n)
	}
	_, tracked := p.acceptedNodeMap[6]
	assert.False(t, tracked)

	g, err := p.BuildGraph()
	require.NoError(t, err)

	assert.Equal(t, 5, g.NumberOfNodes())
	walk, drive := countModes(g)
	// 4 walk segments both ways, only 1-2 drivable (2-3 touches the bollard)
	assert.Equal(t, 8, walk)
	assert.Equal(t, 1, drive)

	var driveEdge datastructure.Edge
	g.ForEdges(func(e datastructure.Edge) {
		if e.GetMode() == pkg.DRIVE {
			driveEdge = e
		}
	})
	assert.Equal(t, datastructure.NodeID(1), driveEdge.GetSource())
	assert.Equal(t, datastructure.NodeID(2), driveEdge.GetTarget())
	assert.InDelta(t, 110.3, driveEdge.GetLength(), 1.0)
	assert.InDelta(t, driveEdge.GetLength()/(30/3.6), driveEdge.GetCostSeconds(), 1e-9)
}

func TestSplitWayLoopAndClipped(t *testing.T) {
	p := NewOSMParser(zap.NewNop())
	loop := wayOf(20, []int64{1, 2, 3, 4, 1}, tags("highway", "footway"))
	require.True(t, p.addWay(loop))
	for i, id := range []int64{1, 2, 3, 4} {
		p.addNode(&osm.Node{ID: osm.NodeID(id), Lat: float64(i) * 0.001, Lon: float64(i%2) * 0.001})
	}

	segs := p.splitWay(p.ways[0])
	require.Len(t, segs, 2)
	assert.Equal(t, []int64{1, 2, 3}, segs[0].nodes)
	assert.Equal(t, []int64{3, 4, 1}, segs[1].nodes)

	// node 3 missing from the extract
	clipped := NewOSMParser(zap.NewNop())
	require.True(t, clipped.addWay(wayOf(21, []int64{1, 2, 3, 4, 5}, tags("highway", "path"))))
	for _, id := range []int64{1, 2, 4, 5} {
		clipped.addNode(&osm.Node{ID: osm.NodeID(id), Lat: float64(id) * 0.001})
	}
	segs = clipped.splitWay(clipped.ways[0])
	require.Len(t, segs, 2)
	assert.Equal(t, []int64{1, 2}, segs[0].nodes)
	assert.Equal(t, []int64{4, 5}, segs[1].nodes)
}
