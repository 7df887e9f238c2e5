package spatialindex

import (
	"testing"

	"github.com/groundtruth/saferoute/pkg"
	"github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// grid of 3x3 nodes, ~100 m apart, with walk edges along rows and a drive edge on the diagonal.
func buildGrid(t *testing.T) *datastructure.Graph {
	t.Helper()
	g := datastructure.NewGraph()
	baseLat, baseLon := -7.7956, 110.3695
	id := datastructure.NodeID(1)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			lat, _ := geo.GetDestinationPoint(baseLat, baseLon, 0, float64(r)*100)
			_, lon := geo.GetDestinationPoint(baseLat, baseLon, 90, float64(c)*100)
			g.AddNode(datastructure.NewNode(id, lat, lon))
			id++
		}
	}
	eid := datastructure.EdgeID(100)
	for r := 0; r < 3; r++ {
		for c := 0; c < 2; c++ {
			u := datastructure.NodeID(r*3 + c + 1)
			require.NoError(t, g.AddEdge(datastructure.NewEdge(eid, u, u+1, 100, 70, pkg.WALK)))
			eid++
		}
	}
	require.NoError(t, g.AddEdge(datastructure.NewEdge(200, 1, 9, 283, 20, pkg.DRIVE)))
	return g
}

func TestNearestNode(t *testing.T) {
	g := buildGrid(t)
	rt := NewRtree()
	rt.Build(g, zap.NewNop())

	n5, _ := g.GetNode(5)
	testCases := []struct {
		name string
		lat  float64
		lon  float64
		want datastructure.NodeID
	}{
		{name: "exactly on node", lat: n5.GetLat(), lon: n5.GetLon(), want: 5},
		{name: "slightly off node", lat: n5.GetLat() + 0.0001, lon: n5.GetLon() - 0.0001, want: 5},
		{name: "far away falls back to full scan", lat: -6.2, lon: 106.8, want: 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, _, ok := rt.NearestNode(tc.lat, tc.lon)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNearestNodeEmpty(t *testing.T) {
	rt := NewRtree()
	_, _, ok := rt.NearestNode(0, 0)
	assert.False(t, ok)
}

func TestSearchNodesWithinRadius(t *testing.T) {
	g := buildGrid(t)
	rt := NewRtree()
	rt.Build(g, zap.NewNop())

	n1, _ := g.GetNode(1)
	got := rt.SearchNodesWithinRadius(n1.GetLat(), n1.GetLon(), 110)
	assert.Equal(t, []datastructure.NodeID{1, 2, 4}, got)

	got = rt.SearchNodesWithinRadius(n1.GetLat(), n1.GetLon(), 150)
	assert.Equal(t, []datastructure.NodeID{1, 2, 4, 5}, got)
}

func TestSearchEdgesWithinRadius(t *testing.T) {
	g := buildGrid(t)
	rt := NewRtree()
	rt.Build(g, zap.NewNop())

	n1, _ := g.GetNode(1)
	n2, _ := g.GetNode(2)
	// midpoint of edge 100 (1 -> 2), shifted 20 m north
	midLat := (n1.GetLat() + n2.GetLat()) / 2
	midLon := (n1.GetLon() + n2.GetLon()) / 2
	qLat, qLon := geo.GetDestinationPoint(midLat, midLon, 0, 20)

	hits := rt.SearchEdgesWithinRadius(qLat, qLon, 50, pkg.WALK)
	require.Len(t, hits, 1)
	assert.Equal(t, datastructure.EdgeID(100), hits[0].EdgeID)
	assert.InDelta(t, 20, hits[0].Distance, 0.5)

	driveHits := rt.SearchEdgesWithinRadius(qLat, qLon, 50, pkg.DRIVE)
	assert.Empty(t, driveHits)
}
