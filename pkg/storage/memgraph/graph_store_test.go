package memgraph

import (
	"context"
	"testing"

	"github.com/groundtruth/saferoute/pkg"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 1 -- 2 -- 3 along a parallel, ~110m apart, walk both ways plus one drive edge 1 -> 3.
func newTestStore(t *testing.T) *GraphStore {
	t.Helper()
	g := da.NewGraph()
	g.AddNode(da.NewNode(1, -7.000, 110.000))
	g.AddNode(da.NewNode(2, -7.000, 110.001))
	g.AddNode(da.NewNode(3, -7.000, 110.002))
	for _, e := range []da.Edge{
		da.NewEdge(1, 1, 2, 110, 79, pkg.WALK),
		da.NewEdge(2, 2, 1, 110, 79, pkg.WALK),
		da.NewEdge(3, 2, 3, 110, 79, pkg.WALK),
		da.NewEdge(4, 3, 2, 110, 79, pkg.WALK),
		da.NewEdge(5, 1, 3, 220, 20, pkg.DRIVE),
	} {
		require.NoError(t, g.AddEdge(e))
	}
	return NewGraphStore(g, zap.NewNop())
}

func edgeIDs(edges []da.Edge) []da.EdgeID {
	ids := make([]da.EdgeID, len(edges))
	for i, e := range edges {
		ids[i] = e.GetID()
	}
	return ids
}

func TestLoadEdgesAmong(t *testing.T) {
	gs := newTestStore(t)

	testCases := []struct {
		name  string
		nodes []da.NodeID
		mode  pkg.TravelMode
		want  []da.EdgeID
	}{
		{name: "both endpoints required", nodes: []da.NodeID{1, 2}, mode: pkg.WALK, want: []da.EdgeID{1, 2}},
		{name: "all walk edges", nodes: []da.NodeID{1, 2, 3}, mode: pkg.WALK, want: []da.EdgeID{1, 2, 3, 4}},
		{name: "drive mode", nodes: []da.NodeID{1, 2, 3}, mode: pkg.DRIVE, want: []da.EdgeID{5}},
		{name: "disconnected pair", nodes: []da.NodeID{1, 3}, mode: pkg.WALK, want: []da.EdgeID{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			edges, err := gs.LoadEdgesAmong(context.Background(), tc.nodes, tc.mode)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.want, edgeIDs(edges))
		})
	}
}

func TestSnapAndRadius(t *testing.T) {
	gs := newTestStore(t)
	ctx := context.Background()

	id, ok, err := gs.SnapNearestNode(ctx, -7.0001, 110.0011)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, da.NodeID(2), id)

	nodes, err := gs.LoadNodesWithinRadius(ctx, -7.000, 110.000, 150)
	require.NoError(t, err)
	ids := make([]da.NodeID, 0)
	for _, n := range nodes {
		ids = append(ids, n.GetID())
	}
	assert.ElementsMatch(t, []da.NodeID{1, 2}, ids)

	_, ok, err = NewGraphStore(da.NewGraph(), zap.NewNop()).SnapNearestNode(ctx, 0, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = gs.LoadNodesWithinRadius(cancelled, -7.000, 110.000, 150)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEdgeQueries(t *testing.T) {
	gs := newTestStore(t)
	ctx := context.Background()

	walk, err := gs.ListEdgesByMode(ctx, pkg.WALK)
	require.NoError(t, err)
	assert.ElementsMatch(t, []da.EdgeID{1, 2, 3, 4}, edgeIDs(walk))

	got, err := gs.GetEdges(ctx, []da.EdgeID{5, 99, 1})
	require.NoError(t, err)
	assert.Equal(t, []da.EdgeID{5, 1}, edgeIDs(got))

	near, err := gs.FindEdgesNear(ctx, -7.000, 110.0025, 30, pkg.WALK)
	require.NoError(t, err)
	assert.Empty(t, near)

	near, err = gs.FindEdgesNear(ctx, -7.0001, 110.0015, 30, pkg.WALK)
	require.NoError(t, err)
	assert.ElementsMatch(t, []da.EdgeID{3, 4}, near)

	lat, lon, ok := gs.EdgeMidpoint(walk[0])
	require.True(t, ok)
	assert.InDelta(t, -7.0, lat, 1e-9)
	assert.Greater(t, lon, 110.0)
}
