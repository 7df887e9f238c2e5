package customizer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/groundtruth/saferoute/pkg"
	"github.com/groundtruth/saferoute/pkg/costfunction"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/geo"
	"github.com/groundtruth/saferoute/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	crackLat, crackLon     = -7.7700, 110.3700
	blockedLat, blockedLon = -7.7710, 110.3710
	farLat, farLon         = -7.8000, 110.4000
)

var (
	crackID   = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	blockedID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	potholeID = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	vagueID   = uuid.MustParse("00000000-0000-0000-0000-000000000004")
)

func accessibilityEdges() *fakeEdgeStore {
	edges := newFakeEdgeStore(
		da.NewEdge(1, 1, 2, 140, 100, pkg.WALK),
		da.NewEdge(2, 2, 3, 112, 80, pkg.WALK),
		da.NewEdge(3, 3, 4, 56, 40, pkg.WALK),
		da.NewEdge(4, 4, 5, 70, 50, pkg.WALK),
	)
	edges.setNear(crackLat, crackLon, 1)
	edges.setNear(blockedLat, blockedLon, 1, 2)
	edges.setNear(farLat, farLon, 3)
	return edges
}

func newTestAccessibilityCustomizer(edges EdgeStore, hazards *fakeHazardStore,
	costs *fakeAccessibilityStore) *AccessibilityCustomizer {
	return NewAccessibilityCustomizer(edges, hazards, costs, costfunction.NewDefaultHazardCostConfig(), zap.NewNop())
}

func TestApplyHazard(t *testing.T) {
	ctx := context.Background()
	crack := da.NewHazard(crackID, da.CRACKS, 50, crackLat, crackLon)
	blocked := da.NewHazard(blockedID, da.BLOCKED_SIDEWALK, 100, blockedLat, blockedLon)
	hazards := newFakeHazardStore(crack, blocked)
	costs := newFakeAccessibilityStore()
	c := newTestAccessibilityCustomizer(accessibilityEdges(), hazards, costs)

	n, err := c.ApplyHazard(ctx, crack)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	// 1.3 x (1 + 50/100)
	assert.InDelta(t, 195.0, costs.rows[1].CostSeconds, 1e-9)
	assert.Equal(t, []da.HazardID{crackID}, costs.rows[1].ContributingHazardIDs)

	n, err = c.ApplyHazard(ctx, blocked)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	// 1.95 x 6 is capped at 10
	assert.InDelta(t, 1000.0, costs.rows[1].CostSeconds, 1e-9)
	assert.ElementsMatch(t, []da.HazardID{crackID, blockedID}, costs.rows[1].ContributingHazardIDs)
	assert.InDelta(t, 480.0, costs.rows[2].CostSeconds, 1e-9)

	// re-applying replaces the hazard's contribution instead of stacking it
	calmer := da.NewHazard(crackID, da.CRACKS, 0, crackLat, crackLon)
	hazards.hazards[crackID] = calmer
	_, err = c.ApplyHazard(ctx, calmer)
	require.NoError(t, err)
	assert.InDelta(t, 780.0, costs.rows[1].CostSeconds, 1e-9)
	assert.Len(t, costs.rows[1].ContributingHazardIDs, 2)
}

func TestApplyHazardIgnored(t *testing.T) {
	testCases := []struct {
		name     string
		hazard   da.Hazard
		wantCode error
	}{
		{
			name:   "pothole does not affect walking",
			hazard: da.NewHazard(potholeID, da.POTHOLE, 90, crackLat, crackLon),
		},
		{
			name:   "ice is not an accessibility hazard",
			hazard: da.NewHazard(potholeID, da.ICE, 90, crackLat, crackLon),
		},
		{
			name:     "missing location",
			hazard:   da.Hazard{ID: vagueID, Type: da.CRACKS},
			wantCode: util.ErrBadParamInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			costs := newFakeAccessibilityStore()
			c := newTestAccessibilityCustomizer(accessibilityEdges(), newFakeHazardStore(), costs)
			n, err := c.ApplyHazard(context.Background(), tc.hazard)
			if tc.wantCode != nil {
				require.Error(t, err)
				assert.Equal(t, tc.wantCode, util.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Zero(t, n)
			assert.Empty(t, costs.rows)
		})
	}
}

func TestApplyHazardDefaultSeverity(t *testing.T) {
	loc := da.NewHazard(vagueID, da.CRACKS, 0, crackLat, crackLon).Location
	h := da.Hazard{ID: vagueID, Type: da.CRACKS, Location: loc}
	costs := newFakeAccessibilityStore()
	c := newTestAccessibilityCustomizer(accessibilityEdges(), newFakeHazardStore(), costs)

	_, err := c.ApplyHazard(context.Background(), h)
	require.NoError(t, err)
	assert.InDelta(t, 195.0, costs.rows[1].CostSeconds, 1e-9)

	// a later hazard on the same edge keeps the stored one at the default severity
	blocked := da.NewHazard(blockedID, da.BLOCKED_SIDEWALK, 0, blockedLat, blockedLon)
	c = newTestAccessibilityCustomizer(accessibilityEdges(), newFakeHazardStore(h, blocked), costs)
	_, err = c.ApplyHazard(context.Background(), blocked)
	require.NoError(t, err)
	// 1.95 x 3.0
	assert.InDelta(t, 585.0, costs.rows[1].CostSeconds, 1e-9)
	assert.ElementsMatch(t, []da.HazardID{vagueID, blockedID}, costs.rows[1].ContributingHazardIDs)

	// a rebuild agrees with the incremental path
	_, err = c.RebuildAll(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 585.0, costs.rows[1].CostSeconds, 1e-9)
	assert.ElementsMatch(t, []da.HazardID{vagueID, blockedID}, costs.rows[1].ContributingHazardIDs)
}

func TestApplyHazardMovedLocation(t *testing.T) {
	ctx := context.Background()
	crack := da.NewHazard(crackID, da.CRACKS, 50, crackLat, crackLon)
	blocked := da.NewHazard(blockedID, da.BLOCKED_SIDEWALK, 0, blockedLat, blockedLon)
	hazards := newFakeHazardStore(crack, blocked)
	costs := newFakeAccessibilityStore()
	c := newTestAccessibilityCustomizer(accessibilityEdges(), hazards, costs)

	for _, h := range []da.Hazard{crack, blocked} {
		_, err := c.ApplyHazard(ctx, h)
		require.NoError(t, err)
	}

	movedCrack := da.NewHazard(crackID, da.CRACKS, 50, farLat, farLon)
	hazards.hazards[crackID] = movedCrack
	n, err := c.ApplyHazard(ctx, movedCrack)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 300.0, costs.rows[1].CostSeconds, 1e-9)
	assert.Equal(t, []da.HazardID{blockedID}, costs.rows[1].ContributingHazardIDs)
	assert.InDelta(t, 78.0, costs.rows[3].CostSeconds, 1e-9)
	assert.Equal(t, []da.HazardID{crackID}, costs.rows[3].ContributingHazardIDs)

	movedBlocked := da.NewHazard(blockedID, da.BLOCKED_SIDEWALK, 0, farLat, farLon)
	hazards.hazards[blockedID] = movedBlocked
	n, err = c.ApplyHazard(ctx, movedBlocked)
	require.NoError(t, err)
	// rows 1 and 2 deleted, row 3 rewritten
	assert.Equal(t, 3, n)
	assert.NotContains(t, costs.rows, da.EdgeID(1))
	assert.NotContains(t, costs.rows, da.EdgeID(2))
	// 1.95 x 3.0
	assert.InDelta(t, 234.0, costs.rows[3].CostSeconds, 1e-9)
	assert.ElementsMatch(t, []da.HazardID{crackID, blockedID}, costs.rows[3].ContributingHazardIDs)
}

func TestRemoveHazard(t *testing.T) {
	ctx := context.Background()
	crack := da.NewHazard(crackID, da.CRACKS, 0, crackLat, crackLon)
	blocked := da.NewHazard(blockedID, da.BLOCKED_SIDEWALK, 100, blockedLat, blockedLon)
	hazards := newFakeHazardStore(crack, blocked)
	costs := newFakeAccessibilityStore()
	c := newTestAccessibilityCustomizer(accessibilityEdges(), hazards, costs)

	for _, h := range []da.Hazard{crack, blocked} {
		_, err := c.ApplyHazard(ctx, h)
		require.NoError(t, err)
	}

	n, err := c.RemoveHazard(ctx, blockedID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Contains(t, costs.rows, da.EdgeID(1))
	assert.InDelta(t, 130.0, costs.rows[1].CostSeconds, 1e-9)
	assert.Equal(t, []da.HazardID{crackID}, costs.rows[1].ContributingHazardIDs)
	// sole contributor removed, edge 2 reverts to base cost
	assert.NotContains(t, costs.rows, da.EdgeID(2))

	n, err = c.RemoveHazard(ctx, blockedID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRemoveHazardRehydratesRemainder(t *testing.T) {
	testCases := []struct {
		name     string
		other    da.Hazard
		wantCost float64
		wantRow  bool
	}{
		{
			name:     "remaining hazard without severity counts at the default",
			other:    da.Hazard{ID: vagueID, Type: da.BLOCKED_SIDEWALK},
			wantCost: 450,
			wantRow:  true,
		},
		{
			name:  "remaining hazard of unknown type is dropped",
			other: da.Hazard{ID: vagueID, Type: da.UNKNOWN_HAZARD},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			crack := da.NewHazard(crackID, da.CRACKS, 50, crackLat, crackLon)
			costs := newFakeAccessibilityStore()
			costs.rows[1] = da.AccessibilityEdgeCost{
				EdgeID:                1,
				CostSeconds:           500,
				ContributingHazardIDs: []da.HazardID{crackID, vagueID},
			}
			c := newTestAccessibilityCustomizer(accessibilityEdges(), newFakeHazardStore(crack, tc.other), costs)

			n, err := c.RemoveHazard(context.Background(), crackID)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			if !tc.wantRow {
				assert.Empty(t, costs.rows)
				return
			}
			assert.InDelta(t, tc.wantCost, costs.rows[1].CostSeconds, 1e-9)
			assert.Equal(t, []da.HazardID{vagueID}, costs.rows[1].ContributingHazardIDs)
		})
	}
}

func TestRebuildAll(t *testing.T) {
	ctx := context.Background()
	hazards := newFakeHazardStore(
		da.NewHazard(crackID, da.CRACKS, 50, crackLat, crackLon),
		da.NewHazard(blockedID, da.BLOCKED_SIDEWALK, 0, blockedLat, blockedLon),
		da.NewHazard(potholeID, da.POTHOLE, 100, farLat, farLon),
		da.Hazard{ID: vagueID, Type: da.CRACKS, Location: da.NewHazard(vagueID, da.CRACKS, 0, farLat, farLon).Location},
	)
	costs := newFakeAccessibilityStore()
	costs.rows[4] = da.AccessibilityEdgeCost{EdgeID: 4, CostSeconds: 999, ContributingHazardIDs: []da.HazardID{uuid.New()}}
	c := newTestAccessibilityCustomizer(accessibilityEdges(), hazards, costs)

	n, err := c.RebuildAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// 1.95 x 3.0
	assert.InDelta(t, 585.0, costs.rows[1].CostSeconds, 1e-9)
	assert.ElementsMatch(t, []da.HazardID{crackID, blockedID}, costs.rows[1].ContributingHazardIDs)
	assert.InDelta(t, 240.0, costs.rows[2].CostSeconds, 1e-9)
	// crack without severity counts at the default, the pothole does not affect walking
	assert.InDelta(t, 78.0, costs.rows[3].CostSeconds, 1e-9)
	assert.Equal(t, []da.HazardID{vagueID}, costs.rows[3].ContributingHazardIDs)
	assert.NotContains(t, costs.rows, da.EdgeID(4))

	// idempotent
	n, err = c.RebuildAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, costs.rows, 3)
}

func TestRebuildAllSkipsFailures(t *testing.T) {
	ctx := context.Background()
	newHazards := func() *fakeHazardStore {
		return newFakeHazardStore(
			da.NewHazard(crackID, da.CRACKS, 50, crackLat, crackLon),
			da.NewHazard(blockedID, da.BLOCKED_SIDEWALK, 0, blockedLat, blockedLon),
		)
	}
	staleRow := da.AccessibilityEdgeCost{EdgeID: 4, CostSeconds: 999, ContributingHazardIDs: []da.HazardID{uuid.New()}}

	t.Run("failed edge lookup skips the hazard and keeps stale rows", func(t *testing.T) {
		edges := &failingEdgeStore{fakeEdgeStore: accessibilityEdges(), failAt: geo.NewCoordinate(crackLat, crackLon)}
		costs := newFakeAccessibilityStore()
		costs.rows[4] = staleRow
		c := NewAccessibilityCustomizer(edges, newHazards(), costs, costfunction.NewDefaultHazardCostConfig(), zap.NewNop())

		n, err := c.RebuildAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.InDelta(t, 300.0, costs.rows[1].CostSeconds, 1e-9)
		assert.Equal(t, []da.HazardID{blockedID}, costs.rows[1].ContributingHazardIDs)
		assert.InDelta(t, 240.0, costs.rows[2].CostSeconds, 1e-9)
		assert.Contains(t, costs.rows, da.EdgeID(4))
	})

	t.Run("failed write skips the row", func(t *testing.T) {
		costs := &failingAccessibilityStore{fakeAccessibilityStore: newFakeAccessibilityStore(), failEdge: 2}
		costs.rows[4] = staleRow
		c := NewAccessibilityCustomizer(accessibilityEdges(), newHazards(), costs,
			costfunction.NewDefaultHazardCostConfig(), zap.NewNop())

		n, err := c.RebuildAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.InDelta(t, 585.0, costs.rows[1].CostSeconds, 1e-9)
		assert.NotContains(t, costs.rows, da.EdgeID(2))
		assert.NotContains(t, costs.rows, da.EdgeID(4))
	})
}

func TestDeepPotholeJoinsAccessibilityClass(t *testing.T) {
	config := costfunction.NewHazardCostConfig(nil, 50, costfunction.DeepPotholeRule{
		Mode:        costfunction.DEEP_POTHOLE_FLAT,
		Factor:      1.5,
		AffectsWalk: true,
	})
	pothole := da.NewHazard(potholeID, da.POTHOLE, 0, crackLat, crackLon)
	pothole.Deep = true
	costs := newFakeAccessibilityStore()
	c := NewAccessibilityCustomizer(accessibilityEdges(), newFakeHazardStore(pothole), costs, config, zap.NewNop())

	n, err := c.ApplyHazard(context.Background(), pothole)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	// 1.5 x (1 + 0) x 1.5
	assert.InDelta(t, 225.0, costs.rows[1].CostSeconds, 1e-9)
}
