package kv

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/groundtruth/saferoute/pkg"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(InMemoryConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestEdgeKeyOrder(t *testing.T) {
	ids := []da.EdgeID{-5, -1, 0, 1, 300, 1 << 40}
	for i := 1; i < len(ids); i++ {
		a := edgeKey(prefixSafetyCost, ids[i-1])
		b := edgeKey(prefixSafetyCost, ids[i])
		assert.Less(t, string(a), string(b))
		assert.Equal(t, ids[i], readEdgeID(b[len(prefixSafetyCost):]))
	}
}

func TestSafetyRows(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	m := da.NewSafetyModifier(7)
	m.Set(da.STREETLIGHT, 0.25)
	require.NoError(t, s.UpsertSafetyModifiers(ctx, []da.SafetyModifier{m}))

	got, err := s.LoadSafetyModifiers(ctx, []da.EdgeID{7, 8})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].PopDensity)
	require.NotNil(t, got[0].Streetlight)
	assert.Equal(t, 0.25, *got[0].Streetlight)

	require.NoError(t, s.UpsertSafetyCosts(ctx, []da.SafetyEdgeCost{
		{EdgeID: 7, CostSeconds: 90},
		{EdgeID: 9, CostSeconds: 12},
	}))
	require.NoError(t, s.UpsertSafetyCost(ctx, da.SafetyEdgeCost{EdgeID: 7, CostSeconds: 100}))

	costs, err := s.LoadSafetyCosts(ctx, []da.EdgeID{7, 9, 11})
	require.NoError(t, err)
	assert.Equal(t, []da.SafetyEdgeCost{{EdgeID: 7, CostSeconds: 100}, {EdgeID: 9, CostSeconds: 12}}, costs)
}

func TestAccessibilityHazardIndex(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	h1, h2 := uuid.New(), uuid.New()
	require.NoError(t, s.UpsertAccessibilityCost(ctx, da.AccessibilityEdgeCost{
		EdgeID: 1, CostSeconds: 20, ContributingHazardIDs: []da.HazardID{h1, h2},
	}))
	require.NoError(t, s.UpsertAccessibilityCost(ctx, da.AccessibilityEdgeCost{
		EdgeID: 2, CostSeconds: 30, ContributingHazardIDs: []da.HazardID{h1},
	}))

	rows, err := s.FindAccessibilityCostsByHazard(ctx, h1)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// dropping h1 from edge 1 must also drop it from the index
	require.NoError(t, s.UpsertAccessibilityCost(ctx, da.AccessibilityEdgeCost{
		EdgeID: 1, CostSeconds: 15, ContributingHazardIDs: []da.HazardID{h2},
	}))
	rows, err = s.FindAccessibilityCostsByHazard(ctx, h1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, da.EdgeID(2), rows[0].EdgeID)

	require.NoError(t, s.DeleteAccessibilityCost(ctx, 2))
	rows, err = s.FindAccessibilityCostsByHazard(ctx, h1)
	require.NoError(t, err)
	assert.Empty(t, rows)

	ids, err := s.ListAccessibilityCostEdgeIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []da.EdgeID{1}, ids)
}

func TestHazards(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	cracks := da.NewHazard(uuid.New(), da.CRACKS, 40, -6.2, 106.8)
	pothole := da.NewHazard(uuid.New(), da.POTHOLE, 80, -6.3, 106.9)
	pothole.Deep = true
	noSeverity := da.Hazard{ID: uuid.New(), Type: da.BLOCKED_SIDEWALK}
	for _, h := range []da.Hazard{cracks, pothole, noSeverity} {
		require.NoError(t, s.UpsertHazard(ctx, h))
	}

	got, ok, err := s.GetHazard(ctx, pothole.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Deep)
	assert.Equal(t, 80.0, got.SeverityOrDefault())

	accessible, err := s.ListHazardsByTypes(ctx, da.AccessibilityHazardTypes())
	require.NoError(t, err)
	assert.Len(t, accessible, 2)

	byID, err := s.LoadHazardsByIds(ctx, []da.HazardID{noSeverity.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Nil(t, byID[0].Severity)

	require.NoError(t, s.DeleteHazard(ctx, cracks.ID))
	_, ok, err = s.GetHazard(ctx, cracks.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOverlays(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	testCases := []struct {
		name    string
		overlay da.CostOverlay
		active  bool
	}{
		{
			name:    "open window",
			overlay: da.CostOverlay{EdgeID: 3, Mode: pkg.WALK, Multiplier: 2},
			active:  true,
		},
		{
			name:    "expired",
			overlay: da.CostOverlay{EdgeID: 3, Mode: pkg.WALK, Multiplier: 5, ValidTo: &past},
		},
		{
			name:    "not yet valid",
			overlay: da.CostOverlay{EdgeID: 3, Mode: pkg.WALK, Multiplier: 7, ValidFrom: &future},
		},
		{
			name:    "other mode",
			overlay: da.CostOverlay{EdgeID: 3, Mode: pkg.DRIVE, Multiplier: 9},
		},
		{
			name:    "bounded window",
			overlay: da.CostOverlay{EdgeID: 3, Mode: pkg.WALK, Multiplier: 1, DeltaSeconds: 30, ValidFrom: &past, ValidTo: &future},
			active:  true,
		},
	}
	for _, tc := range testCases {
		require.NoError(t, s.AddOverlay(ctx, tc.overlay), tc.name)
	}

	active, err := s.LoadActiveOverlays(ctx, []da.EdgeID{3}, pkg.WALK, now)
	require.NoError(t, err)

	want := make([]float64, 0)
	for _, tc := range testCases {
		if tc.active {
			want = append(want, tc.overlay.Multiplier)
		}
	}
	got := make([]float64, 0, len(active))
	for _, o := range active {
		got = append(got, o.Multiplier)
	}
	assert.ElementsMatch(t, want, got)

	n, err := s.DeleteExpiredOverlays(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCancelledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LoadSafetyCosts(ctx, []da.EdgeID{1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, util.ErrInternalServerError, util.ErrorCode(err))
}
