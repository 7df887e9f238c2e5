package customizer

import (
	"context"
	"errors"
	"sort"

	"github.com/groundtruth/saferoute/pkg"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/geo"
)

type fakeEdgeStore struct {
	edges map[da.EdgeID]da.Edge
	near  map[geo.Coordinate][]da.EdgeID
}

func newFakeEdgeStore(edges ...da.Edge) *fakeEdgeStore {
	s := &fakeEdgeStore{
		edges: make(map[da.EdgeID]da.Edge),
		near:  make(map[geo.Coordinate][]da.EdgeID),
	}
	for _, e := range edges {
		s.edges[e.GetID()] = e
	}
	return s
}

func (s *fakeEdgeStore) setNear(lat, lon float64, ids ...da.EdgeID) {
	s.near[geo.NewCoordinate(lat, lon)] = ids
}

func (s *fakeEdgeStore) GetEdges(ctx context.Context, ids []da.EdgeID) ([]da.Edge, error) {
	out := make([]da.Edge, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.edges[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeEdgeStore) ListEdgesByMode(ctx context.Context, mode pkg.TravelMode) ([]da.Edge, error) {
	out := make([]da.Edge, 0)
	for _, e := range s.edges {
		if e.GetMode() == mode {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetID() < out[j].GetID() })
	return out, nil
}

func (s *fakeEdgeStore) FindEdgesNear(ctx context.Context, lat, lon, radiusMeters float64,
	mode pkg.TravelMode) ([]da.EdgeID, error) {
	out := make([]da.EdgeID, 0)
	for _, id := range s.near[geo.NewCoordinate(lat, lon)] {
		if s.edges[id].GetMode() == mode {
			out = append(out, id)
		}
	}
	return out, nil
}

// failingEdgeStore. spatial lookups at failAt return an error.
type failingEdgeStore struct {
	*fakeEdgeStore
	failAt geo.Coordinate
}

func (s *failingEdgeStore) FindEdgesNear(ctx context.Context, lat, lon, radiusMeters float64,
	mode pkg.TravelMode) ([]da.EdgeID, error) {
	if geo.NewCoordinate(lat, lon) == s.failAt {
		return nil, errors.New("spatial lookup failed")
	}
	return s.fakeEdgeStore.FindEdgesNear(ctx, lat, lon, radiusMeters, mode)
}

type fakeSafetyStore struct {
	modifiers map[da.EdgeID]da.SafetyModifier
	costs     map[da.EdgeID]float64
}

func newFakeSafetyStore() *fakeSafetyStore {
	return &fakeSafetyStore{
		modifiers: make(map[da.EdgeID]da.SafetyModifier),
		costs:     make(map[da.EdgeID]float64),
	}
}

func (s *fakeSafetyStore) LoadSafetyModifiers(ctx context.Context, ids []da.EdgeID) ([]da.SafetyModifier, error) {
	out := make([]da.SafetyModifier, 0)
	for _, id := range ids {
		if m, ok := s.modifiers[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeSafetyStore) UpsertSafetyModifiers(ctx context.Context, rows []da.SafetyModifier) error {
	for _, r := range rows {
		s.modifiers[r.EdgeID] = r
	}
	return nil
}

func (s *fakeSafetyStore) UpsertSafetyCosts(ctx context.Context, rows []da.SafetyEdgeCost) error {
	for _, r := range rows {
		s.costs[r.EdgeID] = r.CostSeconds
	}
	return nil
}

type fakeAccessibilityStore struct {
	rows map[da.EdgeID]da.AccessibilityEdgeCost
}

func newFakeAccessibilityStore() *fakeAccessibilityStore {
	return &fakeAccessibilityStore{rows: make(map[da.EdgeID]da.AccessibilityEdgeCost)}
}

func (s *fakeAccessibilityStore) LoadAccessibilityCosts(ctx context.Context, ids []da.EdgeID) ([]da.AccessibilityEdgeCost, error) {
	out := make([]da.AccessibilityEdgeCost, 0)
	for _, id := range ids {
		if r, ok := s.rows[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeAccessibilityStore) FindAccessibilityCostsByHazard(ctx context.Context, hazardID da.HazardID) ([]da.AccessibilityEdgeCost, error) {
	out := make([]da.AccessibilityEdgeCost, 0)
	for _, r := range s.rows {
		if r.HasHazard(hazardID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EdgeID < out[j].EdgeID })
	return out, nil
}

func (s *fakeAccessibilityStore) ListAccessibilityCostEdgeIDs(ctx context.Context) ([]da.EdgeID, error) {
	out := make([]da.EdgeID, 0, len(s.rows))
	for id := range s.rows {
		out = append(out, id)
	}
	return out, nil
}

func (s *fakeAccessibilityStore) UpsertAccessibilityCost(ctx context.Context, row da.AccessibilityEdgeCost) error {
	s.rows[row.EdgeID] = row
	return nil
}

func (s *fakeAccessibilityStore) DeleteAccessibilityCost(ctx context.Context, edgeID da.EdgeID) error {
	delete(s.rows, edgeID)
	return nil
}

// failingAccessibilityStore. writes of failEdge return an error.
type failingAccessibilityStore struct {
	*fakeAccessibilityStore
	failEdge da.EdgeID
}

func (s *failingAccessibilityStore) UpsertAccessibilityCost(ctx context.Context, row da.AccessibilityEdgeCost) error {
	if row.EdgeID == s.failEdge {
		return errors.New("write failed")
	}
	return s.fakeAccessibilityStore.UpsertAccessibilityCost(ctx, row)
}

type fakeHazardStore struct {
	hazards map[da.HazardID]da.Hazard
}

func newFakeHazardStore(hazards ...da.Hazard) *fakeHazardStore {
	s := &fakeHazardStore{hazards: make(map[da.HazardID]da.Hazard)}
	for _, h := range hazards {
		s.hazards[h.ID] = h
	}
	return s
}

func (s *fakeHazardStore) LoadHazardsByIds(ctx context.Context, ids []da.HazardID) ([]da.Hazard, error) {
	out := make([]da.Hazard, 0)
	for _, id := range ids {
		if h, ok := s.hazards[id]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *fakeHazardStore) ListHazardsByTypes(ctx context.Context, types []da.HazardType) ([]da.Hazard, error) {
	out := make([]da.Hazard, 0)
	for _, h := range s.hazards {
		for _, t := range types {
			if h.Type == t {
				out = append(out, h)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}
