package kv

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
)

func (s *Store) LoadAccessibilityCosts(ctx context.Context, ids []da.EdgeID) ([]da.AccessibilityEdgeCost, error) {
	rows := make([]da.AccessibilityEdgeCost, 0, len(ids))
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			var c da.AccessibilityEdgeCost
			ok, err := getJSON(txn, edgeKey(prefixAccessibilityCost, id), &c)
			if err != nil {
				return fmt.Errorf("accessibility cost %d: %w", id, err)
			}
			if ok {
				rows = append(rows, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load accessibility costs: %w", err)
	}
	return rows, nil
}

// FindAccessibilityCostsByHazard. rows whose contributing set contains the hazard, via the ah/ index.
func (s *Store) FindAccessibilityCostsByHazard(ctx context.Context, hazardID da.HazardID) ([]da.AccessibilityEdgeCost, error) {
	rows := make([]da.AccessibilityEdgeCost, 0)
	err := s.view(ctx, func(txn *badger.Txn) error {
		prefix := hazardEdgeIndexPrefix(hazardID)
		edgeIDs := make([]da.EdgeID, 0)
		err := scanPrefix(txn, prefix, false, func(key, _ []byte) error {
			edgeIDs = append(edgeIDs, readEdgeID(key[len(prefix):]))
			return nil
		})
		if err != nil {
			return err
		}
		for _, id := range edgeIDs {
			var c da.AccessibilityEdgeCost
			ok, err := getJSON(txn, edgeKey(prefixAccessibilityCost, id), &c)
			if err != nil {
				return err
			}
			if ok && c.HasHazard(hazardID) {
				rows = append(rows, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find accessibility costs of hazard %s: %w", hazardID, err)
	}
	return rows, nil
}

func (s *Store) ListAccessibilityCostEdgeIDs(ctx context.Context) ([]da.EdgeID, error) {
	ids := make([]da.EdgeID, 0)
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scanPrefix(txn, prefixAccessibilityCost, false, func(key, _ []byte) error {
			ids = append(ids, readEdgeID(key[len(prefixAccessibilityCost):]))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list accessibility costs: %w", err)
	}
	return ids, nil
}

// UpsertAccessibilityCost. writes the row and its hazard index entries in one transaction.
func (s *Store) UpsertAccessibilityCost(ctx context.Context, row da.AccessibilityEdgeCost) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		if err := deleteHazardIndex(txn, row.EdgeID); err != nil {
			return err
		}
		if err := setJSON(txn, edgeKey(prefixAccessibilityCost, row.EdgeID), row); err != nil {
			return err
		}
		for _, hazardID := range row.ContributingHazardIDs {
			if err := txn.Set(hazardEdgeIndexKey(hazardID, row.EdgeID), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert accessibility cost %d: %w", row.EdgeID, err)
	}
	return nil
}

func (s *Store) DeleteAccessibilityCost(ctx context.Context, edgeID da.EdgeID) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		if err := deleteHazardIndex(txn, edgeID); err != nil {
			return err
		}
		return txn.Delete(edgeKey(prefixAccessibilityCost, edgeID))
	})
	if err != nil {
		return fmt.Errorf("delete accessibility cost %d: %w", edgeID, err)
	}
	return nil
}

func deleteHazardIndex(txn *badger.Txn, edgeID da.EdgeID) error {
	var old da.AccessibilityEdgeCost
	ok, err := getJSON(txn, edgeKey(prefixAccessibilityCost, edgeID), &old)
	if err != nil || !ok {
		return err
	}
	for _, hazardID := range old.ContributingHazardIDs {
		if err := txn.Delete(hazardEdgeIndexKey(hazardID, edgeID)); err != nil {
			return err
		}
	}
	return nil
}
