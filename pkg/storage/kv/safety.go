package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
)

// LoadSafetyModifiers. rows for the ids that have one, in id order of the input.
func (s *Store) LoadSafetyModifiers(ctx context.Context, ids []da.EdgeID) ([]da.SafetyModifier, error) {
	rows := make([]da.SafetyModifier, 0, len(ids))
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			var m da.SafetyModifier
			ok, err := getJSON(txn, edgeKey(prefixSafetyModifier, id), &m)
			if err != nil {
				return fmt.Errorf("safety modifier %d: %w", id, err)
			}
			if ok {
				rows = append(rows, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load safety modifiers: %w", err)
	}
	return rows, nil
}

func (s *Store) UpsertSafetyModifiers(ctx context.Context, rows []da.SafetyModifier) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, row := range rows {
		buf, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if err := wb.Set(edgeKey(prefixSafetyModifier, row.EdgeID), buf); err != nil {
			return fmt.Errorf("upsert safety modifier %d: %w", row.EdgeID, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("upsert safety modifiers: %w", err)
	}
	return nil
}

func (s *Store) LoadSafetyCosts(ctx context.Context, ids []da.EdgeID) ([]da.SafetyEdgeCost, error) {
	rows := make([]da.SafetyEdgeCost, 0, len(ids))
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			var c da.SafetyEdgeCost
			ok, err := getJSON(txn, edgeKey(prefixSafetyCost, id), &c)
			if err != nil {
				return fmt.Errorf("safety cost %d: %w", id, err)
			}
			if ok {
				rows = append(rows, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load safety costs: %w", err)
	}
	return rows, nil
}

func (s *Store) UpsertSafetyCost(ctx context.Context, row da.SafetyEdgeCost) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, edgeKey(prefixSafetyCost, row.EdgeID), row)
	})
}

func (s *Store) UpsertSafetyCosts(ctx context.Context, rows []da.SafetyEdgeCost) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, row := range rows {
		buf, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if err := wb.Set(edgeKey(prefixSafetyCost, row.EdgeID), buf); err != nil {
			return fmt.Errorf("upsert safety cost %d: %w", row.EdgeID, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("upsert safety costs: %w", err)
	}
	return nil
}
