package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
)

func (s *Store) UpsertHazard(ctx context.Context, h da.Hazard) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, hazardKey(h.ID), h)
	})
	if err != nil {
		return fmt.Errorf("upsert hazard %s: %w", h.ID, err)
	}
	return nil
}

func (s *Store) GetHazard(ctx context.Context, id da.HazardID) (da.Hazard, bool, error) {
	var (
		h  da.Hazard
		ok bool
	)
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		ok, err = getJSON(txn, hazardKey(id), &h)
		return err
	})
	if err != nil {
		return da.Hazard{}, false, fmt.Errorf("get hazard %s: %w", id, err)
	}
	return h, ok, nil
}

func (s *Store) DeleteHazard(ctx context.Context, id da.HazardID) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		return txn.Delete(hazardKey(id))
	})
	if err != nil {
		return fmt.Errorf("delete hazard %s: %w", id, err)
	}
	return nil
}

// LoadHazardsByIds. unknown ids are skipped.
func (s *Store) LoadHazardsByIds(ctx context.Context, ids []da.HazardID) ([]da.Hazard, error) {
	hazards := make([]da.Hazard, 0, len(ids))
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			var h da.Hazard
			ok, err := getJSON(txn, hazardKey(id), &h)
			if err != nil {
				return err
			}
			if ok {
				hazards = append(hazards, h)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load hazards: %w", err)
	}
	return hazards, nil
}

func (s *Store) ListHazardsByTypes(ctx context.Context, types []da.HazardType) ([]da.Hazard, error) {
	wanted := make(map[da.HazardType]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}

	hazards := make([]da.Hazard, 0)
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scanPrefix(txn, prefixHazard, true, func(key, val []byte) error {
			var h da.Hazard
			if err := json.Unmarshal(val, &h); err != nil {
				s.log.Sugar().Warnf("skipping undecodable hazard record %x: %v", key, err)
				return nil
			}
			if _, ok := wanted[h.Type]; ok {
				hazards = append(hazards, h)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list hazards: %w", err)
	}
	return hazards, nil
}
