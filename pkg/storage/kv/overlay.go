package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/groundtruth/saferoute/pkg"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
)

var overlaySequenceKey = []byte("seq/overlay")

// AddOverlay. overlays are append-only, several may exist for one edge and mode.
func (s *Store) AddOverlay(ctx context.Context, o da.CostOverlay) error {
	seq, err := s.db.GetSequence(overlaySequenceKey, 1)
	if err != nil {
		return fmt.Errorf("overlay sequence: %w", err)
	}
	defer seq.Release()
	n, err := seq.Next()
	if err != nil {
		return fmt.Errorf("overlay sequence: %w", err)
	}

	err = s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, overlayKey(o.EdgeID, o.Mode, n), o)
	})
	if err != nil {
		return fmt.Errorf("add overlay on edge %d: %w", o.EdgeID, err)
	}
	return nil
}

// LoadActiveOverlays. overlays of the mode on the edges whose validity window contains asOf.
func (s *Store) LoadActiveOverlays(ctx context.Context, edgeIDs []da.EdgeID, mode pkg.TravelMode,
	asOf time.Time) ([]da.CostOverlay, error) {
	overlays := make([]da.CostOverlay, 0)
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range edgeIDs {
			err := scanPrefix(txn, overlayPrefix(id, mode), true, func(_, val []byte) error {
				var o da.CostOverlay
				if err := json.Unmarshal(val, &o); err != nil {
					return err
				}
				if o.IsActive(asOf) {
					overlays = append(overlays, o)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load active overlays: %w", err)
	}
	return overlays, nil
}

// DeleteExpiredOverlays. removes overlays whose window ended before asOf, returns the count.
func (s *Store) DeleteExpiredOverlays(ctx context.Context, asOf time.Time) (int, error) {
	expired := make([][]byte, 0)
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scanPrefix(txn, prefixOverlay, true, func(key, val []byte) error {
			var o da.CostOverlay
			if err := json.Unmarshal(val, &o); err != nil {
				return err
			}
			if o.ValidTo != nil && !asOf.Before(*o.ValidTo) {
				expired = append(expired, key)
			}
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("scan overlays: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range expired {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("delete expired overlays: %w", err)
	}
	return len(expired), nil
}
