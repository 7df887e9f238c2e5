package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const maxConflictRetries = 3

type Config struct {
	Path              string
	InMemory          bool
	SyncWrites        bool
	NumVersionsToKeep int
	GCInterval        time.Duration // 0 disables value log gc
	GCDiscardRatio    float64
}

func DefaultConfig(path string) Config {
	return Config{
		Path:              path,
		SyncWrites:        true,
		NumVersionsToKeep: 1,
		GCInterval:        5 * time.Minute,
		GCDiscardRatio:    0.5,
	}
}

func InMemoryConfig() Config {
	return Config{
		InMemory:          true,
		NumVersionsToKeep: 1,
	}
}

// zapBadgerLogger adapts zap to badger.Logger.
type zapBadgerLogger struct {
	log *zap.SugaredLogger
}

func (l *zapBadgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

func (l *zapBadgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

func (l *zapBadgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

func (l *zapBadgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

// Store. badger backed persistence of safety modifiers, safety/accessibility costs, hazards and overlays.
// every single-row write is one badger transaction.
type Store struct {
	db  *badger.DB
	cfg Config
	log *zap.Logger
}

func Open(cfg Config, log *zap.Logger) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	if cfg.NumVersionsToKeep <= 0 {
		cfg.NumVersionsToKeep = 1
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(cfg.NumVersionsToKeep).
		WithLogger(&zapBadgerLogger{log: log.Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &Store{db: db, cfg: cfg, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RunGC. runs value log gc every GCInterval until ctx is done.
func (s *Store) RunGC(ctx context.Context) {
	if s.cfg.InMemory || s.cfg.GCInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				err := s.db.RunValueLogGC(s.cfg.GCDiscardRatio)
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						s.log.Warn("badger value log gc failed", zap.Error(err))
					}
					break
				}
			}
		}
	}
}

// update. retries the transaction when badger reports a write conflict, last write wins.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}
