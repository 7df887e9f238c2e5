package geodata

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/groundtruth/saferoute/pkg"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrSignalDisabled. returned by a provider for a signal it has no source for; the sweep skips it.
var ErrSignalDisabled = errors.New("environmental signal is not configured")

// GeoDataProvider. external environmental data, every value normalized to [0,1].
type GeoDataProvider interface {
	FetchPopulationDensity(ctx context.Context, lat, lon float64) (float64, error)
	FetchStreetlightCoverage(ctx context.Context, lat, lon float64) (float64, error)
	FetchCrimeInArea(ctx context.Context, lat, lon float64) (float64, error)
}

type ModifierUpdater interface {
	UpdatePopDensity(ctx context.Context, lat, lon, radiusMeters, value float64) (int, error)
	UpdateStreetlight(ctx context.Context, lat, lon, radiusMeters, value float64) (int, error)
	UpdateCrimeInArea(ctx context.Context, lat, lon, radiusMeters, value float64) (int, error)
	RecomputeAll(ctx context.Context) (int, error)
}

type EdgeLister interface {
	ListEdgesByMode(ctx context.Context, mode pkg.TravelMode) ([]da.Edge, error)
	EdgeMidpoint(e da.Edge) (float64, float64, bool)
}

// Sweeper. pulls environmental signals for walk edges and feeds them to the safety modifiers.
type Sweeper struct {
	provider   GeoDataProvider
	updater    ModifierUpdater
	edges      EdgeLister
	limiter    *rate.Limiter
	workers    int
	bulkRadius float64
	log        *zap.Logger
}

func NewSweeper(provider GeoDataProvider, updater ModifierUpdater, edges EdgeLister, log *zap.Logger) *Sweeper {
	viper.SetDefault("geodata.bulk_radius_meters", pkg.DEFAULT_BULK_RADIUS_METERS)
	viper.SetDefault("geodata.requests_per_second", 10.0)
	viper.SetDefault("geodata.workers", 4)

	return NewSweeperWithLimits(provider, updater, edges, viper.GetFloat64("geodata.requests_per_second"),
		viper.GetInt("geodata.workers"), viper.GetFloat64("geodata.bulk_radius_meters"), log)
}

// NewSweeperWithLimits. requestsPerSecond <= 0 disables throttling.
func NewSweeperWithLimits(provider GeoDataProvider, updater ModifierUpdater, edges EdgeLister,
	requestsPerSecond float64, workers int, bulkRadius float64, log *zap.Logger) *Sweeper {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if workers < 1 {
		workers = 1
	}
	if bulkRadius <= 0 {
		bulkRadius = pkg.DEFAULT_BULK_RADIUS_METERS
	}
	return &Sweeper{
		provider:   provider,
		updater:    updater,
		edges:      edges,
		limiter:    rate.NewLimiter(limit, 1),
		workers:    workers,
		bulkRadius: bulkRadius,
		log:        log,
	}
}

// SweepAll. sweeps the midpoint of every walk edge with the bulk radius, then recomputes every safety cost.
// per-edge failures are logged and skipped. returns the number of points swept successfully.
func (s *Sweeper) SweepAll(ctx context.Context) (int, error) {
	edges, err := s.edges.ListEdgesByMode(ctx, pkg.WALK)
	if err != nil {
		return 0, fmt.Errorf("list walk edges: %w", err)
	}
	s.log.Info("starting environmental sweep", zap.Int("edges", len(edges)), zap.Int("workers", s.workers),
		zap.Float64("radius_meters", s.bulkRadius))

	var processed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, e := range edges {
		lat, lon, ok := s.edges.EdgeMidpoint(e)
		if !ok {
			failed.Add(1)
			sweepItemsTotal.WithLabelValues("skipped").Inc()
			s.log.Warn("walk edge has no geometry", zap.Int64("edge_id", int64(e.GetID())))
			continue
		}
		edgeID := e.GetID()
		g.Go(func() error {
			if _, err := s.sweep(gctx, lat, lon, s.bulkRadius); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				sweepItemsTotal.WithLabelValues("failed").Inc()
				s.log.Warn("environmental sweep failed for edge", zap.Int64("edge_id", int64(edgeID)), zap.Error(err))
				return nil
			}
			n := processed.Add(1)
			sweepItemsTotal.WithLabelValues("ok").Inc()
			if n%LOG_PROGRESS_EVERY == 0 {
				s.log.Info("environmental sweep progress", zap.Int64("processed", n))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(processed.Load()), fmt.Errorf("environmental sweep: %w", err)
	}

	updated, err := s.updater.RecomputeAll(ctx)
	if err != nil {
		return int(processed.Load()), fmt.Errorf("recompute safety costs after sweep: %w", err)
	}
	s.log.Info("environmental sweep finished", zap.Int64("processed", processed.Load()),
		zap.Int64("failed", failed.Load()), zap.Int("recomputed", updated))
	return int(processed.Load()), nil
}

// SweepPoint. fetches and applies all three signals at one location. signals that could be fetched are
// applied even when another one fails. returns the largest number of edges updated by one signal.
func (s *Sweeper) SweepPoint(ctx context.Context, lat, lon, radiusMeters float64) (int, error) {
	if radiusMeters <= 0 {
		radiusMeters = s.bulkRadius
	}
	n, err := s.sweep(ctx, lat, lon, radiusMeters)
	if err == nil {
		sweepItemsTotal.WithLabelValues("ok").Inc()
	}
	return n, err
}

type signal struct {
	name   string
	fetch  func(ctx context.Context, lat, lon float64) (float64, error)
	update func(ctx context.Context, lat, lon, radiusMeters, value float64) (int, error)
}

func (s *Sweeper) signals() []signal {
	return []signal{
		{name: "pop_density", fetch: s.provider.FetchPopulationDensity, update: s.updater.UpdatePopDensity},
		{name: "streetlight", fetch: s.provider.FetchStreetlightCoverage, update: s.updater.UpdateStreetlight},
		{name: "crime_in_area", fetch: s.provider.FetchCrimeInArea, update: s.updater.UpdateCrimeInArea},
	}
}

func (s *Sweeper) sweep(ctx context.Context, lat, lon, radiusMeters float64) (int, error) {
	maxUpdated := 0
	var errs []error
	for _, sig := range s.signals() {
		if err := s.limiter.Wait(ctx); err != nil {
			return maxUpdated, err
		}
		value, err := sig.fetch(ctx, lat, lon)
		if errors.Is(err, ErrSignalDisabled) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch %s: %w", sig.name, err))
			continue
		}
		n, err := sig.update(ctx, lat, lon, radiusMeters, value)
		if err != nil {
			errs = append(errs, fmt.Errorf("update %s: %w", sig.name, err))
			continue
		}
		maxUpdated = max(maxUpdated, n)
	}
	return maxUpdated, errors.Join(errs...)
}
