package usecases

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/groundtruth/saferoute/pkg"
	"github.com/groundtruth/saferoute/pkg/costfunction"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/engine/routing"
	"github.com/groundtruth/saferoute/pkg/geo"
	"github.com/groundtruth/saferoute/pkg/metrics"
	"github.com/groundtruth/saferoute/pkg/util"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RoutingService. snaps the endpoints, extracts a subgraph around them with radius expansion,
// assembles effective edge costs for the route type and runs the path search.
// holds no per-request state, safe for concurrent use.
type RoutingService struct {
	log                *zap.Logger
	graphStore         GraphStore
	overlays           OverlayStore
	safetyCosts        SafetyCostReader
	accessibilityCosts AccessibilityCostReader
	router             Router
	driveRouter        Router

	snapCache *lru.Cache[snapKey, da.NodeID]
	now       func() time.Time
}

// snapKey. coordinate rounded to ~0.1m.
type snapKey struct {
	lat, lon int64
}

func newSnapKey(lat, lon float64) snapKey {
	return snapKey{lat: int64(math.Round(lat * 1e6)), lon: int64(math.Round(lon * 1e6))}
}

func NewRoutingService(log *zap.Logger, graphStore GraphStore, overlays OverlayStore, safetyCosts SafetyCostReader,
	accessibilityCosts AccessibilityCostReader, router Router) (*RoutingService, error) {
	viper.SetDefault("ROUTING_SNAP_CACHE_SIZE", 10000)

	cache, err := lru.New[snapKey, da.NodeID](viper.GetInt("ROUTING_SNAP_CACHE_SIZE"))
	if err != nil {
		return nil, fmt.Errorf("create snap cache: %w", err)
	}
	return &RoutingService{
		log:                log,
		graphStore:         graphStore,
		overlays:           overlays,
		safetyCosts:        safetyCosts,
		accessibilityCosts: accessibilityCosts,
		router:             router,
		driveRouter:        routing.NewAStar(math.Inf(1)),
		snapCache:          cache,
		now:                time.Now,
	}, nil
}

// RouteByMode. plain routing of a travel mode, base costs plus overlays.
func (rs *RoutingService) RouteByMode(ctx context.Context, start, end geo.Coordinate, radiusMeters float64,
	mode pkg.TravelMode) (da.RouteResult, error) {
	return rs.Route(ctx, start, end, radiusMeters, da.RouteTypeForMode(mode))
}

// Route. radiusMeters <= 0 selects max(2000m, 1.2 x haversine(start, end)). extraction and search
// are retried at 2x and 4x the radius when no route is found.
func (rs *RoutingService) Route(ctx context.Context, start, end geo.Coordinate, radiusMeters float64,
	routeType da.RouteType) (da.RouteResult, error) {
	begin := time.Now()
	res, err := rs.route(ctx, start, end, radiusMeters, routeType)
	routeDurationSeconds.WithLabelValues(routeType.String(), outcomeOf(err)).Observe(time.Since(begin).Seconds())
	return res, err
}

func (rs *RoutingService) route(ctx context.Context, start, end geo.Coordinate, radiusMeters float64,
	routeType da.RouteType) (da.RouteResult, error) {
	if !start.IsValid() || !end.IsValid() {
		return da.RouteResult{}, util.WrapErrorf(nil, util.ErrBadParamInput, "invalid coordinates")
	}

	s, t, err := rs.snapEndpoints(ctx, start, end)
	if err != nil {
		return da.RouteResult{}, err
	}
	if s == t {
		return da.NewTrivialRouteResult(s), nil
	}

	radius := radiusMeters
	if radius <= 0 {
		radius = math.Max(pkg.MIN_SEARCH_RADIUS_METERS,
			geo.HaversineBetween(start, end)*pkg.SEARCH_RADIUS_MULTIPLIER)
	}

	var lastErr error
	for attempt, multiplier := range pkg.RADIUS_ATTEMPT_MULTIPLIERS {
		r := radius * multiplier
		radiusAttemptsTotal.WithLabelValues(routeType.String()).Inc()

		res, err := rs.attempt(ctx, start, end, s, t, r, routeType)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, routing.ErrNoRouteFound) {
			if errors.Is(err, routing.ErrDataIntegrity) {
				rs.log.Error("graph data integrity failure", zap.Int64("start_node", int64(s)),
					zap.Int64("goal_node", int64(t)), zap.Float64("radius_meters", r), zap.Error(err))
			}
			return da.RouteResult{}, err
		}

		rs.log.Debug("no route within radius", zap.Int("attempt", attempt+1), zap.Float64("radius_meters", r),
			zap.Stringer("route_type", routeType))
		lastErr = err
	}

	return da.RouteResult{}, util.WrapErrorf(lastErr, util.ErrNotFound,
		"no route from (%f, %f) to (%f, %f)", start.Lat, start.Lon, end.Lat, end.Lon)
}

func (rs *RoutingService) snapEndpoints(ctx context.Context, start, end geo.Coordinate) (da.NodeID, da.NodeID, error) {
	var s, t da.NodeID
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		s, err = rs.snap(gctx, start)
		return err
	})
	g.Go(func() error {
		var err error
		t, err = rs.snap(gctx, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return s, t, nil
}

func (rs *RoutingService) snap(ctx context.Context, c geo.Coordinate) (da.NodeID, error) {
	key := newSnapKey(c.Lat, c.Lon)
	if id, ok := rs.snapCache.Get(key); ok {
		return id, nil
	}

	id, ok, err := rs.graphStore.SnapNearestNode(ctx, c.Lat, c.Lon)
	if err != nil {
		return 0, util.WrapErrorf(err, util.ErrInternalServerError, "snap (%f, %f)", c.Lat, c.Lon)
	}
	if !ok {
		return 0, util.WrapErrorf(routing.ErrSnapFailure, util.ErrNotFound, "snap (%f, %f)", c.Lat, c.Lon)
	}
	rs.snapCache.Add(key, id)
	return id, nil
}

// attempt. one extraction + search at radiusMeters.
func (rs *RoutingService) attempt(ctx context.Context, start, end geo.Coordinate, s, t da.NodeID,
	radiusMeters float64, routeType da.RouteType) (da.RouteResult, error) {
	mode := routeType.TravelMode()

	nodes, err := rs.extractNodes(ctx, start, end, s, t, radiusMeters)
	if err != nil {
		return da.RouteResult{}, err
	}
	nodeIDs := make([]da.NodeID, len(nodes))
	for i, n := range nodes {
		nodeIDs[i] = n.GetID()
	}

	edges, err := rs.graphStore.LoadEdgesAmong(ctx, nodeIDs, mode)
	if err != nil {
		return da.RouteResult{}, util.WrapErrorf(err, util.ErrInternalServerError, "load edges")
	}
	if len(edges) == 0 {
		return da.RouteResult{}, util.WrapErrorf(routing.ErrNoRouteFound, util.ErrNotFound,
			"no %s edges within %.0fm", mode, radiusMeters)
	}

	metric, err := rs.buildMetric(ctx, edges, routeType)
	if err != nil {
		return da.RouteResult{}, err
	}

	sg := da.NewSubGraph(len(nodes), len(edges))
	for _, n := range nodes {
		sg.SetCoordinate(n.GetID(), n.GetLat(), n.GetLon())
	}
	for _, e := range edges {
		sg.AddOutEdge(e.GetSource(), da.NewOutEdge(e.GetID(), e.GetTarget(), e.GetLength(), metric.GetWeight(e)))
	}

	return rs.routerFor(mode).ShortestPathSearch(sg, s, t)
}

// routerFor. drive edges can be faster than the walking-pace heuristic assumes, so drive searches run without it.
func (rs *RoutingService) routerFor(mode pkg.TravelMode) Router {
	if mode == pkg.DRIVE {
		return rs.driveRouter
	}
	return rs.router
}

// extractNodes. nodes within radius of either endpoint, plus the two snapped nodes.
func (rs *RoutingService) extractNodes(ctx context.Context, start, end geo.Coordinate, s, t da.NodeID,
	radiusMeters float64) ([]da.Node, error) {
	seen := make(map[da.NodeID]struct{})
	nodes := make([]da.Node, 0)
	add := func(ns []da.Node) {
		for _, n := range ns {
			if _, ok := seen[n.GetID()]; ok {
				continue
			}
			seen[n.GetID()] = struct{}{}
			nodes = append(nodes, n)
		}
	}

	for _, c := range []geo.Coordinate{start, end} {
		ns, err := rs.graphStore.LoadNodesWithinRadius(ctx, c.Lat, c.Lon, radiusMeters)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInternalServerError, "load nodes")
		}
		add(ns)
	}

	for _, id := range []da.NodeID{s, t} {
		if _, ok := seen[id]; ok {
			continue
		}
		n, ok, err := rs.graphStore.GetNode(ctx, id)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInternalServerError, "load node %d", id)
		}
		if !ok {
			return nil, util.WrapErrorf(routing.ErrDataIntegrity, util.ErrInternalServerError,
				"snapped node %d is missing", id)
		}
		add([]da.Node{n})
	}
	return nodes, nil
}

// buildMetric. loads only the cost tables the route type selects, plus the active overlays.
func (rs *RoutingService) buildMetric(ctx context.Context, edges []da.Edge, routeType da.RouteType) (*metrics.Metric, error) {
	metric := metrics.NewMetric(routeType, costfunction.NewBaseCostFunction())
	ids := make([]da.EdgeID, len(edges))
	for i, e := range edges {
		ids[i] = e.GetID()
	}

	if routeType.UsesSafetyCosts() {
		rows, err := rs.safetyCosts.LoadSafetyCosts(ctx, ids)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInternalServerError, "load safety costs")
		}
		metric.SetSafetyCosts(rows)
	}
	if routeType.UsesAccessibilityCosts() {
		rows, err := rs.accessibilityCosts.LoadAccessibilityCosts(ctx, ids)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInternalServerError, "load accessibility costs")
		}
		metric.SetAccessibilityCosts(rows)
	}

	asOf := rs.now()
	overlays, err := rs.overlays.LoadActiveOverlays(ctx, ids, routeType.TravelMode(), asOf)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "load cost overlays")
	}
	metric.SetOverlays(overlays, asOf)
	return metric, nil
}

// PathCoordinates. coordinates of the nodes of a route, in path order.
func (rs *RoutingService) PathCoordinates(ctx context.Context, nodePath []da.NodeID) ([]geo.Coordinate, error) {
	coords := make([]geo.Coordinate, 0, len(nodePath))
	for _, id := range nodePath {
		n, ok, err := rs.graphStore.GetNode(ctx, id)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInternalServerError, "load node %d", id)
		}
		if !ok {
			return nil, util.WrapErrorf(routing.ErrDataIntegrity, util.ErrInternalServerError,
				"route node %d is missing", id)
		}
		coords = append(coords, geo.NewCoordinate(n.GetLat(), n.GetLon()))
	}
	return coords, nil
}
