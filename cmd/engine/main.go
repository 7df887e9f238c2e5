package main

import (
	"context"
	"flag"

	"github.com/groundtruth/saferoute/pkg"
	"github.com/groundtruth/saferoute/pkg/costfunction"
	"github.com/groundtruth/saferoute/pkg/customizer"
	"github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/engine/routing"
	"github.com/groundtruth/saferoute/pkg/geodata"
	"github.com/groundtruth/saferoute/pkg/http"
	"github.com/groundtruth/saferoute/pkg/http/usecases"
	"github.com/groundtruth/saferoute/pkg/logger"
	"github.com/groundtruth/saferoute/pkg/storage/kv"
	"github.com/groundtruth/saferoute/pkg/storage/memgraph"
	"github.com/groundtruth/saferoute/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	graphFile    = flag.String("graph", "./data/graph.graph", "graph file written by the preprocessor")
	useRateLimit = flag.Bool("rate_limit", false, "enable the global api rate limiter")
	initialize   = flag.Bool("initialize", false, "rebuild the safety and accessibility cost tables before serving")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck // ignore

	if err := util.ReadConfig(); err != nil {
		logger.Warn("config file not loaded, using defaults and environment", zap.Error(err))
	}
	viper.SetDefault("BADGER_PATH", "./data/badger")
	viper.SetDefault("BADGER_IN_MEMORY", false)
	viper.SetDefault("ROUTING_MAX_SPEED_MPS", pkg.DEFAULT_MAX_SPEED_MPS)

	graph, err := datastructure.ReadGraph(*graphFile)
	if err != nil {
		logger.Fatal("read graph", zap.String("file", *graphFile), zap.Error(err))
	}
	logger.Info("graph loaded", zap.Int("nodes", graph.NumberOfNodes()), zap.Int("edges", graph.NumberOfEdges()))
	graphStore := memgraph.NewGraphStore(graph, logger)

	storeConfig := kv.DefaultConfig(viper.GetString("BADGER_PATH"))
	if viper.GetBool("BADGER_IN_MEMORY") {
		storeConfig = kv.InMemoryConfig()
	}
	store, err := kv.Open(storeConfig, logger)
	if err != nil {
		logger.Fatal("open badger store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close badger store", zap.Error(err))
		}
	}()

	hazardConfig, err := costfunction.LoadHazardCostConfig()
	if err != nil {
		logger.Fatal("load hazard cost config", zap.Error(err))
	}

	safetyCustomizer := customizer.NewSafetyCustomizer(graphStore, store, store, logger)
	accessibilityCustomizer := customizer.NewAccessibilityCustomizer(graphStore, store, store, hazardConfig, logger)

	var sweeper usecases.EnvironmentalSweeper
	if provider := geodata.NewHTTPProvider(logger); provider.Configured() {
		sweeper = geodata.NewSweeper(provider, safetyCustomizer, graphStore, logger)
	} else {
		logger.Info("no environmental data endpoints configured, walk-safe compute endpoints are disabled")
	}

	routingService, err := usecases.NewRoutingService(logger, graphStore, store, store, store,
		routing.NewAStar(viper.GetFloat64("ROUTING_MAX_SPEED_MPS")))
	if err != nil {
		logger.Fatal("create routing service", zap.Error(err))
	}
	walkSafeService := usecases.NewWalkSafeService(logger, safetyCustomizer, sweeper)
	accessibilityService := usecases.NewAccessibilityService(logger, accessibilityCustomizer, store)
	overlayService := usecases.NewOverlayService(logger, store)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	if *initialize {
		n, err := walkSafeService.Initialize(ctx)
		if err != nil {
			logger.Fatal("initialize walk_safe costs", zap.Error(err))
		}
		m, err := accessibilityService.Initialize(ctx)
		if err != nil {
			logger.Fatal("initialize walk_accessible costs", zap.Error(err))
		}
		logger.Info("cost tables initialized", zap.Int("walk_safe_rows", n), zap.Int("walk_accessible_rows", m))
	}

	go store.RunGC(ctx)

	api := http.NewServer(logger)
	if _, err := api.Use(ctx, logger, *useRateLimit, routingService, walkSafeService, accessibilityService,
		overlayService); err != nil {
		logger.Fatal("start api", zap.Error(err))
	}

	signal := http.GracefulShutdown()
	cleanup()
	if err := api.Wait(); err != nil {
		logger.Error("api stopped with error", zap.Error(err))
	}

	logger.Info("SafeRoute Routing Engine Server Stopped", zap.String("signal", signal.String()))
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
