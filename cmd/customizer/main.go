package main

import (
	"context"
	"flag"
	"time"

	"github.com/groundtruth/saferoute/pkg/costfunction"
	"github.com/groundtruth/saferoute/pkg/customizer"
	"github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/logger"
	"github.com/groundtruth/saferoute/pkg/storage/kv"
	"github.com/groundtruth/saferoute/pkg/storage/memgraph"
	"github.com/groundtruth/saferoute/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	graphFile     = flag.String("graph", "./data/graph.graph", "graph file written by the preprocessor")
	safety        = flag.Bool("safety", true, "rebuild the walk_safe cost table")
	accessibility = flag.Bool("accessibility", true, "rebuild the walk_accessible cost table")
)

// rebuilds the precomputed cost tables offline, against the same badger directory the engine serves from.
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

	graph, err := datastructure.ReadGraph(*graphFile)
	if err != nil {
		logger.Fatal("read graph", zap.String("file", *graphFile), zap.Error(err))
	}
	graphStore := memgraph.NewGraphStore(graph, logger)

	store, err := kv.Open(kv.DefaultConfig(viper.GetString("BADGER_PATH")), logger)
	if err != nil {
		logger.Fatal("open badger store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close badger store", zap.Error(err))
		}
	}()

	ctx := context.Background()

	if *safety {
		start := time.Now()
		n, err := customizer.NewSafetyCustomizer(graphStore, store, store, logger).RecomputeAll(ctx)
		if err != nil {
			logger.Fatal("recompute walk_safe costs", zap.Error(err))
		}
		logger.Sugar().Infof("walk_safe customization took: %v, rows: %d", time.Since(start), n)
	}

	if *accessibility {
		hazardConfig, err := costfunction.LoadHazardCostConfig()
		if err != nil {
			logger.Fatal("load hazard cost config", zap.Error(err))
		}
		start := time.Now()
		n, err := customizer.NewAccessibilityCustomizer(graphStore, store, store, hazardConfig, logger).RebuildAll(ctx)
		if err != nil {
			logger.Fatal("rebuild walk_accessible costs", zap.Error(err))
		}
		logger.Sugar().Infof("walk_accessible customization took: %v, rows: %d", time.Since(start), n)
	}
}
