package main

import (
	"context"
	"flag"

	"github.com/groundtruth/saferoute/pkg/logger"
	"github.com/groundtruth/saferoute/pkg/osmparser"
	"go.uber.org/zap"
)

var (
	mapFile   = flag.String("f", "./data/map.osm.pbf", "openstreetmap pbf extract")
	graphFile = flag.String("o", "./data/graph.graph", "output graph file")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck // ignore

	osmParser := osmparser.NewOSMParser(logger)
	graph, err := osmParser.Parse(context.Background(), *mapFile)
	if err != nil {
		logger.Fatal("parse openstreetmap extract", zap.String("file", *mapFile), zap.Error(err))
	}

	if err := graph.WriteGraph(*graphFile); err != nil {
		logger.Fatal("write graph", zap.String("file", *graphFile), zap.Error(err))
	}

	logger.Sugar().Infof("Preprocessing completed successfully, graph written to %s", *graphFile)
}
