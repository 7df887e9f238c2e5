package http

import (
	"context"

	http_router "github.com/groundtruth/saferoute/pkg/http/router"
	"github.com/groundtruth/saferoute/pkg/http/router/controllers"
	http_server "github.com/groundtruth/saferoute/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use. starts the API in the background. Wait returns once ctx is cancelled and the server has drained.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	routingService controllers.RoutingService,
	walkSafeService controllers.WalkSafeService,
	accessibilityService controllers.AccessibilityService,
	overlayService controllers.OverlayService,

) (*Server, error) {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "60s")

	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}

	server := http_router.NewAPI(log)

	s.g = &errgroup.Group{}
	s.g.Go(func() error {
		return server.Run(
			ctx, config,
			useRateLimit, routingService, walkSafeService, accessibilityService, overlayService,
		)
	})

	return s, nil
}

func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}
