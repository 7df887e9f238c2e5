package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/groundtruth/saferoute/pkg/http/router/controllers"
	router_helper "github.com/groundtruth/saferoute/pkg/http/router/routerhelper"
	http_server "github.com/groundtruth/saferoute/pkg/http/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "net/http/pprof"
)

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

//	@title			SafeRoute API
//	@version		1.0
//	@description	Hazard-aware walking and driving routes over openstreetmap data.

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api
func (api *API) Handler(
	useRateLimit bool,
	routingService controllers.RoutingService,
	walkSafeService controllers.WalkSafeService,
	accessibilityService controllers.AccessibilityService,
	overlayService controllers.OverlayService,
) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.GET("/doc/*any", swaggerHandler)
	router.Handler(http.MethodGet, "/debug/pprof/*item", http.DefaultServeMux)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	group := router_helper.NewRouteGroup(router, "/api")
	controllers.New(routingService, api.log).Routes(group)
	controllers.NewWalkSafeAPI(walkSafeService, api.log).Routes(group)
	controllers.NewAccessibilityAPI(accessibilityService, api.log).Routes(group)
	controllers.NewOverlayAPI(overlayService, api.log).Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log), Labels}
	if useRateLimit {
		mwChain = append(mwChain, Limit)
	}
	return alice.New(mwChain...).Then(router)
}

// Run. serves until ctx is cancelled, then shuts down gracefully within API_SHUTDOWN_TIMEOUT.
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	useRateLimit bool,
	routingService controllers.RoutingService,
	walkSafeService controllers.WalkSafeService,
	accessibilityService controllers.AccessibilityService,
	overlayService controllers.OverlayService,
) error {
	viper.SetDefault("API_SHUTDOWN_TIMEOUT", "15s")
	api.log.Info("Run httprouter API")

	handler := api.Handler(useRateLimit, routingService, walkSafeService, accessibilityService, overlayService)
	srv := http_server.New(ctx, handler, config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		api.log.Error("HTTP server stopped", zap.Error(err))
		return err

	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("API_SHUTDOWN_TIMEOUT"))
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
