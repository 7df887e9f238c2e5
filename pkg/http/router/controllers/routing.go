package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/groundtruth/saferoute/pkg"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/geo"
	helper "github.com/groundtruth/saferoute/pkg/http/router/routerhelper"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type routingAPI struct {
	baseAPI
	routingService RoutingService
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		baseAPI:        newBaseAPI(log),
		routingService: routingService,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/computeRoutes", api.shortestPath)
}

// shortestPath godoc
//
//	@Summary		hazard-aware shortest path between two coordinates
//	@Tags			routing
//	@Produce		json
//	@Param			origin_lat		query	number	true	"origin latitude"
//	@Param			origin_lon		query	number	true	"origin longitude"
//	@Param			destination_lat	query	number	true	"destination latitude"
//	@Param			destination_lon	query	number	true	"destination longitude"
//	@Param			route_type		query	string	false	"fastest, walk_safe, walk_accessible, walk_safe_accessible, drive_fastest, drive_safe"
//	@Param			mode			query	string	false	"walk or drive, used when route_type is empty"
//	@Param			radius			query	number	false	"subgraph radius in meters"
//	@Router			/computeRoutes [get]
func (api *routingAPI) shortestPath(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request, err := parseShortestPathRequest(r)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	res, err := api.routingService.Route(r.Context(),
		geo.NewCoordinate(request.OriginLat, request.OriginLon),
		geo.NewCoordinate(request.DestinationLat, request.DestinationLon),
		request.RadiusMeters, request.RouteType)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	coords, err := api.routingService.PathCoordinates(r.Context(), res.NodePath)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	api.writeData(w, r, http.StatusOK, NewShortestPathResponse(request.RouteType, res, coords))
}

func parseShortestPathRequest(r *http.Request) (shortestPathRequest, error) {
	var (
		request shortestPathRequest
		err     error
	)
	query := r.URL.Query()

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"origin_lat", &request.OriginLat},
		{"origin_lon", &request.OriginLon},
		{"destination_lat", &request.DestinationLat},
		{"destination_lon", &request.DestinationLon},
	} {
		*f.dst, err = strconv.ParseFloat(query.Get(f.name), 64)
		if err != nil {
			return request, fmt.Errorf("%s is required and must be a valid float", f.name)
		}
	}

	if raw := query.Get("radius"); raw != "" {
		request.RadiusMeters, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return request, errors.New("radius must be a valid float")
		}
	}

	switch {
	case query.Get("route_type") != "":
		rt, ok := da.ParseRouteType(query.Get("route_type"))
		if !ok {
			return request, fmt.Errorf("unknown route_type %q", query.Get("route_type"))
		}
		request.RouteType = rt
	case query.Get("mode") != "":
		mode, ok := pkg.ParseTravelMode(query.Get("mode"))
		if !ok {
			return request, fmt.Errorf("unknown mode %q", query.Get("mode"))
		}
		request.RouteType = da.RouteTypeForMode(mode)
	default:
		request.RouteType = da.FASTEST
	}
	return request, nil
}
