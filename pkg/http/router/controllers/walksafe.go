package controllers

import (
	"fmt"
	"net/http"

	da "github.com/groundtruth/saferoute/pkg/datastructure"
	helper "github.com/groundtruth/saferoute/pkg/http/router/routerhelper"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

var modifierFieldByPath = map[string]da.ModifierField{
	"pop-density":   da.POP_DENSITY,
	"streetlight":   da.STREETLIGHT,
	"crime-in-area": da.CRIME_IN_AREA,
}

type walkSafeAPI struct {
	baseAPI
	walkSafeService WalkSafeService
}

func NewWalkSafeAPI(walkSafeService WalkSafeService, log *zap.Logger) *walkSafeAPI {
	return &walkSafeAPI{baseAPI: newBaseAPI(log), walkSafeService: walkSafeService}
}

func (api *walkSafeAPI) Routes(group *helper.RouteGroup) {
	g := group.Group("/walk-safe")
	g.POST("/initialize", api.initialize)
	g.POST("/modifier/:field", api.updateModifier)
	g.POST("/compute/all", api.computeAt)
	g.POST("/compute/initialize-all", api.computeAll)
}

// initialize godoc
//
//	@Summary	recompute every walk_safe edge cost from the stored modifiers
//	@Tags		walk-safe
//	@Produce	json
//	@Router		/walk-safe/initialize [post]
func (api *walkSafeAPI) initialize(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	n, err := api.walkSafeService.Initialize(r.Context())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeData(w, r, http.StatusOK, countResponse{Count: n})
}

// updateModifier godoc
//
//	@Summary	set one safety modifier for the walk edges around a point
//	@Tags		walk-safe
//	@Accept		json
//	@Produce	json
//	@Param		field	path	string	true	"pop-density, streetlight or crime-in-area"
//	@Router		/walk-safe/modifier/{field} [post]
func (api *walkSafeAPI) updateModifier(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	field, ok := modifierFieldByPath[p.ByName("field")]
	if !ok {
		api.NotFoundResponse(w, r, fmt.Errorf("unknown modifier %q", p.ByName("field")))
		return
	}

	var request modifierUpdateRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	n, err := api.walkSafeService.UpdateModifier(r.Context(), field, *request.Lat, *request.Lon,
		request.RadiusMeters, *request.Value)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeData(w, r, http.StatusOK, countResponse{Count: n})
}

// computeAt godoc
//
//	@Summary	fetch every environmental signal at a point and apply it to the nearby walk edges
//	@Tags		walk-safe
//	@Accept		json
//	@Produce	json
//	@Router		/walk-safe/compute/all [post]
func (api *walkSafeAPI) computeAt(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request locationRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	n, err := api.walkSafeService.ComputeAt(r.Context(), *request.Lat, *request.Lon, request.RadiusMeters)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeData(w, r, http.StatusOK, countResponse{Count: n})
}

// computeAll godoc
//
//	@Summary	sweep every walk edge against the environmental data provider
//	@Tags		walk-safe
//	@Produce	json
//	@Router		/walk-safe/compute/initialize-all [post]
func (api *walkSafeAPI) computeAll(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	n, err := api.walkSafeService.ComputeAll(r.Context())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeData(w, r, http.StatusOK, countResponse{Count: n})
}
