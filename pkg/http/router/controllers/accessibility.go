package controllers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	helper "github.com/groundtruth/saferoute/pkg/http/router/routerhelper"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type accessibilityAPI struct {
	baseAPI
	accessibilityService AccessibilityService
}

func NewAccessibilityAPI(accessibilityService AccessibilityService, log *zap.Logger) *accessibilityAPI {
	return &accessibilityAPI{baseAPI: newBaseAPI(log), accessibilityService: accessibilityService}
}

func (api *accessibilityAPI) Routes(group *helper.RouteGroup) {
	g := group.Group("/accessibility")
	g.POST("/initialize", api.initialize)
	g.POST("/hazards", api.reportHazard)
	g.DELETE("/hazards/:id", api.resolveHazard)
}

// initialize godoc
//
//	@Summary	rebuild every walk_accessible edge cost from the stored hazards
//	@Tags		accessibility
//	@Produce	json
//	@Router		/accessibility/initialize [post]
func (api *accessibilityAPI) initialize(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	n, err := api.accessibilityService.Initialize(r.Context())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeData(w, r, http.StatusOK, countResponse{Count: n})
}

// reportHazard godoc
//
//	@Summary	store a hazard and apply it to the nearby walk edges
//	@Tags		accessibility
//	@Accept		json
//	@Produce	json
//	@Router		/accessibility/hazards [post]
func (api *accessibilityAPI) reportHazard(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request hazardRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	h, n, err := api.accessibilityService.ReportHazard(r.Context(), request.toHazard())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeData(w, r, http.StatusCreated, hazardResponse{Hazard: h, EdgesUpdated: n})
}

// resolveHazard godoc
//
//	@Summary	remove a hazard and its contribution to every edge
//	@Tags		accessibility
//	@Produce	json
//	@Param		id	path	string	true	"hazard uuid"
//	@Router		/accessibility/hazards/{id} [delete]
func (api *accessibilityAPI) resolveHazard(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id, err := uuid.Parse(p.ByName("id"))
	if err != nil {
		api.BadRequestResponse(w, r, fmt.Errorf("id must be a uuid: %w", err))
		return
	}

	n, err := api.accessibilityService.ResolveHazard(r.Context(), id)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeData(w, r, http.StatusOK, countResponse{Count: n})
}
