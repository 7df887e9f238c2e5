package controllers

import (
	"net/http"

	helper "github.com/groundtruth/saferoute/pkg/http/router/routerhelper"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type overlayAPI struct {
	baseAPI
	overlayService OverlayService
}

func NewOverlayAPI(overlayService OverlayService, log *zap.Logger) *overlayAPI {
	return &overlayAPI{baseAPI: newBaseAPI(log), overlayService: overlayService}
}

func (api *overlayAPI) Routes(group *helper.RouteGroup) {
	g := group.Group("/overlays")
	g.POST("", api.addOverlay)
	g.DELETE("/expired", api.purgeExpired)
}

// addOverlay godoc
//
//	@Summary	add a time-bounded cost adjustment to one edge
//	@Tags		overlays
//	@Accept		json
//	@Produce	json
//	@Router		/overlays [post]
func (api *overlayAPI) addOverlay(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request overlayRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	o := request.toOverlay()
	if err := api.overlayService.AddOverlay(r.Context(), o); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeData(w, r, http.StatusCreated, o)
}

// purgeExpired godoc
//
//	@Summary	delete every overlay whose validity window has ended
//	@Tags		overlays
//	@Produce	json
//	@Router		/overlays/expired [delete]
func (api *overlayAPI) purgeExpired(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	n, err := api.overlayService.PurgeExpired(r.Context())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeData(w, r, http.StatusOK, countResponse{Count: n})
}
