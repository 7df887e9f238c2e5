package controllers

import (
	"time"

	"github.com/groundtruth/saferoute/pkg"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/geo"
)

type shortestPathRequest struct {
	OriginLat      float64 `json:"origin_lat" validate:"min=-90,max=90"`
	OriginLon      float64 `json:"origin_lon" validate:"min=-180,max=180"`
	DestinationLat float64 `json:"destination_lat" validate:"min=-90,max=90"`
	DestinationLon float64 `json:"destination_lon" validate:"min=-180,max=180"`
	RadiusMeters   float64 `json:"radius" validate:"min=0,max=100000"`
	RouteType      da.RouteType
}

type shortestPathResponse struct {
	RouteType string      `json:"route_type"`
	Eta       float64     `json:"eta"`
	Dist      float64     `json:"distance"`
	Path      string      `json:"path"`
	NodePath  []da.NodeID `json:"node_path"`
	EdgePath  []da.EdgeID `json:"edge_path"`
}

func NewShortestPathResponse(routeType da.RouteType, res da.RouteResult, coords []geo.Coordinate) shortestPathResponse {
	return shortestPathResponse{
		RouteType: routeType.String(),
		Eta:       res.DurationSeconds,
		Dist:      res.DistanceMeters,
		Path:      geo.EncodePolyline(coords),
		NodePath:  res.NodePath,
		EdgePath:  res.EdgePath,
	}
}

type modifierUpdateRequest struct {
	Lat          *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon          *float64 `json:"lon" validate:"required,min=-180,max=180"`
	RadiusMeters float64  `json:"radius_meters" validate:"min=0,max=10000"`
	Value        *float64 `json:"value" validate:"required"`
}

type locationRequest struct {
	Lat          *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon          *float64 `json:"lon" validate:"required,min=-180,max=180"`
	RadiusMeters float64  `json:"radius_meters" validate:"min=0,max=10000"`
}

type countResponse struct {
	Count int `json:"count"`
}

type hazardRequest struct {
	ID       *da.HazardID   `json:"id"`
	Type     *da.HazardType `json:"type" validate:"required"`
	Severity *float64       `json:"severity" validate:"omitempty,min=0,max=100"`
	Lat      *float64       `json:"lat" validate:"required,min=-90,max=90"`
	Lon      *float64       `json:"lon" validate:"required,min=-180,max=180"`
	Deep     bool           `json:"deep"`
}

func (r hazardRequest) toHazard() da.Hazard {
	loc := geo.NewCoordinate(*r.Lat, *r.Lon)
	h := da.Hazard{
		Type:     *r.Type,
		Severity: r.Severity,
		Location: &loc,
		Deep:     r.Deep,
	}
	if r.ID != nil {
		h.ID = *r.ID
	}
	return h
}

type hazardResponse struct {
	Hazard       da.Hazard `json:"hazard"`
	EdgesUpdated int       `json:"edges_updated"`
}

type overlayRequest struct {
	EdgeID       int64          `json:"edge_id" validate:"min=0"`
	Mode         pkg.TravelMode `json:"mode"`
	Multiplier   *float64       `json:"multiplier" validate:"omitempty,min=0"`
	DeltaSeconds float64        `json:"delta_seconds"`
	ValidFrom    *time.Time     `json:"valid_from"`
	ValidTo      *time.Time     `json:"valid_to"`
}

func (r overlayRequest) toOverlay() da.CostOverlay {
	multiplier := 1.0
	if r.Multiplier != nil {
		multiplier = *r.Multiplier
	}
	return da.CostOverlay{
		EdgeID:       da.EdgeID(r.EdgeID),
		Mode:         r.Mode,
		Multiplier:   multiplier,
		DeltaSeconds: r.DeltaSeconds,
		ValidFrom:    r.ValidFrom,
		ValidTo:      r.ValidTo,
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
