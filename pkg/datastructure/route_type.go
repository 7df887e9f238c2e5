package datastructure

import (
	"strings"

	"github.com/groundtruth/saferoute/pkg"
)

// enum of route_type
type RouteType uint8

const (
	FASTEST RouteType = iota
	WALK_SAFE
	WALK_ACCESSIBLE
	WALK_SAFE_ACCESSIBLE
	DRIVE_FASTEST
	DRIVE_SAFE
)

type routeTypeProfile struct {
	name              string
	mode              pkg.TravelMode
	usesSafety        bool
	usesAccessibility bool
	usesDriveHazard   bool // reserved, no drive hazard table exists yet
}

var routeTypeProfiles = [...]routeTypeProfile{
	FASTEST:              {name: "fastest", mode: pkg.WALK},
	WALK_SAFE:            {name: "walk_safe", mode: pkg.WALK, usesSafety: true},
	WALK_ACCESSIBLE:      {name: "walk_accessible", mode: pkg.WALK, usesAccessibility: true},
	WALK_SAFE_ACCESSIBLE: {name: "walk_safe_accessible", mode: pkg.WALK, usesSafety: true, usesAccessibility: true},
	DRIVE_FASTEST:        {name: "drive_fastest", mode: pkg.DRIVE},
	DRIVE_SAFE:           {name: "drive_safe", mode: pkg.DRIVE, usesDriveHazard: true},
}

func ParseRouteType(s string) (RouteType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for rt, p := range routeTypeProfiles {
		if p.name == s {
			return RouteType(rt), true
		}
	}
	return 0, false
}

// RouteTypeForMode. plain mode routing uses base costs only.
func RouteTypeForMode(mode pkg.TravelMode) RouteType {
	if mode == pkg.DRIVE {
		return DRIVE_FASTEST
	}
	return FASTEST
}

func (rt RouteType) valid() bool {
	return int(rt) < len(routeTypeProfiles)
}

func (rt RouteType) String() string {
	if !rt.valid() {
		return "unknown"
	}
	return routeTypeProfiles[rt].name
}

func (rt RouteType) TravelMode() pkg.TravelMode {
	if !rt.valid() {
		return pkg.WALK
	}
	return routeTypeProfiles[rt].mode
}

func (rt RouteType) UsesSafetyCosts() bool {
	return rt.valid() && routeTypeProfiles[rt].usesSafety
}

func (rt RouteType) UsesAccessibilityCosts() bool {
	return rt.valid() && routeTypeProfiles[rt].usesAccessibility
}

func (rt RouteType) UsesDriveHazardCosts() bool {
	return rt.valid() && routeTypeProfiles[rt].usesDriveHazard
}

func (rt RouteType) UsesPrecomputedCosts() bool {
	return rt.UsesSafetyCosts() || rt.UsesAccessibilityCosts()
}
