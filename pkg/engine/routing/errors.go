package routing

import "errors"

var (
	// ErrSnapFailure. no node can be snapped to a coordinate (empty graph store).
	ErrSnapFailure = errors.New("no graph node to snap to")
	// ErrNoRouteFound. search exhausted without reaching the goal.
	ErrNoRouteFound = errors.New("no route found")
	// ErrDataIntegrity. a referenced node or edge lacks required geometry.
	ErrDataIntegrity = errors.New("graph data integrity failure")
)
