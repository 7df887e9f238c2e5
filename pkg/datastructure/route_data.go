package datastructure

// RouteResult. edgePath[i] connects nodePath[i] -> nodePath[i+1].
type RouteResult struct {
	NodePath        []NodeID `json:"node_path"`
	EdgePath        []EdgeID `json:"edge_path"`
	DistanceMeters  float64  `json:"distance_meters"`
	DurationSeconds float64  `json:"duration_seconds"`
}

func NewTrivialRouteResult(node NodeID) RouteResult {
	return RouteResult{
		NodePath: []NodeID{node},
		EdgePath: []EdgeID{},
	}
}

func (r RouteResult) IsTrivial() bool {
	return len(r.EdgePath) == 0
}
