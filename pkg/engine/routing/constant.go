package routing

import "github.com/groundtruth/saferoute/pkg/datastructure"

const (
	INVALID_NODE_ID datastructure.NodeID = -1
	INVALID_EDGE_ID datastructure.EdgeID = -1
)
