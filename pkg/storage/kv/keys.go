package kv

import (
	"encoding/binary"

	"github.com/groundtruth/saferoute/pkg"
	da "github.com/groundtruth/saferoute/pkg/datastructure"
)

var (
	prefixSafetyModifier    = []byte("sm/")
	prefixSafetyCost        = []byte("sc/")
	prefixAccessibilityCost = []byte("ac/")
	prefixHazardEdgeIndex   = []byte("ah/")
	prefixHazard            = []byte("hz/")
	prefixOverlay           = []byte("ov/")
)

// edge ids are stored big-endian with the sign bit flipped so that byte order follows numeric order.
func putEdgeID(b []byte, id da.EdgeID) {
	binary.BigEndian.PutUint64(b, uint64(id)^(1<<63))
}

func readEdgeID(b []byte) da.EdgeID {
	return da.EdgeID(binary.BigEndian.Uint64(b) ^ (1 << 63))
}

func edgeKey(prefix []byte, id da.EdgeID) []byte {
	k := make([]byte, len(prefix)+8)
	copy(k, prefix)
	putEdgeID(k[len(prefix):], id)
	return k
}

func hazardKey(id da.HazardID) []byte {
	k := make([]byte, len(prefixHazard)+16)
	copy(k, prefixHazard)
	copy(k[len(prefixHazard):], id[:])
	return k
}

func hazardEdgeIndexPrefix(id da.HazardID) []byte {
	k := make([]byte, len(prefixHazardEdgeIndex)+16)
	copy(k, prefixHazardEdgeIndex)
	copy(k[len(prefixHazardEdgeIndex):], id[:])
	return k
}

// hazardEdgeIndexKey. ah/<hazard uuid><edge id>
func hazardEdgeIndexKey(hazardID da.HazardID, edgeID da.EdgeID) []byte {
	p := hazardEdgeIndexPrefix(hazardID)
	k := make([]byte, len(p)+8)
	copy(k, p)
	putEdgeID(k[len(p):], edgeID)
	return k
}

// overlayPrefix. ov/<edge id><mode>
func overlayPrefix(edgeID da.EdgeID, mode pkg.TravelMode) []byte {
	k := make([]byte, len(prefixOverlay)+9)
	copy(k, prefixOverlay)
	putEdgeID(k[len(prefixOverlay):], edgeID)
	k[len(k)-1] = byte(mode)
	return k
}

// overlayKey. ov/<edge id><mode><sequence>
func overlayKey(edgeID da.EdgeID, mode pkg.TravelMode, seq uint64) []byte {
	p := overlayPrefix(edgeID, mode)
	k := make([]byte, len(p)+8)
	copy(k, p)
	binary.BigEndian.PutUint64(k[len(p):], seq)
	return k
}
