package datastructure

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/groundtruth/saferoute/pkg"
	"github.com/groundtruth/saferoute/pkg/geo"
)

type HazardID = uuid.UUID

// enum of hazard_type
type HazardType uint8

const (
	POTHOLE HazardType = iota
	ICE
	CRACKS
	BLOCKED_SIDEWALK
	UNKNOWN_HAZARD
)

type hazardTypeInfo struct {
	label                 string
	affectsWalk           bool
	affectsDrive          bool
	accessibility         bool
	defaultBaseMultiplier float64
}

var hazardTypeTable = map[HazardType]hazardTypeInfo{
	POTHOLE:          {label: "pothole", affectsDrive: true, defaultBaseMultiplier: 1.5},
	ICE:              {label: "ice", affectsWalk: true, affectsDrive: true, defaultBaseMultiplier: 2.0},
	CRACKS:           {label: "cracks", affectsWalk: true, accessibility: true, defaultBaseMultiplier: 1.3},
	BLOCKED_SIDEWALK: {label: "blocked_sidewalk", affectsWalk: true, accessibility: true, defaultBaseMultiplier: 3.0},
}

var hazardTypeByLabel = map[string]HazardType{
	"pothole":          POTHOLE,
	"ice":              ICE,
	"cracks":           CRACKS,
	"blocked_sidewalk": BLOCKED_SIDEWALK,
}

// ParseHazardType. accepts "blocked sidewalk", "blocked-sidewalk" and "blocked_sidewalk".
func ParseHazardType(label string) (HazardType, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	t, ok := hazardTypeByLabel[key]
	if !ok {
		return UNKNOWN_HAZARD, false
	}
	return t, true
}

func (h HazardType) String() string {
	info, ok := hazardTypeTable[h]
	if !ok {
		return "unknown"
	}
	return info.label
}

func (h HazardType) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HazardType) UnmarshalText(text []byte) error {
	parsed, ok := ParseHazardType(string(text))
	if !ok {
		return fmt.Errorf("unknown hazard type %q", string(text))
	}
	*h = parsed
	return nil
}

func (h HazardType) DefaultBaseMultiplier() float64 {
	info, ok := hazardTypeTable[h]
	if !ok {
		return 1.0
	}
	return info.defaultBaseMultiplier
}

func (h HazardType) Affects(mode pkg.TravelMode) bool {
	info := hazardTypeTable[h]
	switch mode {
	case pkg.WALK:
		return info.affectsWalk
	case pkg.DRIVE:
		return info.affectsDrive
	}
	return false
}

// IsAccessibilityHazard. cracks and blocked sidewalks.
func (h HazardType) IsAccessibilityHazard() bool {
	return hazardTypeTable[h].accessibility
}

func AccessibilityHazardTypes() []HazardType {
	return []HazardType{CRACKS, BLOCKED_SIDEWALK}
}

// Hazard. authored by the reporting subsystem; severity and location may be unknown.
type Hazard struct {
	ID       HazardID        `json:"id"`
	Type     HazardType      `json:"type"`
	Severity *float64        `json:"severity,omitempty"`
	Location *geo.Coordinate `json:"location,omitempty"`
	// Deep. set by the pothole depth inference step.
	Deep bool `json:"deep,omitempty"`
}

func NewHazard(id HazardID, hazardType HazardType, severity float64, lat, lon float64) Hazard {
	loc := geo.NewCoordinate(lat, lon)
	return Hazard{
		ID:       id,
		Type:     hazardType,
		Severity: &severity,
		Location: &loc,
	}
}

func (h Hazard) SeverityOrDefault() float64 {
	if h.Severity == nil {
		return pkg.DEFAULT_HAZARD_SEVERITY
	}
	return *h.Severity
}
