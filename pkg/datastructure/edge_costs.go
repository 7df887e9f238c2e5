package datastructure

import (
	"time"

	"github.com/groundtruth/saferoute/pkg"
)

// CostOverlay. time-bounded adjustment of one edge for one travel mode. validity window is [ValidFrom, ValidTo).
type CostOverlay struct {
	EdgeID       EdgeID         `json:"edge_id"`
	Mode         pkg.TravelMode `json:"mode"`
	Multiplier   float64        `json:"multiplier"`
	DeltaSeconds float64        `json:"delta_seconds"`
	ValidFrom    *time.Time     `json:"valid_from,omitempty"`
	ValidTo      *time.Time     `json:"valid_to,omitempty"`
}

func (o CostOverlay) IsActive(asOf time.Time) bool {
	if o.ValidFrom != nil && asOf.Before(*o.ValidFrom) {
		return false
	}
	if o.ValidTo != nil && !asOf.Before(*o.ValidTo) {
		return false
	}
	return true
}

// enum of safety modifier field
type ModifierField uint8

const (
	POP_DENSITY ModifierField = iota
	STREETLIGHT
	CRIME_IN_AREA
)

func (f ModifierField) String() string {
	switch f {
	case POP_DENSITY:
		return "pop_density"
	case STREETLIGHT:
		return "streetlight"
	case CRIME_IN_AREA:
		return "crime_in_area"
	default:
		return "unknown"
	}
}

// SafetyModifier. raw environmental signals of a walk edge, each in [0,1]; nil means no contribution.
type SafetyModifier struct {
	EdgeID      EdgeID   `json:"edge_id"`
	PopDensity  *float64 `json:"pop_density,omitempty"`
	Streetlight *float64 `json:"streetlight,omitempty"`
	CrimeInArea *float64 `json:"crime_in_area,omitempty"`
}

func NewSafetyModifier(edgeID EdgeID) SafetyModifier {
	return SafetyModifier{EdgeID: edgeID}
}

func (m *SafetyModifier) Set(field ModifierField, value float64) {
	v := value
	switch field {
	case POP_DENSITY:
		m.PopDensity = &v
	case STREETLIGHT:
		m.Streetlight = &v
	case CRIME_IN_AREA:
		m.CrimeInArea = &v
	}
}

// SafetyEdgeCost. cache derived from base cost + modifier, never a source of truth.
type SafetyEdgeCost struct {
	EdgeID      EdgeID  `json:"edge_id"`
	CostSeconds float64 `json:"cost_seconds"`
}

// AccessibilityEdgeCost. the contributing hazard set is the source of truth, the cost is derived from it.
type AccessibilityEdgeCost struct {
	EdgeID                EdgeID     `json:"edge_id"`
	CostSeconds           float64    `json:"cost_seconds"`
	ContributingHazardIDs []HazardID `json:"contributing_hazard_ids"`
}

func (c AccessibilityEdgeCost) HasHazard(id HazardID) bool {
	for _, h := range c.ContributingHazardIDs {
		if h == id {
			return true
		}
	}
	return false
}
