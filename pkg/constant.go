package pkg

import (
	"fmt"
	"strings"
)

const (
	INF_WEIGHT float64 = 1e15

	// a popped queue entry whose g-score exceeds the best known g-score by more than this is stale
	STALE_EPSILON = 1e-9

	DEFAULT_MAX_SPEED_MPS = 2.0 // walking pace, keeps the haversine heuristic admissible for walk graphs

	EARTH_RADIUS_METERS = 6_371_000.0

	MIN_SEARCH_RADIUS_METERS     = 2_000.0
	SEARCH_RADIUS_MULTIPLIER     = 1.2
	ACCESSIBILITY_MULTIPLIER_CAP = 10.0

	DEFAULT_HAZARD_EFFECT_RADIUS_METERS = 50.0
	DEFAULT_HAZARD_SEVERITY             = 50.0
	DEFAULT_BULK_RADIUS_METERS          = 100.0

	WALK_SPEED_MPS = 1.4
)

// RADIUS_ATTEMPT_MULTIPLIERS. subgraph extraction is retried at radius, 2x radius, 4x radius.
var RADIUS_ATTEMPT_MULTIPLIERS = [...]float64{1, 2, 4}

// enum of travel_mode
type TravelMode uint8

const (
	WALK TravelMode = iota
	DRIVE
)

func (m TravelMode) String() string {
	switch m {
	case WALK:
		return "walk"
	case DRIVE:
		return "drive"
	default:
		return "unknown"
	}
}

func ParseTravelMode(s string) (TravelMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "walk":
		return WALK, true
	case "drive":
		return DRIVE, true
	default:
		return 0, false
	}
}

func (m TravelMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *TravelMode) UnmarshalText(text []byte) error {
	parsed, ok := ParseTravelMode(string(text))
	if !ok {
		return fmt.Errorf("unknown travel mode %q", string(text))
	}
	*m = parsed
	return nil
}

const (
	DEBUG = false
)
