package osmparser

import (
	"strconv"
	"strings"

	"github.com/paulmach/osm"
)

type NodeType uint8

const (
	END_NODE NodeType = iota
	BETWEEN_NODE
	JUNCTION_NODE
)

const (
	DEFAULT_DRIVE_SPEED_KMH = 30.0
	MPH_TO_KMH              = 1.60934
	KNOTS_TO_KMH            = 1.852
)

var (
	// https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
	drivableHighway = map[string]struct{}{
		"motorway":       {},
		"motorway_link":  {},
		"trunk":          {},
		"trunk_link":     {},
		"primary":        {},
		"primary_link":   {},
		"secondary":      {},
		"secondary_link": {},
		"tertiary":       {},
		"tertiary_link":  {},
		"residential":    {},
		"service":        {},
		"road":           {},
		"unclassified":   {},
		"living_street":  {},
		"motorroad":      {},
	}

	walkableHighway = map[string]struct{}{
		"footway":        {},
		"pedestrian":     {},
		"path":           {},
		"steps":          {},
		"corridor":       {},
		"crossing":       {},
		"track":          {},
		"living_street":  {},
		"residential":    {},
		"service":        {},
		"unclassified":   {},
		"road":           {},
		"tertiary":       {},
		"tertiary_link":  {},
		"secondary":      {},
		"secondary_link": {},
		"primary":        {},
		"primary_link":   {},
	}

	// https://wiki.openstreetmap.org/wiki/Key:barrier
	// an access=no barrier node blocks cars but not pedestrians.
	acceptedBarrierType = map[string]struct{}{
		"bollard":        {},
		"swing_gate":     {},
		"jersey_barrier": {},
		"lift_gate":      {},
		"block":          {},
		"gate":           {},
	}
)

// wayClass. what a single osm way contributes to the walk and drive graphs.
type wayClass struct {
	walk     bool
	drive    bool
	forward  bool // drive direction follows node order
	backward bool // drive direction against node order
	speedKmh float64
}

func (c wayClass) accepted() bool {
	return c.walk || c.drive
}

func classifyWay(tags osm.Tags) wayClass {
	highway := tags.Find("highway")
	c := wayClass{}

	if _, ok := drivableHighway[highway]; ok {
		c.drive = !isRestricted(tags.Find("access")) && !isRestricted(tags.Find("motor_vehicle"))
	}

	_, walkable := walkableHighway[highway]
	foot := tags.Find("foot")
	switch {
	case isRestricted(foot):
		c.walk = false
	case foot == "yes" || foot == "designated":
		c.walk = highway != "motorway" && highway != "motorway_link"
	default:
		c.walk = walkable && !isRestricted(tags.Find("access"))
	}

	if !c.drive {
		return c
	}

	c.forward, c.backward = true, true
	oneway := tags.Find("oneway")
	vf, mvf, vb, mvb := getReversedOneWay(tags)
	switch {
	case oneway == "-1" || vf || mvf:
		c.forward = false
	case oneway == "yes" || oneway == "true" || oneway == "1" || vb || mvb ||
		tags.Find("junction") == "roundabout" || highway == "motorway":
		c.backward = false
	}

	c.speedKmh = parseMaxSpeed(tags.Find("maxspeed"))
	if c.speedKmh <= 0 {
		c.speedKmh = roadTypeMaxSpeed(highway)
	}
	return c
}

func isRestricted(value string) bool {
	return value == "no" || value == "private"
}

func getReversedOneWay(tags osm.Tags) (bool, bool, bool, bool) {
	vehicleForward := tags.Find("vehicle:forward")
	motorVehicleForward := tags.Find("motor_vehicle:forward")
	vehicleBackward := tags.Find("vehicle:backward")
	motorVehicleBackward := tags.Find("motor_vehicle:backward")
	return isRestricted(vehicleForward), isRestricted(motorVehicleForward), isRestricted(vehicleBackward), isRestricted(motorVehicleBackward)
}

// parseMaxSpeed. km/h, 0 when the tag is missing or has no usable value.
func parseMaxSpeed(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	factor := 1.0
	switch {
	case strings.HasSuffix(value, "mph"):
		factor = MPH_TO_KMH
		value = strings.TrimSpace(strings.TrimSuffix(value, "mph"))
	case strings.HasSuffix(value, "knots"):
		factor = KNOTS_TO_KMH
		value = strings.TrimSpace(strings.TrimSuffix(value, "knots"))
	case strings.HasSuffix(value, "km/h"):
		value = strings.TrimSpace(strings.TrimSuffix(value, "km/h"))
	}
	speed, err := strconv.ParseFloat(value, 64)
	if err != nil || speed <= 0 {
		return 0
	}
	return speed * factor
}

func roadTypeMaxSpeed(roadType string) float64 {
	switch roadType {
	case "motorway":
		return 100
	case "trunk":
		return 70
	case "primary":
		return 65
	case "secondary":
		return 60
	case "tertiary":
		return 50
	case "unclassified":
		return 40
	case "residential":
		return 30
	case "service":
		return 20
	case "motorway_link":
		return 70
	case "trunk_link":
		return 65
	case "primary_link":
		return 60
	case "secondary_link":
		return 50
	case "tertiary_link":
		return 40
	case "living_street":
		return 5
	case "road":
		return 20
	case "motorroad":
		return 90
	default:
		return DEFAULT_DRIVE_SPEED_KMH
	}
}
