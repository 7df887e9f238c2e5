package costfunction

import (
	"fmt"
	"math"
	"strings"

	"github.com/groundtruth/saferoute/pkg"
	"github.com/groundtruth/saferoute/pkg/datastructure"
	"github.com/groundtruth/saferoute/pkg/util"
	"github.com/spf13/viper"
)

type DeepPotholeMode uint8

const (
	DEEP_POTHOLE_FLAT DeepPotholeMode = iota
	DEEP_POTHOLE_SEVERITY_SCALED
)

func ParseDeepPotholeMode(s string) (DeepPotholeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "flat":
		return DEEP_POTHOLE_FLAT, nil
	case "severity_scaled", "severity-scaled":
		return DEEP_POTHOLE_SEVERITY_SCALED, nil
	default:
		return DEEP_POTHOLE_FLAT, fmt.Errorf("unknown deep pothole mode %q", s)
	}
}

// DeepPotholeRule. extra pothole penalty when the depth inference flags a deep pothole.
type DeepPotholeRule struct {
	Mode        DeepPotholeMode
	Factor      float64
	AffectsWalk bool // potholes join the walk accessibility class
}

func DefaultDeepPotholeRule() DeepPotholeRule {
	return DeepPotholeRule{Mode: DEEP_POTHOLE_FLAT, Factor: 1.5}
}

func (r DeepPotholeRule) factorFor(severity float64) float64 {
	switch r.Mode {
	case DEEP_POTHOLE_SEVERITY_SCALED:
		return 1 + (r.Factor-1)*severity/100
	default:
		return r.Factor
	}
}

type HazardCostConfig struct {
	multipliers        map[datastructure.HazardType]float64
	effectRadiusMeters float64
	deepPothole        DeepPotholeRule
}

func NewHazardCostConfig(multipliers map[datastructure.HazardType]float64, effectRadiusMeters float64,
	deepPothole DeepPotholeRule) *HazardCostConfig {
	m := make(map[datastructure.HazardType]float64, len(multipliers))
	for k, v := range multipliers {
		m[k] = v
	}
	if effectRadiusMeters <= 0 {
		effectRadiusMeters = pkg.DEFAULT_HAZARD_EFFECT_RADIUS_METERS
	}
	return &HazardCostConfig{
		multipliers:        m,
		effectRadiusMeters: effectRadiusMeters,
		deepPothole:        deepPothole,
	}
}

func NewDefaultHazardCostConfig() *HazardCostConfig {
	return NewHazardCostConfig(nil, pkg.DEFAULT_HAZARD_EFFECT_RADIUS_METERS, DefaultDeepPotholeRule())
}

// LoadHazardCostConfig. reads hazard.cost.* keys, e.g. hazard.cost.multipliers.blocked-sidewalk.
func LoadHazardCostConfig() (*HazardCostConfig, error) {
	viper.SetDefault("hazard.cost.effect_radius_meters", pkg.DEFAULT_HAZARD_EFFECT_RADIUS_METERS)
	viper.SetDefault("hazard.cost.deep_pothole.mode", "flat")
	viper.SetDefault("hazard.cost.deep_pothole.factor", 1.5)
	viper.SetDefault("hazard.cost.deep_pothole.affects_walk", false)

	multipliers := make(map[datastructure.HazardType]float64)
	for _, ht := range []datastructure.HazardType{datastructure.POTHOLE, datastructure.ICE,
		datastructure.CRACKS, datastructure.BLOCKED_SIDEWALK} {
		label := ht.String()
		for _, key := range []string{strings.ReplaceAll(label, "_", "-"), label} {
			k := "hazard.cost.multipliers." + key
			if viper.IsSet(k) {
				multipliers[ht] = viper.GetFloat64(k)
				break
			}
		}
	}

	mode, err := ParseDeepPotholeMode(viper.GetString("hazard.cost.deep_pothole.mode"))
	if err != nil {
		return nil, err
	}

	return NewHazardCostConfig(multipliers, viper.GetFloat64("hazard.cost.effect_radius_meters"),
		DeepPotholeRule{
			Mode:        mode,
			Factor:      viper.GetFloat64("hazard.cost.deep_pothole.factor"),
			AffectsWalk: viper.GetBool("hazard.cost.deep_pothole.affects_walk"),
		}), nil
}

func (c *HazardCostConfig) GetEffectRadiusMeters() float64 {
	return c.effectRadiusMeters
}

func (c *HazardCostConfig) GetDeepPotholeRule() DeepPotholeRule {
	return c.deepPothole
}

// BaseMultiplier. configured value, else the hazard type default.
func (c *HazardCostConfig) BaseMultiplier(t datastructure.HazardType) float64 {
	if m, ok := c.multipliers[t]; ok {
		return m
	}
	return t.DefaultBaseMultiplier()
}

// IsAccessibilityHazard. cracks and blocked sidewalks, potholes too when the deep pothole rule affects walking.
func (c *HazardCostConfig) IsAccessibilityHazard(t datastructure.HazardType) bool {
	if t == datastructure.POTHOLE {
		return c.deepPothole.AffectsWalk
	}
	return t.IsAccessibilityHazard()
}

func (c *HazardCostConfig) AccessibilityHazardTypes() []datastructure.HazardType {
	types := datastructure.AccessibilityHazardTypes()
	if c.deepPothole.AffectsWalk {
		types = append(types, datastructure.POTHOLE)
	}
	return types
}

// HazardMultiplier. base[type] x (1 + clamp(severity, 0, 100)/100), scaled by the deep pothole rule.
func (c *HazardCostConfig) HazardMultiplier(h datastructure.Hazard) float64 {
	severity := util.Clamp(h.SeverityOrDefault(), 0, 100)
	m := c.BaseMultiplier(h.Type) * (1.0 + severity/100.0)
	if h.Type == datastructure.POTHOLE && h.Deep {
		m *= c.deepPothole.factorFor(severity)
	}
	return m
}

// AccessibilityAccumulator. multiplicative combination of hazard contributions on one edge.
// the cap bounds the combined multiplier, never an individual hazard.
type AccessibilityAccumulator struct {
	config     *HazardCostConfig
	multiplier float64
	hazardIDs  []datastructure.HazardID
}

func NewAccessibilityAccumulator(config *HazardCostConfig) *AccessibilityAccumulator {
	return &AccessibilityAccumulator{config: config, multiplier: 1.0}
}

func (a *AccessibilityAccumulator) Add(h datastructure.Hazard) {
	a.multiplier *= a.config.HazardMultiplier(h)
	a.hazardIDs = append(a.hazardIDs, h.ID)
}

func (a *AccessibilityAccumulator) RawMultiplier() float64 {
	return a.multiplier
}

func (a *AccessibilityAccumulator) Multiplier() float64 {
	return math.Min(a.multiplier, pkg.ACCESSIBILITY_MULTIPLIER_CAP)
}

func (a *AccessibilityAccumulator) HazardIDs() []datastructure.HazardID {
	return a.hazardIDs
}

func (a *AccessibilityAccumulator) Len() int {
	return len(a.hazardIDs)
}

func (a *AccessibilityAccumulator) Apply(baseCost float64) float64 {
	return math.Max(0, baseCost*a.Multiplier())
}
