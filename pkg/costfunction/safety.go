package costfunction

import (
	"math"

	"github.com/groundtruth/saferoute/pkg/datastructure"
)

const (
	maxSafetyFactor         = 1.5
	popDensityFactorOffset  = 0.3
	streetlightFactorOffset = 0.5
)

// SafetyMultiplier. running product of the safety factors of one edge, unset fields stay neutral.
type SafetyMultiplier struct {
	factor float64
}

func NewSafetyMultiplier() *SafetyMultiplier {
	return &SafetyMultiplier{factor: 1.0}
}

// AddPopDensity. min(1.5, 2(1-p) + 0.3); busy streets go below 1.
func (s *SafetyMultiplier) AddPopDensity(popDensity float64) {
	s.factor *= math.Min(maxSafetyFactor, 2*(1-popDensity)+popDensityFactorOffset)
}

// AddStreetlight. min(1.5, 2(1-s) + 0.5); lit streets go below 1.
func (s *SafetyMultiplier) AddStreetlight(streetlight float64) {
	s.factor *= math.Min(maxSafetyFactor, 2*(1-streetlight)+streetlightFactorOffset)
}

// AddCrime. 1 + crime, zero crime is neutral.
func (s *SafetyMultiplier) AddCrime(crime float64) {
	if crime > 0 {
		s.factor *= 1.0 + crime
	}
}

func (s *SafetyMultiplier) Value() float64 {
	return s.factor
}

// Apply. max(0, base x factor), uncapped.
func (s *SafetyMultiplier) Apply(baseCost float64) float64 {
	return math.Max(0, baseCost*s.factor)
}

// SafetyMultiplierOf. nil modifier is neutral.
func SafetyMultiplierOf(m *datastructure.SafetyModifier) *SafetyMultiplier {
	acc := NewSafetyMultiplier()
	if m == nil {
		return acc
	}
	if m.PopDensity != nil {
		acc.AddPopDensity(*m.PopDensity)
	}
	if m.Streetlight != nil {
		acc.AddStreetlight(*m.Streetlight)
	}
	if m.CrimeInArea != nil {
		acc.AddCrime(*m.CrimeInArea)
	}
	return acc
}

func SafetyCost(baseCost float64, m *datastructure.SafetyModifier) float64 {
	return SafetyMultiplierOf(m).Apply(baseCost)
}
