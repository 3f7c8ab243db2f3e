package scoring

import (
	"fmt"
	"math"
)

// WeightSet defines the relative importance of each sub-score.
// The documented set sums to 0.85; see Engine for how the remainder is handled.
type WeightSet struct {
	ComponentEfficiency float64
	EnergySource        float64
	Reusability         float64
	Waste               float64
}

// DefaultWeights returns the documented weight distribution.
func DefaultWeights() WeightSet {
	return WeightSet{
		ComponentEfficiency: 0.20,
		EnergySource:        0.25,
		Reusability:         0.20,
		Waste:               0.20,
	}
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.ComponentEfficiency + w.EnergySource + w.Reusability + w.Waste
}

// Validate checks that every weight is finite and non-negative and that the
// sum is positive and finite. Without normalization the sum must also not
// exceed 1.0.
func (w WeightSet) Validate(normalize bool) error {
	for i, v := range w.asList() {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return &ConfigurationError{Field: "weights." + subScoreNames[i], Reason: fmt.Sprintf("invalid weight %f", v)}
		}
	}
	sum := w.Sum()
	if sum <= 0 {
		return &ConfigurationError{Field: "weights", Reason: "weights sum to zero"}
	}
	// Weighted sub-scores reach 100 times the weight.
	if math.IsInf(sum, 0) || math.IsInf(sum*100, 0) {
		return &ConfigurationError{Field: "weights", Reason: "weights sum is not finite"}
	}
	if !normalize && sum > 1.0+0.001 {
		return &ConfigurationError{Field: "weights", Reason: fmt.Sprintf("weights sum to %.4f, must not exceed 1.0", sum)}
	}
	return nil
}

// subScoreNames is the canonical calculator order.
var subScoreNames = []string{ScoreComponentEfficiency, ScoreEnergySource, ScoreReusability, ScoreWaste}

// asList returns weights in canonical order.
func (w WeightSet) asList() []float64 {
	return []float64{w.ComponentEfficiency, w.EnergySource, w.Reusability, w.Waste}
}
