package scoring

import (
	"fmt"
	"math"
)

// DefaultEfficiencyK is the component efficiency penalty per kWh/day of mean
// consumption. At 5, a twin averaging 3 kWh/day scores 85.
const DefaultEfficiencyK = 5.0

// WastePenaltyPerKg is the waste score penalty per kilogram generated.
const WastePenaltyPerKg = 10.0

// Calculator computes one named sub-score from a validated request.
type Calculator func(req *EvaluationRequest) SubScore

// --- Individual sub-score calculators ---

// ComponentEfficiency scores mean daily consumption: 100 - k*mean, clamped.
// An empty component list is the vacuous best case.
func ComponentEfficiency(k float64) Calculator {
	return func(req *EvaluationRequest) SubScore {
		if len(req.Components) == 0 {
			return SubScore{Name: ScoreComponentEfficiency, Score: 100, Reason: "no components"}
		}
		var total float64
		for _, c := range req.Components {
			total += c.Consumption
		}
		mean := total / float64(len(req.Components))
		score := clamp(100-k*mean, 0, 100)
		return SubScore{
			Name:   ScoreComponentEfficiency,
			Score:  score,
			Reason: fmt.Sprintf("mean consumption %.3f kWh/day", mean),
		}
	}
}

// EnergySource passes the renewable share through as the score.
func EnergySource(req *EvaluationRequest) SubScore {
	return SubScore{
		Name:   ScoreEnergySource,
		Score:  clamp(req.RenewablePercentage, 0, 100),
		Reason: fmt.Sprintf("%.1f%% renewable", req.RenewablePercentage),
	}
}

// Reusability returns 100 for reusable twins and 0 otherwise.
func Reusability(req *EvaluationRequest) SubScore {
	if req.Reusable {
		return SubScore{Name: ScoreReusability, Score: 100, Reason: "reusable"}
	}
	return SubScore{Name: ScoreReusability, Score: 0, Reason: "not declared reusable"}
}

// Waste loses 10 points per kilogram of waste, clamped.
func Waste(req *EvaluationRequest) SubScore {
	return SubScore{
		Name:   ScoreWaste,
		Score:  clamp(100-WastePenaltyPerKg*req.WasteKg, 0, 100),
		Reason: fmt.Sprintf("%.2f kg waste", req.WasteKg),
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
