package scoring

import (
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
)

// EngineConfig holds the calibration constants of the engine.
type EngineConfig struct {
	Weights WeightSet
	// NormalizeWeights divides the weighted sum by the weight total. When
	// false the missing share of 1.0 acts as a zero-weighted term.
	NormalizeWeights bool
	EfficiencyK      float64
	Defaults         Defaults
}

// DefaultEngineConfig returns the documented calibration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Weights:          DefaultWeights(),
		NormalizeWeights: true,
		EfficiencyK:      DefaultEfficiencyK,
		Defaults:         Defaults{RenewablePercentage: DefaultRenewablePercentage},
	}
}

// Validate reports the first invalid calibration constant.
func (c EngineConfig) Validate() error {
	if err := c.Weights.Validate(c.NormalizeWeights); err != nil {
		return err
	}
	if math.IsNaN(c.EfficiencyK) || math.IsInf(c.EfficiencyK, 0) || c.EfficiencyK <= 0 {
		return &ConfigurationError{Field: "efficiency_k", Reason: "must be a positive number"}
	}
	if !percentage(c.Defaults.RenewablePercentage) {
		return &ConfigurationError{Field: "default_renewable_percentage", Reason: "must be within [0, 100]"}
	}
	for app, v := range c.Defaults.ApplicationRenewable {
		if !percentage(v) {
			return &ConfigurationError{Field: "application_renewable." + app, Reason: "must be within [0, 100]"}
		}
	}
	return nil
}

func percentage(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}

// Engine is the sustainability scoring engine. It holds only immutable
// calibration and is safe for concurrent use.
type Engine struct {
	weights     WeightSet
	normalize   bool
	efficiencyK float64
	defaults    Defaults
	calculators []Calculator
	logger      *slog.Logger
}

// NewEngine validates cfg and builds an Engine. An invalid configuration
// returns a *ConfigurationError.
func NewEngine(cfg EngineConfig, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	defaults := Defaults{
		RenewablePercentage:  cfg.Defaults.RenewablePercentage,
		ApplicationRenewable: make(map[string]float64, len(cfg.Defaults.ApplicationRenewable)),
	}
	for app, v := range cfg.Defaults.ApplicationRenewable {
		defaults.ApplicationRenewable[normalizeApplication(app)] = v
	}

	return &Engine{
		weights:     cfg.Weights,
		normalize:   cfg.NormalizeWeights,
		efficiencyK: cfg.EfficiencyK,
		defaults:    defaults,
		// Same order as subScoreNames.
		calculators: []Calculator{
			ComponentEfficiency(cfg.EfficiencyK),
			EnergySource,
			Reusability,
			Waste,
		},
		logger: logger,
	}, nil
}

// Config returns the calibration the engine was built with.
func (e *Engine) Config() EngineConfig {
	return EngineConfig{
		Weights:          e.weights,
		NormalizeWeights: e.normalize,
		EfficiencyK:      e.efficiencyK,
		Defaults:         e.defaults,
	}
}

// Defaults returns the defaults applied to omitted request fields.
func (e *Engine) Defaults() Defaults {
	return e.defaults
}

// Evaluate validates raw and computes its score. Invalid input returns a
// *ValidationError and no result.
func (e *Engine) Evaluate(raw RawRequest) (EvaluationResult, error) {
	exp, err := e.Explain(raw)
	if err != nil {
		return EvaluationResult{}, err
	}
	return exp.Result, nil
}

// Explain is Evaluate plus the per-sub-score breakdown.
func (e *Engine) Explain(raw RawRequest) (Explanation, error) {
	req, err := Validate(raw, e.defaults)
	if err != nil {
		e.logger.Debug("evaluation rejected", "application", raw.Application, "error", err)
		return Explanation{}, err
	}
	return e.Score(&req), nil
}

// Score runs the calculators over an already validated request.
func (e *Engine) Score(req *EvaluationRequest) Explanation {
	scores := make([]SubScore, len(e.calculators))

	// Calculators are pure and write to distinct slots.
	var g errgroup.Group
	for i, calc := range e.calculators {
		i, calc := i, calc
		g.Go(func() error {
			scores[i] = calc(req)
			return nil
		})
	}
	_ = g.Wait()

	final, weightSum := e.aggregate(scores)

	detailed := make(map[string]float64, len(scores))
	for _, s := range scores {
		detailed[s.Name] = round2(s.Score)
	}

	result := EvaluationResult{
		FinalScore:     final,
		Classification: Classify(final),
		DetailedScores: detailed,
	}

	e.logger.Debug("evaluation scored",
		"application", req.Application,
		"components", len(req.Components),
		"final_score", result.FinalScore,
		"classification", result.Classification,
	)

	return Explanation{
		Result:     result,
		Request:    *req,
		SubScores:  scores,
		WeightSum:  weightSum,
		Normalized: e.normalize,
	}
}

// aggregate applies weights in canonical order so the floating-point sum does
// not depend on calculator completion order.
func (e *Engine) aggregate(scores []SubScore) (float64, float64) {
	weights := e.weights.asList()
	weightSum := e.weights.Sum()

	var total float64
	for i := range scores {
		scores[i].Weight = weights[i]
		scores[i].Weighted = scores[i].Score * weights[i]
		total += scores[i].Weighted
	}
	if e.normalize {
		total /= weightSum
	}
	return round2(clamp(total, 0, 100)), weightSum
}

// Classify maps a final score to its label. Lower bounds are inclusive.
func Classify(score float64) Classification {
	switch {
	case score >= 75:
		return ClassEcologic
	case score >= 50:
		return ClassModerate
	default:
		return ClassNotEcologic
	}
}
