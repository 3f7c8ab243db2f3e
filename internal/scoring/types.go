package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sub-score names as they appear in detailed_scores.
const (
	ScoreComponentEfficiency = "component_efficiency"
	ScoreEnergySource        = "energy_source"
	ScoreReusability         = "reusability"
	ScoreWaste               = "waste"
)

// Classification is the three-tier sustainability label.
type Classification string

const (
	ClassEcologic    Classification = "Ecologic"
	ClassModerate    Classification = "Moderate"
	ClassNotEcologic Classification = "Not Ecologic"
)

// Quantity is a numeric form field. It keeps the raw JSON so that absent,
// null, numeric and numeric-string values can be told apart at validation time.
type Quantity struct {
	raw json.RawMessage
}

// Q returns a Quantity holding v.
func Q(v float64) Quantity {
	return Quantity{raw: json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))}
}

// IsSet reports whether the field was supplied with a non-null value.
func (q Quantity) IsSet() bool {
	return len(q.raw) > 0 && !bytes.Equal(q.raw, []byte("null"))
}

// Float parses the quantity. ok is false for absent, null, unparseable,
// NaN and infinite values.
func (q Quantity) Float() (float64, bool) {
	if !q.IsSet() {
		return 0, false
	}
	s := string(q.raw)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(q.raw, &s); err != nil {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if len(q.raw) == 0 {
		return []byte("null"), nil
	}
	return q.raw, nil
}

func (q *Quantity) UnmarshalJSON(b []byte) error {
	q.raw = append(q.raw[:0], b...)
	return nil
}

// RawComponent is one component as submitted by the form client.
type RawComponent struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Consumption Quantity `json:"consumption"`
	Lifespan    Quantity `json:"lifespan"`
	WasteKg     Quantity `json:"waste_kg,omitempty"`
}

// RawRequest is the unvalidated evaluation payload.
type RawRequest struct {
	Application         string         `json:"application"`
	Components          []RawComponent `json:"components"`
	RenewablePercentage Quantity       `json:"renewable_percentage,omitempty"`
	Reusable            *bool          `json:"reusable,omitempty"`
	WasteKg             Quantity       `json:"waste_kg,omitempty"`
}

// Component is one validated physical or virtual element of a twin.
type Component struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Consumption float64 `json:"consumption"` // kWh/day
	Lifespan    float64 `json:"lifespan"`    // years
	WasteKg     float64 `json:"waste_kg"`
}

// EvaluationRequest is a validated request with all defaults applied.
type EvaluationRequest struct {
	Application         string      `json:"application"`
	Components          []Component `json:"components"`
	RenewablePercentage float64     `json:"renewable_percentage"`
	Reusable            bool        `json:"reusable"`
	WasteKg             float64     `json:"waste_kg"` // total, request plus components
}

// EvaluationResult is the outcome of one evaluation.
type EvaluationResult struct {
	FinalScore     float64            `json:"final_score"`
	Classification Classification     `json:"classification"`
	DetailedScores map[string]float64 `json:"detailed_scores"`
}

// SubScore captures one calculator's contribution to the final score.
type SubScore struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
	Reason   string  `json:"reason"`
}

// Explanation is a result together with the breakdown that produced it.
type Explanation struct {
	Result     EvaluationResult  `json:"result"`
	Request    EvaluationRequest `json:"request"`
	SubScores  []SubScore        `json:"sub_scores"`
	WeightSum  float64           `json:"weight_sum"`
	Normalized bool              `json:"normalized"`
}

// Validation failure reasons.
const (
	ReasonMissingOrNaN  = "missing_or_nan"
	ReasonNegativeValue = "negative_value"
)

// ValidationError reports a malformed or out-of-domain input field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports invalid engine constants. It is fatal at startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("scoring config %s: %s", e.Field, e.Reason)
}
