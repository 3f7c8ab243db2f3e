package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
)

// RenewableSource records where an evaluation's renewable share came from.
type RenewableSource string

const (
	RenewableFromRequest RenewableSource = "request"
	RenewableFromLive    RenewableSource = "live"
	RenewableFromDefault RenewableSource = "default"
)

// Evaluation is one entry of the append-only evaluation history.
type Evaluation struct {
	ID          uuid.UUID `json:"id"`
	Application string    `json:"application"`

	// Input, after validation and defaults.
	Request scoring.EvaluationRequest `json:"request"`

	// Result
	FinalScore     float64                `json:"final_score"`
	Classification scoring.Classification `json:"classification"`
	DetailedScores map[string]float64     `json:"detailed_scores"`

	RenewableSource RenewableSource `json:"renewable_source"`
	Requester       string          `json:"requester,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Result returns the evaluation's result value.
func (e *Evaluation) Result() scoring.EvaluationResult {
	return scoring.EvaluationResult{
		FinalScore:     e.FinalScore,
		Classification: e.Classification,
		DetailedScores: e.DetailedScores,
	}
}

type EvaluationFilter struct {
	Application    string
	Classification *scoring.Classification
	Limit          int
	Offset         int
}

type EvaluationStats struct {
	Total            int                            `json:"total"`
	ByClassification map[scoring.Classification]int `json:"by_classification"`
	ByApplication    map[string]int                 `json:"by_application"`
	AvgFinalScore    float64                        `json:"avg_final_score"`
}

// Store is the evaluation history. Entries are never updated or deleted.
type Store interface {
	AppendEvaluation(ctx context.Context, e *Evaluation) error
	GetEvaluation(ctx context.Context, id uuid.UUID) (*Evaluation, error)
	ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]*Evaluation, error)
	GetStats(ctx context.Context) (*EvaluationStats, error)
	Close() error
}

const defaultListLimit = 100
