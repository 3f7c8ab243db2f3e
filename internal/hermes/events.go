package hermes

import "time"

type EvaluationCompletedEvent struct {
	EvaluationID    string             `json:"evaluation_id"`
	Application     string             `json:"application"`
	Components      int                `json:"components"`
	FinalScore      float64            `json:"final_score"`
	Classification  string             `json:"classification"`
	DetailedScores  map[string]float64 `json:"detailed_scores"`
	RenewableSource string             `json:"renewable_source"`
	Timestamp       time.Time          `json:"timestamp"`
}

type EvaluationRejectedEvent struct {
	Application string    `json:"application"`
	Field       string    `json:"field"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}
