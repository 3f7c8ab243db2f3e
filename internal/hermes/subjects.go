package hermes

const (
	SubjectEvaluationRejected = "twin.evaluation.rejected"

	// SubjectAll matches every evaluation event.
	SubjectAll = "twin.evaluation.>"

	StreamName   = "TWINSCORE_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectEvaluationCompleted(evaluationID string) string {
	return "twin.evaluation." + evaluationID + ".completed"
}
