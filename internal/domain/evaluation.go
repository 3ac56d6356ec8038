package domain

// EvaluationStatus classifies the outcome of grading one submission
type EvaluationStatus string

const (
	EvaluationCorrect   EvaluationStatus = "correct"
	EvaluationIncorrect EvaluationStatus = "incorrect"
	EvaluationError     EvaluationStatus = "error"
)

// EvaluationResult is the ephemeral outcome of grading a submission.
// It is returned to the caller and folded into the attempt state but
// never persisted on its own.
type EvaluationResult struct {
	Status   EvaluationStatus `json:"status"`
	Score    int              `json:"score"`
	Feedback string           `json:"feedback"`
	Cases    []CaseResult     `json:"cases,omitempty"`
}

// Correct reports whether the submission was accepted
func (r *EvaluationResult) Correct() bool {
	return r.Status == EvaluationCorrect
}

// CaseResult is the per-test-case breakdown for coding answers
type CaseResult struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
	Error    string `json:"error,omitempty"`
}
