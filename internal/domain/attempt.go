package domain

import "time"

// MaxAttempts is the fixed per-challenge attempt budget
const MaxAttempts = 3

// AttemptStatus represents the learner's progress on one challenge
type AttemptStatus string

const (
	AttemptUnsolved AttemptStatus = "unsolved"
	AttemptSolved   AttemptStatus = "solved"
)

// AttemptState tracks submissions against a single challenge.
// Attempts never resets and BestScore never decreases.
type AttemptState struct {
	ChallengeID    string        `json:"challenge_id"`
	Status         AttemptStatus `json:"status"`
	Attempts       int           `json:"attempts"`
	MaxAttempts    int           `json:"max_attempts"`
	BestScore      int           `json:"best_score"`
	LastSubmission string        `json:"last_submission,omitempty"`
	SolvedAt       *time.Time    `json:"solved_at,omitempty"`
}

// NewAttemptState returns the initial state for a challenge
func NewAttemptState(challengeID string) *AttemptState {
	return &AttemptState{
		ChallengeID: challengeID,
		Status:      AttemptUnsolved,
		MaxAttempts: MaxAttempts,
	}
}

// Solved reports whether the challenge has been solved
func (a *AttemptState) Solved() bool {
	return a.Status == AttemptSolved
}

// CanSubmit reports whether another submission is allowed.
// A solved challenge may still be queried and re-submitted.
func (a *AttemptState) CanSubmit() bool {
	return a.Attempts < a.MaxAttempts || a.Solved()
}

// RecordSubmission increments the attempt count and stores the raw answer
func (a *AttemptState) RecordSubmission(answer string) {
	a.Attempts++
	a.LastSubmission = answer
}

// MarkSolved transitions to solved, stamping SolvedAt once and
// keeping BestScore monotonically non-decreasing.
func (a *AttemptState) MarkSolved(score int, now time.Time) {
	a.Status = AttemptSolved
	if a.SolvedAt == nil {
		t := now
		a.SolvedAt = &t
	}
	if score > a.BestScore {
		a.BestScore = score
	}
}
