package domain

import (
	"testing"
	"time"
)

func TestNewAttemptState(t *testing.T) {
	a := NewAttemptState("ch-1")

	if a.ChallengeID != "ch-1" {
		t.Errorf("ChallengeID = %q, want %q", a.ChallengeID, "ch-1")
	}
	if a.Status != AttemptUnsolved {
		t.Errorf("Status = %q, want %q", a.Status, AttemptUnsolved)
	}
	if a.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0", a.Attempts)
	}
	if a.MaxAttempts != MaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", a.MaxAttempts, MaxAttempts)
	}
	if a.SolvedAt != nil {
		t.Error("SolvedAt should be unset for a fresh state")
	}
}

func TestAttemptStateCanSubmit(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		status   AttemptStatus
		want     bool
	}{
		{"fresh", 0, AttemptUnsolved, true},
		{"one remaining", 2, AttemptUnsolved, true},
		{"exhausted unsolved", 3, AttemptUnsolved, false},
		{"exhausted but solved", 3, AttemptSolved, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAttemptState("ch-1")
			a.Attempts = tt.attempts
			a.Status = tt.status
			if got := a.CanSubmit(); got != tt.want {
				t.Errorf("CanSubmit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttemptStateMarkSolved(t *testing.T) {
	a := NewAttemptState("ch-1")
	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	a.MarkSolved(80, first)
	if !a.Solved() {
		t.Fatal("expected solved after MarkSolved")
	}
	if a.BestScore != 80 {
		t.Errorf("BestScore = %d, want 80", a.BestScore)
	}
	if a.SolvedAt == nil || !a.SolvedAt.Equal(first) {
		t.Errorf("SolvedAt = %v, want %v", a.SolvedAt, first)
	}

	// Best score never decreases and solved_at is never re-stamped.
	a.MarkSolved(60, later)
	if a.BestScore != 80 {
		t.Errorf("BestScore after lower score = %d, want 80", a.BestScore)
	}
	if !a.SolvedAt.Equal(first) {
		t.Errorf("SolvedAt re-stamped to %v, want %v", a.SolvedAt, first)
	}

	a.MarkSolved(100, later)
	if a.BestScore != 100 {
		t.Errorf("BestScore after higher score = %d, want 100", a.BestScore)
	}
}

func TestAttemptStateRecordSubmission(t *testing.T) {
	a := NewAttemptState("ch-1")
	a.RecordSubmission("2")

	if a.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", a.Attempts)
	}
	if a.LastSubmission != "2" {
		t.Errorf("LastSubmission = %q, want %q", a.LastSubmission, "2")
	}
}
