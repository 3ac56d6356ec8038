package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quizforge/quizforge/internal/domain"
)

// AttemptStore implements attempt state persistence backed by SQLite.
type AttemptStore struct {
	db *DB
}

// NewAttemptStore creates a new SQLite-backed attempt store.
func NewAttemptStore(db *DB) *AttemptStore {
	return &AttemptStore{db: db}
}

// PutAttempt persists an attempt state (insert or update).
func (s *AttemptStore) PutAttempt(ctx context.Context, state *domain.AttemptState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (challenge_id, status, attempts, max_attempts, best_score, last_submission, solved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(challenge_id) DO UPDATE SET
			status=excluded.status,
			attempts=excluded.attempts,
			max_attempts=excluded.max_attempts,
			best_score=excluded.best_score,
			last_submission=excluded.last_submission,
			solved_at=excluded.solved_at`,
		state.ChallengeID, string(state.Status), state.Attempts,
		state.MaxAttempts, state.BestScore, state.LastSubmission, state.SolvedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert attempt: %w", err)
	}
	return nil
}

// GetAttempt retrieves an attempt state by challenge ID.
func (s *AttemptStore) GetAttempt(ctx context.Context, challengeID string) (*domain.AttemptState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT challenge_id, status, attempts, max_attempts, best_score, last_submission, solved_at
		FROM attempts WHERE challenge_id = ?`, challengeID)

	var state domain.AttemptState
	var status string
	err := row.Scan(&state.ChallengeID, &status, &state.Attempts,
		&state.MaxAttempts, &state.BestScore, &state.LastSubmission, &state.SolvedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAttemptNotFound
		}
		return nil, fmt.Errorf("scan attempt: %w", err)
	}
	state.Status = domain.AttemptStatus(status)
	return &state, nil
}
