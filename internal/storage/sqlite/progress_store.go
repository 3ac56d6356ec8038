package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quizforge/quizforge/internal/domain"
)

// ProgressStore implements job progress persistence backed by SQLite.
// PutProgress replaces the whole record so pollers never observe a
// partially updated one.
type ProgressStore struct {
	db *DB
}

// NewProgressStore creates a new SQLite-backed progress store.
func NewProgressStore(db *DB) *ProgressStore {
	return &ProgressStore{db: db}
}

// PutProgress replaces the progress record for a document.
func (s *ProgressStore) PutProgress(ctx context.Context, progress *domain.Progress) error {
	topics, err := json.Marshal(progress.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}
	challengeIDs, err := json.Marshal(progress.ChallengeIDs)
	if err != nil {
		return fmt.Errorf("marshal challenge ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO progress (document_id, status, percent, message, topics, challenge_ids, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			status=excluded.status,
			percent=excluded.percent,
			message=excluded.message,
			topics=excluded.topics,
			challenge_ids=excluded.challenge_ids,
			updated_at=excluded.updated_at`,
		progress.DocumentID, string(progress.Status), progress.Percent,
		progress.Message, string(topics), string(challengeIDs), progress.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

// GetProgress retrieves the progress record for a document.
func (s *ProgressStore) GetProgress(ctx context.Context, documentID string) (*domain.Progress, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, status, percent, message, topics, challenge_ids, updated_at
		FROM progress WHERE document_id = ?`, documentID)

	var progress domain.Progress
	var status, topicsJSON, idsJSON string
	err := row.Scan(&progress.DocumentID, &status, &progress.Percent,
		&progress.Message, &topicsJSON, &idsJSON, &progress.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("scan progress: %w", err)
	}
	progress.Status = domain.JobStatus(status)

	if err := json.Unmarshal([]byte(topicsJSON), &progress.Topics); err != nil {
		return nil, fmt.Errorf("unmarshal topics: %w", err)
	}
	if err := json.Unmarshal([]byte(idsJSON), &progress.ChallengeIDs); err != nil {
		return nil, fmt.Errorf("unmarshal challenge ids: %w", err)
	}
	return &progress, nil
}
