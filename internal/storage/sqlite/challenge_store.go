package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quizforge/quizforge/internal/domain"
)

// ChallengeStore implements challenge persistence backed by SQLite.
// The full challenge is stored as a JSON payload next to the indexed
// columns so type-specific fields never need schema changes.
type ChallengeStore struct {
	db *DB
}

// NewChallengeStore creates a new SQLite-backed challenge store.
func NewChallengeStore(db *DB) *ChallengeStore {
	return &ChallengeStore{db: db}
}

// PutChallenge persists a challenge (insert or update).
func (s *ChallengeStore) PutChallenge(ctx context.Context, challenge *domain.Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO challenges (id, document_id, topic, type, difficulty, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id=excluded.document_id,
			topic=excluded.topic,
			type=excluded.type,
			difficulty=excluded.difficulty,
			payload=excluded.payload`,
		challenge.ID, challenge.DocumentID, challenge.Topic,
		string(challenge.Type), string(challenge.Difficulty),
		string(payload), challenge.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert challenge: %w", err)
	}
	return nil
}

// GetChallenge retrieves a challenge by ID.
func (s *ChallengeStore) GetChallenge(ctx context.Context, id string) (*domain.Challenge, error) {
	row := s.db.QueryRowContext(ctx, "SELECT payload FROM challenges WHERE id = ?", id)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("scan challenge: %w", err)
	}

	var challenge domain.Challenge
	if err := json.Unmarshal([]byte(payload), &challenge); err != nil {
		return nil, fmt.Errorf("unmarshal challenge: %w", err)
	}
	return &challenge, nil
}

// ListChallenges returns all challenges generated for a document in
// creation order.
func (s *ChallengeStore) ListChallenges(ctx context.Context, documentID string) ([]*domain.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM challenges
		WHERE document_id = ?
		ORDER BY created_at, id`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*domain.Challenge
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan challenge payload: %w", err)
		}
		var challenge domain.Challenge
		if err := json.Unmarshal([]byte(payload), &challenge); err != nil {
			return nil, fmt.Errorf("unmarshal challenge: %w", err)
		}
		challenges = append(challenges, &challenge)
	}
	return challenges, rows.Err()
}
