package storage

import (
	"context"

	"github.com/quizforge/quizforge/internal/domain"
)

// DocumentStore persists uploaded documents
type DocumentStore interface {
	PutDocument(ctx context.Context, doc *domain.Document) error
	// GetDocument returns domain.ErrDocumentNotFound for unknown ids
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
}

// ChallengeStore persists generated challenges
type ChallengeStore interface {
	PutChallenge(ctx context.Context, challenge *domain.Challenge) error
	// GetChallenge returns domain.ErrChallengeNotFound for unknown ids
	GetChallenge(ctx context.Context, id string) (*domain.Challenge, error)
	ListChallenges(ctx context.Context, documentID string) ([]*domain.Challenge, error)
}

// AttemptStore persists attempt states keyed by challenge id
type AttemptStore interface {
	// GetAttempt returns domain.ErrAttemptNotFound for untried challenges
	GetAttempt(ctx context.Context, challengeID string) (*domain.AttemptState, error)
	PutAttempt(ctx context.Context, state *domain.AttemptState) error
}

// ProgressStore persists pollable job progress records. PutProgress
// replaces the whole record.
type ProgressStore interface {
	PutProgress(ctx context.Context, progress *domain.Progress) error
	// GetProgress returns domain.ErrJobNotFound for unknown documents
	GetProgress(ctx context.Context, documentID string) (*domain.Progress, error)
}

// Store bundles all persistence concerns behind one handle
type Store interface {
	DocumentStore
	ChallengeStore
	AttemptStore
	ProgressStore
}
