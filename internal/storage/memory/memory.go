// Package memory provides in-memory store implementations. They back
// tests and the default zero-config deployment; nothing survives a
// restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/quizforge/quizforge/internal/domain"
	"github.com/quizforge/quizforge/internal/storage"
)

// Store implements every storage interface over in-process maps.
// All values are copied on the way in and out so callers can never
// mutate shared state.
type Store struct {
	mu         sync.RWMutex
	documents  map[string]*domain.Document
	challenges map[string]*domain.Challenge
	attempts   map[string]*domain.AttemptState
	progress   map[string]*domain.Progress
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents:  make(map[string]*domain.Document),
		challenges: make(map[string]*domain.Challenge),
		attempts:   make(map[string]*domain.AttemptState),
		progress:   make(map[string]*domain.Progress),
	}
}

// PutDocument stores a copy of the document.
func (s *Store) PutDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = copyDocument(doc)
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return copyDocument(doc), nil
}

// PutChallenge stores a copy of the challenge.
func (s *Store) PutChallenge(_ context.Context, challenge *domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.ID] = copyChallenge(challenge)
	return nil
}

// GetChallenge retrieves a challenge by ID.
func (s *Store) GetChallenge(_ context.Context, id string) (*domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[id]
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	return copyChallenge(challenge), nil
}

// ListChallenges returns all challenges for a document in creation order.
func (s *Store) ListChallenges(_ context.Context, documentID string) ([]*domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var challenges []*domain.Challenge
	for _, challenge := range s.challenges {
		if challenge.DocumentID == documentID {
			challenges = append(challenges, copyChallenge(challenge))
		}
	}
	sort.Slice(challenges, func(i, j int) bool {
		if !challenges[i].CreatedAt.Equal(challenges[j].CreatedAt) {
			return challenges[i].CreatedAt.Before(challenges[j].CreatedAt)
		}
		return challenges[i].ID < challenges[j].ID
	})
	return challenges, nil
}

// PutAttempt stores a copy of the attempt state.
func (s *Store) PutAttempt(_ context.Context, state *domain.AttemptState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[state.ChallengeID] = copyAttempt(state)
	return nil
}

// GetAttempt retrieves an attempt state by challenge ID.
func (s *Store) GetAttempt(_ context.Context, challengeID string) (*domain.AttemptState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.attempts[challengeID]
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return copyAttempt(state), nil
}

// PutProgress replaces the progress record for a document.
func (s *Store) PutProgress(_ context.Context, progress *domain.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[progress.DocumentID] = copyProgress(progress)
	return nil
}

// GetProgress retrieves the progress record for a document.
func (s *Store) GetProgress(_ context.Context, documentID string) (*domain.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	progress, ok := s.progress[documentID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return copyProgress(progress), nil
}

func copyDocument(doc *domain.Document) *domain.Document {
	c := *doc
	c.Topics = append([]string(nil), doc.Topics...)
	return &c
}

func copyChallenge(challenge *domain.Challenge) *domain.Challenge {
	c := *challenge
	c.Options = append([]string(nil), challenge.Options...)
	c.Blanks = append([]domain.Blank(nil), challenge.Blanks...)
	for i, blank := range challenge.Blanks {
		c.Blanks[i].CorrectAnswers = append([]string(nil), blank.CorrectAnswers...)
	}
	c.TestCases = append([]domain.TestCase(nil), challenge.TestCases...)
	return &c
}

func copyAttempt(state *domain.AttemptState) *domain.AttemptState {
	c := *state
	if state.SolvedAt != nil {
		solvedAt := *state.SolvedAt
		c.SolvedAt = &solvedAt
	}
	return &c
}

func copyProgress(progress *domain.Progress) *domain.Progress {
	c := *progress
	c.Topics = append([]string(nil), progress.Topics...)
	c.ChallengeIDs = append([]string(nil), progress.ChallengeIDs...)
	return &c
}

var _ storage.Store = (*Store)(nil)
