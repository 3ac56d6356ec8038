package sqlite

import (
	"github.com/quizforge/quizforge/internal/storage"
)

// Store bundles every SQLite-backed store over one database handle.
type Store struct {
	*DocumentStore
	*ChallengeStore
	*AttemptStore
	*ProgressStore
}

// NewStore creates all stores over a shared connection.
func NewStore(db *DB) *Store {
	return &Store{
		DocumentStore:  NewDocumentStore(db),
		ChallengeStore: NewChallengeStore(db),
		AttemptStore:   NewAttemptStore(db),
		ProgressStore:  NewProgressStore(db),
	}
}

// Ensure SQLite stores implement the storage interfaces.
var (
	_ storage.DocumentStore  = (*DocumentStore)(nil)
	_ storage.ChallengeStore = (*ChallengeStore)(nil)
	_ storage.AttemptStore   = (*AttemptStore)(nil)
	_ storage.ProgressStore  = (*ProgressStore)(nil)
	_ storage.Store          = (*Store)(nil)
)
