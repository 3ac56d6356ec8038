package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quizforge/quizforge/internal/domain"
)

// DocumentStore implements document persistence backed by SQLite.
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new SQLite-backed document store.
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// PutDocument persists a document (insert or update).
func (s *DocumentStore) PutDocument(ctx context.Context, doc *domain.Document) error {
	topics, err := json.Marshal(doc.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, text, topics, language, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			text=excluded.text,
			topics=excluded.topics,
			language=excluded.language`,
		doc.ID, doc.Name, doc.Text, string(topics), doc.Language, doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, text, topics, language, uploaded_at
		FROM documents WHERE id = ?`, id)

	var doc domain.Document
	var topicsJSON string
	err := row.Scan(&doc.ID, &doc.Name, &doc.Text, &topicsJSON, &doc.Language, &doc.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if err := json.Unmarshal([]byte(topicsJSON), &doc.Topics); err != nil {
		return nil, fmt.Errorf("unmarshal topics: %w", err)
	}
	return &doc, nil
}
