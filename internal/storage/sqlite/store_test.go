package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quizforge/quizforge/internal/domain"
)

func TestDocumentStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store := NewDocumentStore(db)
	ctx := context.Background()

	doc := &domain.Document{
		ID:         "doc-1",
		Name:       "notes.md",
		Text:       "Python functions take parameters and return values.",
		Topics:     []string{"functions", "parameters"},
		Language:   "python",
		UploadedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.PutDocument(ctx, doc); err != nil {
		t.Fatalf("PutDocument() error = %v", err)
	}

	got, err := store.GetDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got.Name != doc.Name || got.Text != doc.Text || got.Language != doc.Language {
		t.Errorf("GetDocument() = %+v; want %+v", got, doc)
	}
	if len(got.Topics) != 2 || got.Topics[0] != "functions" {
		t.Errorf("Topics = %v; want %v", got.Topics, doc.Topics)
	}
	if !got.UploadedAt.Equal(doc.UploadedAt) {
		t.Errorf("UploadedAt = %v; want %v", got.UploadedAt, doc.UploadedAt)
	}
}

func TestDocumentStoreNotFound(t *testing.T) {
	db := openTestDB(t)
	store := NewDocumentStore(db)

	_, err := store.GetDocument(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("GetDocument() error = %v; want ErrDocumentNotFound", err)
	}
}

func TestDocumentStoreUpsert(t *testing.T) {
	db := openTestDB(t)
	store := NewDocumentStore(db)
	ctx := context.Background()

	doc := &domain.Document{
		ID:         "doc-1",
		Name:       "v1.md",
		Text:       "first",
		UploadedAt: time.Now().UTC(),
	}
	if err := store.PutDocument(ctx, doc); err != nil {
		t.Fatalf("PutDocument() error = %v", err)
	}

	doc.Name = "v2.md"
	doc.Text = "second"
	if err := store.PutDocument(ctx, doc); err != nil {
		t.Fatalf("PutDocument() upsert error = %v", err)
	}

	got, err := store.GetDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got.Name != "v2.md" || got.Text != "second" {
		t.Errorf("after upsert got name=%q text=%q", got.Name, got.Text)
	}
}

func TestChallengeStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store := NewChallengeStore(db)
	ctx := context.Background()

	challenge := &domain.Challenge{
		ID:           "ch-1",
		DocumentID:   "doc-1",
		Topic:        "loops",
		Type:         domain.ChallengeMultipleChoice,
		Difficulty:   domain.DifficultyEasy,
		Question:     "What does a for loop do?",
		Hint:         "Think about repetition and iteration.",
		GeneratedBy:  domain.GeneratedByStatic,
		CreatedAt:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Options:      []string{"Repeats code", "Defines a class", "Imports a module", "Raises an error"},
		CorrectIndex: 0,
		Explanation:  "Repeats code.",
	}
	if err := store.PutChallenge(ctx, challenge); err != nil {
		t.Fatalf("PutChallenge() error = %v", err)
	}

	got, err := store.GetChallenge(ctx, "ch-1")
	if err != nil {
		t.Fatalf("GetChallenge() error = %v", err)
	}
	if got.Topic != "loops" || got.Type != domain.ChallengeMultipleChoice {
		t.Errorf("GetChallenge() = %+v", got)
	}
	if len(got.Options) != 4 || got.Options[0] != "Repeats code" {
		t.Errorf("Options = %v", got.Options)
	}
	if got.CorrectIndex != 0 || got.Explanation != "Repeats code." {
		t.Errorf("payload fields lost: index=%d explanation=%q", got.CorrectIndex, got.Explanation)
	}
}

func TestChallengeStoreNotFound(t *testing.T) {
	db := openTestDB(t)
	store := NewChallengeStore(db)

	_, err := store.GetChallenge(context.Background(), "missing")
	if !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Errorf("GetChallenge() error = %v; want ErrChallengeNotFound", err)
	}
}

func TestChallengeStoreListByDocument(t *testing.T) {
	db := openTestDB(t)
	store := NewChallengeStore(db)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"ch-1", "ch-2", "ch-3"} {
		docID := "doc-1"
		if id == "ch-3" {
			docID = "doc-2"
		}
		challenge := &domain.Challenge{
			ID:         id,
			DocumentID: docID,
			Topic:      "loops",
			Type:       domain.ChallengeCoding,
			Difficulty: domain.DifficultyMedium,
			Question:   "Write a function.",
			Hint:       "Use a loop over the input.",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.PutChallenge(ctx, challenge); err != nil {
			t.Fatalf("PutChallenge(%s) error = %v", id, err)
		}
	}

	got, err := store.ListChallenges(ctx, "doc-1")
	if err != nil {
		t.Fatalf("ListChallenges() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListChallenges() returned %d challenges; want 2", len(got))
	}
	if got[0].ID != "ch-1" || got[1].ID != "ch-2" {
		t.Errorf("order = [%s %s]; want [ch-1 ch-2]", got[0].ID, got[1].ID)
	}

	empty, err := store.ListChallenges(ctx, "doc-none")
	if err != nil {
		t.Fatalf("ListChallenges() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ListChallenges() for unknown document = %d; want 0", len(empty))
	}
}

func TestAttemptStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store := NewAttemptStore(db)
	ctx := context.Background()

	solvedAt := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	state := &domain.AttemptState{
		ChallengeID:    "ch-1",
		Status:         domain.AttemptSolved,
		Attempts:       2,
		MaxAttempts:    domain.MaxAttempts,
		BestScore:      100,
		LastSubmission: "def shout(s): return s.upper()",
		SolvedAt:       &solvedAt,
	}
	if err := store.PutAttempt(ctx, state); err != nil {
		t.Fatalf("PutAttempt() error = %v", err)
	}

	got, err := store.GetAttempt(ctx, "ch-1")
	if err != nil {
		t.Fatalf("GetAttempt() error = %v", err)
	}
	if got.Status != domain.AttemptSolved || got.Attempts != 2 || got.BestScore != 100 {
		t.Errorf("GetAttempt() = %+v", got)
	}
	if got.SolvedAt == nil || !got.SolvedAt.Equal(solvedAt) {
		t.Errorf("SolvedAt = %v; want %v", got.SolvedAt, solvedAt)
	}
	if got.LastSubmission != state.LastSubmission {
		t.Errorf("LastSubmission = %q", got.LastSubmission)
	}
}

func TestAttemptStoreNotFound(t *testing.T) {
	db := openTestDB(t)
	store := NewAttemptStore(db)

	_, err := store.GetAttempt(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Errorf("GetAttempt() error = %v; want ErrAttemptNotFound", err)
	}
}

func TestAttemptStoreNilSolvedAt(t *testing.T) {
	db := openTestDB(t)
	store := NewAttemptStore(db)
	ctx := context.Background()

	state := domain.NewAttemptState("ch-1")
	state.Attempts = 1
	state.BestScore = 50
	if err := store.PutAttempt(ctx, state); err != nil {
		t.Fatalf("PutAttempt() error = %v", err)
	}

	got, err := store.GetAttempt(ctx, "ch-1")
	if err != nil {
		t.Fatalf("GetAttempt() error = %v", err)
	}
	if got.SolvedAt != nil {
		t.Errorf("SolvedAt = %v; want nil", got.SolvedAt)
	}
	if got.Status != domain.AttemptUnsolved {
		t.Errorf("Status = %q; want unsolved", got.Status)
	}
}

func TestProgressStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store := NewProgressStore(db)
	ctx := context.Background()

	progress := &domain.Progress{
		DocumentID:   "doc-1",
		Status:       domain.JobRunning,
		Percent:      40,
		Message:      "Generating challenges for loops",
		Topics:       []string{"loops", "functions"},
		ChallengeIDs: []string{"ch-1"},
		UpdatedAt:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.PutProgress(ctx, progress); err != nil {
		t.Fatalf("PutProgress() error = %v", err)
	}

	got, err := store.GetProgress(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if got.Status != domain.JobRunning || got.Percent != 40 {
		t.Errorf("GetProgress() = %+v", got)
	}
	if len(got.Topics) != 2 || len(got.ChallengeIDs) != 1 {
		t.Errorf("topics=%v challenge_ids=%v", got.Topics, got.ChallengeIDs)
	}

	// A later write replaces the whole record.
	progress.Status = domain.JobCompleted
	progress.Percent = 100
	progress.ChallengeIDs = []string{"ch-1", "ch-2"}
	if err := store.PutProgress(ctx, progress); err != nil {
		t.Fatalf("PutProgress() replace error = %v", err)
	}
	got, err = store.GetProgress(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if got.Status != domain.JobCompleted || got.Percent != 100 || len(got.ChallengeIDs) != 2 {
		t.Errorf("after replace = %+v", got)
	}
}

func TestProgressStoreNotFound(t *testing.T) {
	db := openTestDB(t)
	store := NewProgressStore(db)

	_, err := store.GetProgress(context.Background(), "missing")
	if !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("GetProgress() error = %v; want ErrJobNotFound", err)
	}
}
