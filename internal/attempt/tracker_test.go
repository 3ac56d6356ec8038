package attempt

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/quizforge/quizforge/internal/domain"
)

type memStore struct {
	mu     sync.Mutex
	states map[string]*domain.AttemptState
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]*domain.AttemptState)}
}

func (s *memStore) GetAttempt(ctx context.Context, challengeID string) (*domain.AttemptState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[challengeID]
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	copied := *state
	return &copied, nil
}

func (s *memStore) PutAttempt(ctx context.Context, state *domain.AttemptState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *state
	s.states[state.ChallengeID] = &copied
	return nil
}

type fixedEvaluator struct {
	result *domain.EvaluationResult
}

func (e *fixedEvaluator) Evaluate(ctx context.Context, challenge *domain.Challenge, answer string) *domain.EvaluationResult {
	return e.result
}

func mcChallenge() *domain.Challenge {
	return &domain.Challenge{
		ID:           "ch-1",
		Topic:        "Loops",
		Type:         domain.ChallengeMultipleChoice,
		Difficulty:   domain.DifficultyEasy,
		Question:     "q",
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: 0,
	}
}

func incorrect(score int) *domain.EvaluationResult {
	return &domain.EvaluationResult{Status: domain.EvaluationIncorrect, Score: score}
}

func correct(score int) *domain.EvaluationResult {
	return &domain.EvaluationResult{Status: domain.EvaluationCorrect, Score: score}
}

func TestSubmitIncrementsAttempts(t *testing.T) {
	tracker := NewTracker(newMemStore(), &fixedEvaluator{result: incorrect(0)}, nil)

	res, err := tracker.Submit(context.Background(), mcChallenge(), "1")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.State.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", res.State.Attempts)
	}
	if res.AttemptsRemaining != 2 {
		t.Errorf("AttemptsRemaining = %d, want 2", res.AttemptsRemaining)
	}
	if res.State.LastSubmission != "1" {
		t.Errorf("LastSubmission = %q", res.State.LastSubmission)
	}
}

func TestSubmitExhaustionRejectsWithoutIncrement(t *testing.T) {
	tracker := NewTracker(newMemStore(), &fixedEvaluator{result: incorrect(0)}, nil)
	challenge := mcChallenge()

	for i := 0; i < domain.MaxAttempts; i++ {
		if _, err := tracker.Submit(context.Background(), challenge, "1"); err != nil {
			t.Fatalf("Submit() %d error = %v", i, err)
		}
	}

	res, err := tracker.Submit(context.Background(), challenge, "1")
	if !errors.Is(err, domain.ErrAttemptsExceeded) {
		t.Fatalf("Submit() error = %v, want ErrAttemptsExceeded", err)
	}
	if res.State.Attempts != domain.MaxAttempts {
		t.Errorf("Attempts = %d, want unchanged %d", res.State.Attempts, domain.MaxAttempts)
	}
}

func TestSubmitSolvedAllowsFurtherSubmissions(t *testing.T) {
	store := newMemStore()
	evaluator := &fixedEvaluator{result: correct(100)}
	tracker := NewTracker(store, evaluator, nil)
	challenge := mcChallenge()

	for i := 0; i < domain.MaxAttempts; i++ {
		if _, err := tracker.Submit(context.Background(), challenge, "0"); err != nil {
			t.Fatalf("Submit() %d error = %v", i, err)
		}
	}

	// Solved challenges stay open past the attempt budget.
	res, err := tracker.Submit(context.Background(), challenge, "0")
	if err != nil {
		t.Fatalf("Submit() after solve error = %v", err)
	}
	if res.State.Attempts != domain.MaxAttempts+1 {
		t.Errorf("Attempts = %d, want %d", res.State.Attempts, domain.MaxAttempts+1)
	}
}

func TestSubmitMarksSolved(t *testing.T) {
	tracker := NewTracker(newMemStore(), &fixedEvaluator{result: correct(100)}, nil)

	res, err := tracker.Submit(context.Background(), mcChallenge(), "0")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !res.State.Solved() {
		t.Error("state not solved after correct evaluation")
	}
	if res.State.SolvedAt == nil {
		t.Error("SolvedAt not stamped")
	}
	if res.State.BestScore != 100 {
		t.Errorf("BestScore = %d, want 100", res.State.BestScore)
	}
}

func TestBestScoreIgnoresIncorrectSubmissions(t *testing.T) {
	store := newMemStore()
	evaluator := &fixedEvaluator{}
	tracker := NewTracker(store, evaluator, nil)
	challenge := mcChallenge()

	// A near-miss still leaves best_score untouched.
	evaluator.result = incorrect(75)
	res, err := tracker.Submit(context.Background(), challenge, "x")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.State.BestScore != 0 {
		t.Errorf("BestScore = %d, want 0 after incorrect submission", res.State.BestScore)
	}

	evaluator.result = correct(100)
	res, err = tracker.Submit(context.Background(), challenge, "y")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.State.BestScore != 100 {
		t.Errorf("BestScore = %d, want 100 after correct submission", res.State.BestScore)
	}

	// A later lower-scoring correct submission never lowers it.
	evaluator.result = correct(85)
	res, err = tracker.Submit(context.Background(), challenge, "z")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.State.BestScore != 100 {
		t.Errorf("BestScore = %d, want 100 kept", res.State.BestScore)
	}
}

func TestStateInitializesFresh(t *testing.T) {
	tracker := NewTracker(newMemStore(), &fixedEvaluator{result: incorrect(0)}, nil)

	state, err := tracker.State(context.Background(), "never-tried")
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if state.Attempts != 0 || state.Solved() {
		t.Errorf("fresh state = %+v", state)
	}
	if state.MaxAttempts != domain.MaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", state.MaxAttempts, domain.MaxAttempts)
	}
}

func TestSubmitConcurrentCounting(t *testing.T) {
	store := newMemStore()
	tracker := NewTracker(store, &fixedEvaluator{result: correct(100)}, nil)
	challenge := mcChallenge()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Submit(context.Background(), challenge, "0")
		}()
	}
	wg.Wait()

	state, err := tracker.State(context.Background(), challenge.ID)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if state.Attempts != 10 {
		t.Errorf("Attempts = %d, want 10", state.Attempts)
	}
}
