package attempt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quizforge/quizforge/internal/domain"
)

// Store persists attempt states by challenge id
type Store interface {
	// GetAttempt returns domain.ErrAttemptNotFound for untried challenges
	GetAttempt(ctx context.Context, challengeID string) (*domain.AttemptState, error)
	PutAttempt(ctx context.Context, state *domain.AttemptState) error
}

// Evaluator scores a submitted answer against a challenge
type Evaluator interface {
	Evaluate(ctx context.Context, challenge *domain.Challenge, answer string) *domain.EvaluationResult
}

// Result is the outcome of one submission
type Result struct {
	State             *domain.AttemptState     `json:"state"`
	Evaluation        *domain.EvaluationResult `json:"evaluation"`
	AttemptsRemaining int                      `json:"attempts_remaining"`
}

// Tracker applies the attempt state machine around answer evaluation.
// A per-challenge mutex serializes concurrent submissions for the same
// challenge so the attempt count never misses an increment.
type Tracker struct {
	store     Store
	evaluator Evaluator
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTracker creates an attempt tracker
func NewTracker(store Store, evaluator Evaluator, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:     store,
		evaluator: evaluator,
		logger:    logger,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (t *Tracker) lockFor(challengeID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[challengeID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[challengeID] = l
	}
	return l
}

// Submit evaluates an answer and advances the challenge's attempt
// state. An exhausted unsolved challenge is rejected with
// domain.ErrAttemptsExceeded without touching the attempt count.
func (t *Tracker) Submit(ctx context.Context, challenge *domain.Challenge, answer string) (*Result, error) {
	if challenge == nil {
		return nil, domain.ErrChallengeNotFound
	}

	lock := t.lockFor(challenge.ID)
	lock.Lock()
	defer lock.Unlock()

	state, err := t.loadOrInit(ctx, challenge.ID)
	if err != nil {
		return nil, err
	}

	if !state.CanSubmit() {
		t.logger.Info("submission rejected, attempts exhausted",
			"challenge_id", challenge.ID, "attempts", state.Attempts)
		return &Result{State: state, AttemptsRemaining: 0}, domain.ErrAttemptsExceeded
	}

	state.RecordSubmission(answer)

	// An incorrect submission only advances attempts and the recorded
	// answer; best_score moves on correct evaluations alone.
	evaluation := t.evaluator.Evaluate(ctx, challenge, answer)
	if evaluation.Correct() {
		state.MarkSolved(evaluation.Score, t.now())
	}

	if err := t.store.PutAttempt(ctx, state); err != nil {
		return nil, fmt.Errorf("persist attempt state: %w", err)
	}

	return &Result{
		State:             state,
		Evaluation:        evaluation,
		AttemptsRemaining: remaining(state),
	}, nil
}

// State returns the current attempt state, initializing a fresh one
// for challenges that have never been tried.
func (t *Tracker) State(ctx context.Context, challengeID string) (*domain.AttemptState, error) {
	lock := t.lockFor(challengeID)
	lock.Lock()
	defer lock.Unlock()

	return t.loadOrInit(ctx, challengeID)
}

func (t *Tracker) loadOrInit(ctx context.Context, challengeID string) (*domain.AttemptState, error) {
	state, err := t.store.GetAttempt(ctx, challengeID)
	if errors.Is(err, domain.ErrAttemptNotFound) {
		return domain.NewAttemptState(challengeID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load attempt state: %w", err)
	}
	return state, nil
}

func remaining(state *domain.AttemptState) int {
	n := state.MaxAttempts - state.Attempts
	if n < 0 {
		return 0
	}
	return n
}
