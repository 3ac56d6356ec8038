// Package job orchestrates batch challenge synthesis. A batch is
// started per document, processed by a small worker pool, and observed
// through a pollable progress record.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/quizforge/quizforge/internal/analyzer"
	"github.com/quizforge/quizforge/internal/domain"
	"github.com/quizforge/quizforge/internal/generator"
	"github.com/quizforge/quizforge/internal/storage"
)

// DefaultWorkers bounds the number of topics synthesized concurrently.
const DefaultWorkers = 3

// Synthesizer produces one challenge for a (topic, type, difficulty)
// tuple against a focused content window.
type Synthesizer interface {
	Synthesize(ctx context.Context, topic, window string, challengeType domain.ChallengeType, difficulty domain.Difficulty) (*domain.Challenge, error)
}

// Selection names one topic to generate challenges for. Types may be
// empty, in which case the topic's suitability mapping decides.
type Selection struct {
	Topic      string
	Difficulty domain.Difficulty
	Types      []domain.ChallengeType
}

// Service runs batch synthesis jobs. StartBatch returns immediately;
// the batch continues in the background and reports through the
// progress store.
type Service struct {
	store    storage.Store
	synth    Synthesizer
	analyzer *analyzer.Analyzer
	logger   *slog.Logger
	workers  int
	now      func() time.Time

	wg sync.WaitGroup
}

// Config holds the service dependencies.
type Config struct {
	Store       storage.Store
	Synthesizer Synthesizer
	Analyzer    *analyzer.Analyzer
	Logger      *slog.Logger
	Workers     int
}

// NewService creates a batch synthesis service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := cfg.Analyzer
	if a == nil {
		a = analyzer.NewAnalyzer()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Service{
		store:    cfg.Store,
		synth:    cfg.Synthesizer,
		analyzer: a,
		logger:   logger,
		workers:  workers,
		now:      time.Now,
	}
}

// StartBatch validates the request, records a queued progress entry,
// and kicks off background synthesis. It returns as soon as the job is
// accepted; callers poll Progress for completion.
func (s *Service) StartBatch(ctx context.Context, documentID string, selections []Selection) error {
	if len(selections) == 0 {
		return domain.ErrNoTopicsSelected
	}

	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	if err := s.writeProgress(ctx, &domain.Progress{
		DocumentID: documentID,
		Status:     domain.JobQueued,
		Message:    "Challenge generation queued",
	}); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Detached from the request context so the batch survives
		// the caller disconnecting.
		s.runBatch(context.Background(), doc, selections)
	}()

	return nil
}

// RunBatch executes a batch to completion and returns the final
// progress record. Queue workers use this so a job's lifetime matches
// its message.
func (s *Service) RunBatch(ctx context.Context, documentID string, selections []Selection) (*domain.Progress, error) {
	if len(selections) == 0 {
		return nil, domain.ErrNoTopicsSelected
	}

	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	s.runBatch(ctx, doc, selections)
	return s.store.GetProgress(ctx, documentID)
}

// Progress returns the current progress record for a document's batch.
func (s *Service) Progress(ctx context.Context, documentID string) (*domain.Progress, error) {
	return s.store.GetProgress(ctx, documentID)
}

// Wait blocks until all in-flight batches have finished. Used during
// shutdown and in tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

type topicResult struct {
	index      int
	challenges []*domain.Challenge
}

func (s *Service) runBatch(ctx context.Context, doc *domain.Document, selections []Selection) {
	s.updateProgress(ctx, doc.ID, domain.JobRunning, 10, "Starting challenge generation...")

	total := len(selections)
	results := make([]topicResult, 0, total)

	var (
		mu        sync.Mutex
		completed int
		wg        sync.WaitGroup
	)
	sem := make(chan struct{}, s.workers)

	for i, sel := range selections {
		wg.Add(1)
		go func(i int, sel Selection) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			challenges := s.synthesizeTopic(ctx, doc, sel)

			mu.Lock()
			completed++
			percent := 10 + (completed*80)/total
			if len(challenges) > 0 {
				results = append(results, topicResult{index: i, challenges: challenges})
			}
			// The write happens under the lock so percentages reach the
			// store in the order they were computed.
			s.updateProgress(ctx, doc.ID, domain.JobRunning, percent,
				fmt.Sprintf("Generating challenges for: %s", sel.Topic))
			mu.Unlock()
		}(i, sel)
	}
	wg.Wait()

	challenges := orderResults(results)
	if len(challenges) == 0 {
		s.logger.Error("batch produced no challenges", "document_id", doc.ID)
		s.updateProgress(ctx, doc.ID, domain.JobFailed, 0, domain.ErrBatchAllFailed.Error())
		return
	}

	if err := s.storeResults(ctx, doc, challenges); err != nil {
		s.logger.Error("failed to store batch results", "document_id", doc.ID, "error", err)
		s.updateProgress(ctx, doc.ID, domain.JobFailed, 0, "Failed to store generated challenges")
		return
	}

	ids := make([]string, len(challenges))
	topics := make([]string, 0, len(selections))
	for i, c := range challenges {
		ids[i] = c.ID
	}
	for _, sel := range selections {
		topics = append(topics, sel.Topic)
	}

	s.writeProgress(ctx, &domain.Progress{
		DocumentID:   doc.ID,
		Status:       domain.JobCompleted,
		Percent:      100,
		Message:      fmt.Sprintf("Generated %d challenges", len(challenges)),
		Topics:       topics,
		ChallengeIDs: ids,
	})
	s.logger.Info("batch synthesis completed",
		"document_id", doc.ID, "challenges", len(challenges))
}

// synthesizeTopic generates all selected challenge types for one topic.
// Failures are isolated: a type that cannot be synthesized is skipped
// and the rest of the topic continues.
func (s *Service) synthesizeTopic(ctx context.Context, doc *domain.Document, sel Selection) []*domain.Challenge {
	window := s.analyzer.Window(doc.Text, sel.Topic, analyzer.DefaultWindowChars)

	types := sel.Types
	if len(types) == 0 {
		types = generator.TypesForTopic(sel.Topic)
	}
	difficulty := sel.Difficulty
	if !difficulty.Valid() {
		difficulty = domain.DifficultyMedium
	}

	var challenges []*domain.Challenge
	for _, challengeType := range types {
		challenge, err := s.synth.Synthesize(ctx, sel.Topic, window, challengeType, difficulty)
		if err != nil {
			s.logger.Warn("challenge synthesis failed",
				"topic", sel.Topic, "type", challengeType, "error", err)
			continue
		}
		challenge.DocumentID = doc.ID
		challenges = append(challenges, challenge)
	}
	return challenges
}

// storeResults persists every challenge together with a fresh attempt
// state so submissions can start immediately.
func (s *Service) storeResults(ctx context.Context, doc *domain.Document, challenges []*domain.Challenge) error {
	for _, challenge := range challenges {
		if err := s.store.PutChallenge(ctx, challenge); err != nil {
			return fmt.Errorf("store challenge %s: %w", challenge.ID, err)
		}
		if err := s.store.PutAttempt(ctx, domain.NewAttemptState(challenge.ID)); err != nil {
			return fmt.Errorf("init attempt state %s: %w", challenge.ID, err)
		}
	}
	return nil
}

func (s *Service) updateProgress(ctx context.Context, documentID string, status domain.JobStatus, percent int, message string) {
	s.writeProgress(ctx, &domain.Progress{
		DocumentID: documentID,
		Status:     status,
		Percent:    percent,
		Message:    message,
	})
}

// writeProgress replaces the whole progress record. A storage failure
// here is logged but never aborts the batch.
func (s *Service) writeProgress(ctx context.Context, progress *domain.Progress) error {
	progress.UpdatedAt = s.now()
	if err := s.store.PutProgress(ctx, progress); err != nil {
		s.logger.Error("failed to write progress",
			"document_id", progress.DocumentID, "error", err)
		return err
	}
	return nil
}

// orderResults flattens per-topic results back into selection order so
// batch output is deterministic regardless of worker scheduling.
func orderResults(results []topicResult) []*domain.Challenge {
	ordered := make([]topicResult, len(results))
	copy(ordered, results)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].index < ordered[j].index })
	var challenges []*domain.Challenge
	for _, r := range ordered {
		challenges = append(challenges, r.challenges...)
	}
	return challenges
}
