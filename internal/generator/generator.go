package generator

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/quizforge/quizforge/internal/domain"
	"github.com/quizforge/quizforge/internal/llm"
	"github.com/quizforge/quizforge/internal/prompt"
	"github.com/quizforge/quizforge/internal/repair"
)

const (
	completionMaxTokens   = 1024
	completionTemperature = 0.7
	maxBlanks             = 4
)

// fallbackDistractors pad short multiple-choice option lists to four
var fallbackDistractors = []string{
	"None of the above",
	"All of the above",
	"It depends entirely on the runtime environment",
	"This cannot be determined",
}

// Synthesizer produces challenges from a completion backend with a
// deterministic template fallback. Synthesize always returns a valid
// challenge: every model-path failure falls through to templates.
type Synthesizer struct {
	provider  llm.Provider
	prompts   *prompt.Builder
	parser    *repair.Parser
	templates *Templates
	logger    *slog.Logger
	now       func() time.Time
}

// Config holds synthesizer dependencies
type Config struct {
	// Provider is the completion backend. Nil means template-only
	// generation.
	Provider llm.Provider

	// Logger for generation events
	Logger *slog.Logger
}

// New creates a challenge synthesizer
func New(cfg Config) *Synthesizer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		provider:  cfg.Provider,
		prompts:   prompt.NewBuilder(),
		parser:    repair.NewParser(logger),
		templates: NewTemplates(),
		logger:    logger,
		now:       time.Now,
	}
}

// Synthesize generates one challenge for a topic. The model path is
// tried when the backend is ready; any failure in it (completion error,
// unparseable output) falls back to the static template path, which
// cannot fail.
func (s *Synthesizer) Synthesize(ctx context.Context, topic, window string, challengeType domain.ChallengeType, difficulty domain.Difficulty) (*domain.Challenge, error) {
	if !challengeType.Valid() {
		return nil, domain.ErrInvalidChallenge
	}
	if !difficulty.Valid() {
		difficulty = domain.DifficultyMedium
	}

	if s.provider == nil || !s.provider.Ready(ctx) {
		s.logger.Debug("backend unavailable, using template fallback",
			"topic", topic, "type", challengeType)
		return s.templates.Challenge(topic, challengeType, difficulty), nil
	}

	challenge, err := s.synthesizeWithModel(ctx, topic, window, challengeType, difficulty)
	if err != nil {
		s.logger.Warn("model generation failed, using template fallback",
			"topic", topic, "type", challengeType, "error", err)
		return s.templates.Challenge(topic, challengeType, difficulty), nil
	}
	return challenge, nil
}

func (s *Synthesizer) synthesizeWithModel(ctx context.Context, topic, window string, challengeType domain.ChallengeType, difficulty domain.Difficulty) (*domain.Challenge, error) {
	promptText := s.prompts.Build(topic, window, challengeType, difficulty)

	resp, err := s.provider.Complete(ctx, &llm.Request{
		Prompt:      promptText,
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
	})
	if err != nil {
		return nil, err
	}

	payload, err := s.parser.Parse(resp.Content, challengeType)
	if err != nil {
		return nil, err
	}

	challenge := &domain.Challenge{
		ID:          domain.NewChallengeID(),
		Topic:       topic,
		Type:        challengeType,
		Difficulty:  difficulty,
		GeneratedBy: domain.GeneratedByModel,
		CreatedAt:   s.now(),

		Question:       payload.Question,
		Hint:           payload.Hint,
		Explanation:    payload.Explanation,
		Options:        payload.Options,
		CorrectIndex:   payload.CorrectIndex,
		BuggyCode:      payload.BuggyCode,
		BugDescription: payload.BugDescription,
		FixExplanation: payload.FixExplanation,
		CodeStub:       payload.CodeStub,
		CodeTemplate:   payload.CodeTemplate,
		TestCases:      payload.TestCases,
		Blanks:         payload.Blanks,
	}

	s.applyConsistencyFixes(challenge)

	if err := challenge.Validate(); err != nil {
		return nil, err
	}
	return challenge, nil
}

// applyConsistencyFixes repairs structural defects model output is
// prone to so the challenge satisfies the domain invariants.
func (s *Synthesizer) applyConsistencyFixes(c *domain.Challenge) {
	switch c.Type {
	case domain.ChallengeMultipleChoice:
		for len(c.Options) < 4 {
			c.Options = append(c.Options, fallbackDistractors[len(c.Options)%len(fallbackDistractors)])
		}
		if len(c.Options) > 4 {
			if c.CorrectIndex >= 4 {
				// Keep the correct option reachable.
				c.Options[3] = c.Options[c.CorrectIndex]
				c.CorrectIndex = 3
			}
			c.Options = c.Options[:4]
		}
		if c.CorrectIndex < 0 || c.CorrectIndex >= len(c.Options) {
			c.CorrectIndex = 0
		}

	case domain.ChallengeCoding:
		min := c.Difficulty.MinTestCases()
		for len(c.TestCases) < min {
			n := strconv.Itoa(len(c.TestCases) + 1)
			c.TestCases = append(c.TestCases, domain.TestCase{Input: "example" + n, Expected: "example" + n})
		}

	case domain.ChallengeFillInBlank:
		s.reconcileBlanks(c)
	}

	if len(c.Hint) < MinHintLength {
		c.Hint = FallbackHint(c.Topic, c.Type, c.Difficulty, c.BuggyCode+c.CodeStub)
	}
}

var blankMarkerRegex = regexp.MustCompile(`___(\d+)___`)

// reconcileBlanks aligns the declared blanks with the ___N___ markers
// in the template: markers without a declared blank get a placeholder,
// and the blank count is capped.
func (s *Synthesizer) reconcileBlanks(c *domain.Challenge) {
	declared := make(map[string]bool, len(c.Blanks))
	for _, b := range c.Blanks {
		declared[b.ID] = true
	}

	for _, m := range blankMarkerRegex.FindAllStringSubmatch(c.CodeTemplate, -1) {
		id := m[1]
		if declared[id] || len(c.Blanks) >= maxBlanks {
			continue
		}
		s.logger.Warn("template marker without declared blank", "blank", id)
		c.Blanks = append(c.Blanks, domain.Blank{ID: id, CorrectAnswers: []string{"answer"}})
		declared[id] = true
	}

	if len(c.Blanks) > maxBlanks {
		c.Blanks = c.Blanks[:maxBlanks]
	}
}
