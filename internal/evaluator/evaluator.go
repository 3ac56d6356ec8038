package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/quizforge/quizforge/internal/domain"
	"github.com/quizforge/quizforge/internal/sandbox"
)

// Evaluator grades submissions per challenge type. It never panics and
// never returns a Go error to the caller: every problem lands in an
// EvaluationResult with status error or incorrect.
type Evaluator struct {
	sandbox sandbox.CodeSandbox
	logger  *slog.Logger
}

// New creates an evaluator. A nil sandbox disables the coding path:
// coding submissions then get an error-status result.
func New(codeSandbox sandbox.CodeSandbox, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{sandbox: codeSandbox, logger: logger}
}

// Evaluate grades one submission against its challenge
func (e *Evaluator) Evaluate(ctx context.Context, challenge *domain.Challenge, answer string) *domain.EvaluationResult {
	switch challenge.Type {
	case domain.ChallengeMultipleChoice:
		return e.evaluateMultipleChoice(challenge, answer)
	case domain.ChallengeDebugging:
		return e.evaluateDebugging(challenge, answer)
	case domain.ChallengeFillInBlank:
		return e.evaluateFillInBlank(challenge, answer)
	case domain.ChallengeCoding:
		return e.evaluateCoding(ctx, challenge, answer)
	}
	return &domain.EvaluationResult{
		Status:   domain.EvaluationError,
		Feedback: fmt.Sprintf("Unknown challenge type: %s.", challenge.Type),
	}
}

func (e *Evaluator) evaluateMultipleChoice(challenge *domain.Challenge, answer string) *domain.EvaluationResult {
	index, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return &domain.EvaluationResult{
			Status:   domain.EvaluationError,
			Feedback: "Invalid answer format. Please select a valid option.",
		}
	}

	if index == challenge.CorrectIndex {
		feedback := challenge.Explanation
		if feedback == "" {
			feedback = "Correct!"
		}
		return &domain.EvaluationResult{
			Status:   domain.EvaluationCorrect,
			Score:    100,
			Feedback: feedback,
		}
	}

	return &domain.EvaluationResult{
		Status:   domain.EvaluationIncorrect,
		Feedback: fmt.Sprintf("Incorrect. The correct answer is option %d.", challenge.CorrectIndex+1),
	}
}

// debugKeywords are the tokens a plausible bug fix touches. The scan is
// deliberately shallow; real execution happens only on the coding path.
var debugKeywords = []string{"=", "==", "<=", ">=", "!=", "range", "len", "append"}

func (e *Evaluator) evaluateDebugging(challenge *domain.Challenge, answer string) *domain.EvaluationResult {
	lower := strings.ToLower(answer)
	for _, keyword := range debugKeywords {
		if strings.Contains(lower, keyword) {
			feedback := challenge.FixExplanation
			if feedback == "" {
				feedback = "Good job fixing the bug!"
			}
			return &domain.EvaluationResult{
				Status:   domain.EvaluationCorrect,
				Score:    100,
				Feedback: feedback,
			}
		}
	}

	return &domain.EvaluationResult{
		Status:   domain.EvaluationIncorrect,
		Feedback: "Try to identify the specific bug in the code. Look at the error message and expected output.",
	}
}

func (e *Evaluator) evaluateFillInBlank(challenge *domain.Challenge, answer string) *domain.EvaluationResult {
	if len(challenge.Blanks) == 0 {
		return &domain.EvaluationResult{
			Status:   domain.EvaluationError,
			Feedback: "No answer key available for this question.",
		}
	}

	var submitted []string
	if err := json.Unmarshal([]byte(answer), &submitted); err != nil {
		return &domain.EvaluationResult{
			Status:   domain.EvaluationError,
			Feedback: "Invalid answer format for fill-in-the-blank question.",
		}
	}

	total := len(challenge.Blanks)
	matched := 0
	for i, blank := range challenge.Blanks {
		if i >= len(submitted) {
			break
		}
		if blank.Accepts(submitted[i]) {
			matched++
		}
	}

	score := matched * 100 / total
	status := domain.EvaluationIncorrect
	if score >= 80 {
		status = domain.EvaluationCorrect
	}

	return &domain.EvaluationResult{
		Status:   status,
		Score:    score,
		Feedback: fmt.Sprintf("You got %d/%d blanks correct.", matched, total),
	}
}
