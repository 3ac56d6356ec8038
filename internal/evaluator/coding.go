package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/quizforge/quizforge/internal/domain"
)

func (e *Evaluator) evaluateCoding(ctx context.Context, challenge *domain.Challenge, answer string) *domain.EvaluationResult {
	if e.sandbox == nil || !e.sandbox.Available(ctx) {
		return &domain.EvaluationResult{
			Status:   domain.EvaluationError,
			Feedback: "Code execution is currently unavailable. Please try again later.",
		}
	}

	result, err := e.sandbox.Run(ctx, answer, challenge.TestCases)
	if err != nil {
		e.logger.Error("sandbox run failed", "challenge_id", challenge.ID, "error", err)
		return &domain.EvaluationResult{
			Status:   domain.EvaluationError,
			Feedback: "Code execution is currently unavailable. Please try again later.",
		}
	}

	if result.SetupError != "" {
		return &domain.EvaluationResult{
			Status:   domain.EvaluationError,
			Feedback: setupFeedback(result.SetupError),
		}
	}

	passed := 0
	for _, c := range result.Cases {
		if c.Passed {
			passed++
		}
	}
	total := len(result.Cases)
	if total == 0 {
		return &domain.EvaluationResult{
			Status:   domain.EvaluationError,
			Feedback: "No test cases were executed.",
		}
	}

	if passed == total {
		return &domain.EvaluationResult{
			Status:   domain.EvaluationCorrect,
			Score:    100,
			Feedback: "All test cases passed! Great job!",
			Cases:    result.Cases,
		}
	}

	return &domain.EvaluationResult{
		Status:   domain.EvaluationIncorrect,
		Score:    passed * 100 / total,
		Feedback: incorrectCodingFeedback(answer, result.Cases, challenge.Hint),
		Cases:    result.Cases,
	}
}

// setupFeedback turns a harness setup error into learner-facing text
func setupFeedback(setupError string) string {
	switch {
	case strings.HasPrefix(setupError, "Syntax error"):
		return "Your code has a syntax error: " + strings.TrimPrefix(setupError, "Syntax error: ")
	case strings.Contains(setupError, "function definition"):
		return "Make sure your code defines a function."
	case strings.HasPrefix(setupError, "Error defining function"):
		return "There was an error in your code: " + strings.TrimPrefix(setupError, "Error defining function: ")
	case setupError == "Execution timed out.":
		return "Your code took too long to run. Check for infinite loops."
	}
	return setupError
}

// incorrectCodingFeedback builds feedback for a submission that did not
// pass every test case: the first runtime error with targeted guidance,
// otherwise the first failing case's expected-vs-actual, followed by
// code-smell hints and the challenge hint.
func incorrectCodingFeedback(code string, cases []domain.CaseResult, hint string) string {
	var b strings.Builder
	b.WriteString("Your solution doesn't pass all test cases. ")

	var errCase *domain.CaseResult
	for i := range cases {
		if cases[i].Error != "" {
			errCase = &cases[i]
			break
		}
	}

	if errCase != nil {
		fmt.Fprintf(&b, "Your code raised an error: %s. ", errCase.Error)
		switch {
		case strings.Contains(errCase.Error, "index out of range") || strings.Contains(errCase.Error, "IndexError"):
			b.WriteString("Check your array indexing. You might be trying to access an element that doesn't exist. ")
		case strings.Contains(errCase.Error, "division by zero") || strings.Contains(errCase.Error, "ZeroDivisionError"):
			b.WriteString("Your code is trying to divide by zero. Make sure to handle this case. ")
		case strings.Contains(errCase.Error, "TypeError"):
			b.WriteString("There's a type mismatch in your code. Check that you're using the right data types. ")
		}
	} else {
		for _, c := range cases {
			if !c.Passed {
				fmt.Fprintf(&b, "For input '%s', your code returned '%s' but the expected output is '%s'. ",
					c.Input, c.Actual, c.Expected)
				break
			}
		}
	}

	if strings.Contains(code, "for") && strings.Contains(code, "range") {
		b.WriteString("Check your loop ranges. Make sure you're iterating over the correct indices. ")
	}
	if strings.Contains(code, "if") {
		b.WriteString("Review your conditional logic. Are all conditions correct? ")
	}
	if strings.Contains(code, "return") {
		b.WriteString("Make sure you're returning the correct value. ")
	}

	if hint != "" {
		b.WriteString("\n\nHint: " + hint)
	}

	return b.String()
}
