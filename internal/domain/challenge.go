package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChallengeType identifies the kind of exercise a challenge represents
type ChallengeType string

const (
	ChallengeMultipleChoice ChallengeType = "multiple_choice"
	ChallengeDebugging      ChallengeType = "debugging"
	ChallengeFillInBlank    ChallengeType = "fill_in_the_blank"
	ChallengeCoding         ChallengeType = "coding"
)

// ChallengeTypes lists every supported challenge type in default priority order
var ChallengeTypes = []ChallengeType{
	ChallengeMultipleChoice,
	ChallengeDebugging,
	ChallengeFillInBlank,
	ChallengeCoding,
}

// Valid reports whether t is a known challenge type
func (t ChallengeType) Valid() bool {
	switch t {
	case ChallengeMultipleChoice, ChallengeDebugging, ChallengeFillInBlank, ChallengeCoding:
		return true
	}
	return false
}

// Difficulty controls code length, option plausibility, and test-case count
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// MinTestCases returns the minimum number of coding test cases for the difficulty
func (d Difficulty) MinTestCases() int {
	switch d {
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 1
	}
}

// GeneratedBy records which path produced a challenge
type GeneratedBy string

const (
	GeneratedByModel  GeneratedBy = "model"
	GeneratedByStatic GeneratedBy = "static"
)

// Challenge is the unit of work emitted by the synthesizer.
// Exactly one of the type-specific payload groups is populated,
// matching Type. Immutable once emitted except for the lazily
// cached Hint.
type Challenge struct {
	ID          string        `json:"id"`
	DocumentID  string        `json:"document_id,omitempty"`
	Topic       string        `json:"topic"`
	Type        ChallengeType `json:"type"`
	Difficulty  Difficulty    `json:"difficulty"`
	Question    string        `json:"question"`
	Hint        string        `json:"hint"`
	GeneratedBy GeneratedBy   `json:"generated_by"`
	CreatedAt   time.Time     `json:"created_at"`

	// multiple choice
	Options      []string `json:"options,omitempty"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation,omitempty"`

	// debugging
	BuggyCode      string `json:"buggy_code,omitempty"`
	BugDescription string `json:"bug_description,omitempty"`
	FixExplanation string `json:"fix_explanation,omitempty"`

	// fill in the blank
	CodeTemplate string  `json:"code_template,omitempty"`
	Blanks       []Blank `json:"blanks,omitempty"`

	// coding
	CodeStub  string     `json:"code_stub,omitempty"`
	TestCases []TestCase `json:"test_cases,omitempty"`
}

// Blank describes one gap in a fill-in-the-blank code template
type Blank struct {
	ID             string   `json:"id"`
	CorrectAnswers []string `json:"correct_answers"`
	Hint           string   `json:"hint,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
}

// Accepts reports whether an answer matches one of the blank's
// accepted answers exactly, modulo surrounding whitespace.
func (b Blank) Accepts(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	for _, accepted := range b.CorrectAnswers {
		if trimmed == strings.TrimSpace(accepted) {
			return true
		}
	}
	return false
}

// TestCase is a single input/expected pair for coding evaluation.
// Input and Expected hold the value as JSON or Python-literal text;
// the execution harness decodes them before calling and comparing, so
// "5" reaches the function as the integer 5.
type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

// NewChallengeID returns a fresh opaque challenge identifier
func NewChallengeID() string {
	return uuid.New().String()
}

// Validate checks the type-mandated payload invariants
func (c *Challenge) Validate() error {
	if c.ID == "" || c.Topic == "" {
		return ErrInvalidChallenge
	}
	if !c.Type.Valid() || !c.Difficulty.Valid() {
		return ErrInvalidChallenge
	}
	if c.Question == "" || c.Hint == "" {
		return ErrInvalidChallenge
	}
	switch c.Type {
	case ChallengeMultipleChoice:
		if len(c.Options) != 4 {
			return ErrInvalidChallenge
		}
		if c.CorrectIndex < 0 || c.CorrectIndex >= len(c.Options) {
			return ErrInvalidChallenge
		}
	case ChallengeDebugging:
		if c.BuggyCode == "" {
			return ErrInvalidChallenge
		}
	case ChallengeFillInBlank:
		if c.CodeTemplate == "" || len(c.Blanks) == 0 {
			return ErrInvalidChallenge
		}
		for _, b := range c.Blanks {
			if len(b.CorrectAnswers) == 0 {
				return ErrInvalidChallenge
			}
		}
	case ChallengeCoding:
		if c.CodeStub == "" || len(c.TestCases) == 0 {
			return ErrInvalidChallenge
		}
	}
	return nil
}
