package prompt

import (
	"strings"
	"testing"

	"github.com/quizforge/quizforge/internal/domain"
)

func TestBuildDeterministic(t *testing.T) {
	b := NewBuilder()

	first := b.Build("Recursion", "some context", domain.ChallengeMultipleChoice, domain.DifficultyEasy)
	second := b.Build("Recursion", "some context", domain.ChallengeMultipleChoice, domain.DifficultyEasy)

	if first != second {
		t.Error("identical inputs produced different prompts")
	}
}

func TestBuildContainsParts(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		challengeType domain.ChallengeType
		wantSchema    string
	}{
		{domain.ChallengeMultipleChoice, `"correct_index"`},
		{domain.ChallengeDebugging, `"buggy_code"`},
		{domain.ChallengeCoding, `"test_cases"`},
		{domain.ChallengeFillInBlank, `"code_template"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.challengeType), func(t *testing.T) {
			p := b.Build("Data Structures", "window text", tt.challengeType, domain.DifficultyMedium)

			for _, want := range []string{
				"Data Structures",
				"window text",
				"ONLY valid JSON",
				"<JSON_SCHEMA>",
				tt.wantSchema,
			} {
				if !strings.Contains(p, want) {
					t.Errorf("prompt missing %q", want)
				}
			}
		})
	}
}

func TestBuildDifficultyGuidance(t *testing.T) {
	b := NewBuilder()

	easy := b.Build("Loops", "ctx", domain.ChallengeDebugging, domain.DifficultyEasy)
	hard := b.Build("Loops", "ctx", domain.ChallengeDebugging, domain.DifficultyHard)

	if !strings.Contains(easy, "For EASY difficulty") {
		t.Error("easy prompt missing easy guidance block")
	}
	if !strings.Contains(hard, "For HARD difficulty") {
		t.Error("hard prompt missing hard guidance block")
	}
	if easy == hard {
		t.Error("difficulty should change the prompt")
	}
}

func TestBuildTruncatesWindow(t *testing.T) {
	b := NewBuilder()
	long := strings.Repeat("a", 5000)

	p := b.Build("Topic", long, domain.ChallengeMultipleChoice, domain.DifficultyMedium)
	if strings.Contains(p, strings.Repeat("a", 501)) {
		t.Error("multiple-choice context not truncated to its budget")
	}
}
