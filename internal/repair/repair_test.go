package repair

import (
	"errors"
	"reflect"
	"testing"

	"github.com/quizforge/quizforge/internal/domain"
)

func TestParseWellFormedMultipleChoice(t *testing.T) {
	p := NewParser(nil)
	raw := `{"question": "What is a stack?", "options": ["LIFO", "FIFO", "Tree", "Graph"], "correct_index": 0, "explanation": "Last in, first out."}`

	payload, err := p.Parse(raw, domain.ChallengeMultipleChoice)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if payload.Question != "What is a stack?" {
		t.Errorf("Question = %q", payload.Question)
	}
	if len(payload.Options) != 4 || payload.CorrectIndex != 0 {
		t.Errorf("Options = %v, CorrectIndex = %d", payload.Options, payload.CorrectIndex)
	}
	if payload.Explanation != "Last in, first out." {
		t.Errorf("Explanation = %q", payload.Explanation)
	}
}

func TestParseMessyEqualsWellFormed(t *testing.T) {
	p := NewParser(nil)

	wellFormed := `{"question": "Pick one", "options": ["a", "b", "c", "d"], "correct_index": 1}`
	messy := "Here is your challenge:\n```json\n" +
		"{'question': 'Pick one', 'options': ['a', 'b', 'c', 'd'], 'correct_index': 1,}\n" +
		"```\nGood luck!"

	want, err := p.Parse(wellFormed, domain.ChallengeMultipleChoice)
	if err != nil {
		t.Fatalf("well-formed parse failed: %v", err)
	}
	got, err := p.Parse(messy, domain.ChallengeMultipleChoice)
	if err != nil {
		t.Fatalf("messy parse failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("messy payload = %+v, want %+v", got, want)
	}
}

func TestParseSurroundingProse(t *testing.T) {
	p := NewParser(nil)
	raw := "Sure! Here's a question about recursion.\n" +
		`{"question": "What stops recursion?", "options": ["Base case", "Loop", "Import", "Print"], "correct_index": 0}` +
		"\nLet me know if you need another."

	payload, err := p.Parse(raw, domain.ChallengeMultipleChoice)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if payload.Question != "What stops recursion?" {
		t.Errorf("Question = %q", payload.Question)
	}
}

func TestParseOptionShapes(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantIndex int
		wantOpts  []string
	}{
		{
			name:      "objects with correct flag",
			raw:       `{"question": "q", "options": [{"text": "a"}, {"text": "b", "correct": true}, {"text": "c"}]}`,
			wantIndex: 1,
			wantOpts:  []string{"a", "b", "c"},
		},
		{
			name:      "choices array",
			raw:       `{"question": "q", "choices": [{"text": "x", "is_correct": true}, {"text": "y"}]}`,
			wantIndex: 0,
			wantOpts:  []string{"x", "y"},
		},
		{
			name:      "correct_option alias",
			raw:       `{"question": "q", "options": ["a", "b"], "correct_option": 1}`,
			wantIndex: 1,
			wantOpts:  []string{"a", "b"},
		},
	}

	p := NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := p.Parse(tt.raw, domain.ChallengeMultipleChoice)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(payload.Options, tt.wantOpts) {
				t.Errorf("Options = %v, want %v", payload.Options, tt.wantOpts)
			}
			if payload.CorrectIndex != tt.wantIndex {
				t.Errorf("CorrectIndex = %d, want %d", payload.CorrectIndex, tt.wantIndex)
			}
		})
	}
}

func TestParseOutOfBoundsIndexDefaultsToZero(t *testing.T) {
	p := NewParser(nil)

	for _, raw := range []string{
		`{"question": "q", "options": ["a", "b"], "correct_index": 7}`,
		`{"question": "q", "options": ["a", "b"], "correct_index": -1}`,
		`{"question": "q", "options": ["a", "b"]}`,
	} {
		payload, err := p.Parse(raw, domain.ChallengeMultipleChoice)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", raw, err)
		}
		if payload.CorrectIndex != 0 {
			t.Errorf("CorrectIndex = %d, want 0 for %q", payload.CorrectIndex, raw)
		}
	}
}

func TestParseDebugging(t *testing.T) {
	p := NewParser(nil)

	t.Run("normal", func(t *testing.T) {
		raw := `{"question": "Fix it", "buggy_code": "def f():\n    return 1", "bug_description": "off by one", "fix_explanation": "add one to the result"}`
		payload, err := p.Parse(raw, domain.ChallengeDebugging)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if payload.BuggyCode == "" || payload.BugDescription != "off by one" {
			t.Errorf("payload = %+v", payload)
		}
		if payload.FixExplanation != "add one to the result" {
			t.Errorf("FixExplanation = %q", payload.FixExplanation)
		}
	})

	t.Run("empty code becomes placeholder", func(t *testing.T) {
		raw := `{"question": "Fix it", "buggy_code": ""}`
		payload, err := p.Parse(raw, domain.ChallengeDebugging)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if payload.BuggyCode != "# Empty code stub" {
			t.Errorf("BuggyCode = %q", payload.BuggyCode)
		}
	})
}

func TestParseCodingBackfillsTestCases(t *testing.T) {
	p := NewParser(nil)
	raw := `{"question": "Implement it", "code_stub": "def solution(x):\n    pass"}`

	payload, err := p.Parse(raw, domain.ChallengeCoding)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(payload.TestCases) != 1 {
		t.Fatalf("TestCases = %v, want single placeholder", payload.TestCases)
	}
}

func TestParseCodingNumericCases(t *testing.T) {
	p := NewParser(nil)
	raw := `{"question": "Square it", "code_stub": "def solution(x):\n    pass", "test_cases": [{"input": 5, "expected": 25}]}`

	payload, err := p.Parse(raw, domain.ChallengeCoding)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []domain.TestCase{{Input: "5", Expected: "25"}}
	if !reflect.DeepEqual(payload.TestCases, want) {
		t.Errorf("TestCases = %v, want %v", payload.TestCases, want)
	}
}

func TestParseCodingCompoundCases(t *testing.T) {
	p := NewParser(nil)
	raw := `{"question": "Double it", "code_stub": "def solution(items):\n    pass", "test_cases": [{"input": [1, 2, 3], "expected": [2, 4, 6]}]}`

	payload, err := p.Parse(raw, domain.ChallengeCoding)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	// Compound values stay JSON so the harness can decode them back.
	want := []domain.TestCase{{Input: "[1,2,3]", Expected: "[2,4,6]"}}
	if !reflect.DeepEqual(payload.TestCases, want) {
		t.Errorf("TestCases = %v, want %v", payload.TestCases, want)
	}
}

func TestParseFillInBlank(t *testing.T) {
	p := NewParser(nil)
	raw := `{"question": "Complete the code", "code_template": "x = ___1___", "blanks": [{"id": "1", "correct_answers": ["5", "5.0"]}]}`

	payload, err := p.Parse(raw, domain.ChallengeFillInBlank)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(payload.Blanks) != 1 || len(payload.Blanks[0].CorrectAnswers) != 2 {
		t.Errorf("Blanks = %+v", payload.Blanks)
	}
}

func TestParsePythonLiterals(t *testing.T) {
	p := NewParser(nil)
	raw := `{"question": "q", "options": [{"text": "a", "correct": True}, {"text": "b", "correct": False}], "explanation": None}`

	payload, err := p.Parse(raw, domain.ChallengeMultipleChoice)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if payload.CorrectIndex != 0 {
		t.Errorf("CorrectIndex = %d, want 0", payload.CorrectIndex)
	}
}

func TestParseKeyExtractionLastResort(t *testing.T) {
	p := NewParser(nil)
	// Broken structure that no JSON strategy can parse, but with
	// recoverable key/value pairs.
	raw := `The model said "question": "Fix the loop" and also "buggy_code": "for i in range(10: pass" somewhere`

	payload, err := p.Parse(raw, domain.ChallengeDebugging)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if payload.Question != "Fix the loop" {
		t.Errorf("Question = %q", payload.Question)
	}
}

func TestParseHardFailure(t *testing.T) {
	p := NewParser(nil)

	for _, raw := range []string{"", "no json here at all", `{"options": ["a"]}`} {
		_, err := p.Parse(raw, domain.ChallengeMultipleChoice)
		if !errors.Is(err, domain.ErrUnparseableResponse) {
			t.Errorf("Parse(%q) error = %v, want ErrUnparseableResponse", raw, err)
		}
	}
}

func TestFirstObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"simple", `prefix {"a": 1} suffix`, `{"a": 1}`},
		{"nested", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"brace in string", `{"a": "}"}`, `{"a": "}"}`},
		{"unbalanced", `{"a": 1`, ""},
		{"none", "plain text", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstObject(tt.text); got != tt.want {
				t.Errorf("FirstObject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	raw := "```json\n{'done': True, 'note': None, 'items': [1, 2,],}\n```"
	want := `{"done": true, "note": null, "items": [1, 2]}`

	if got := Normalize(raw); got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}
