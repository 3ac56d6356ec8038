package repair

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/quizforge/quizforge/internal/domain"
)

// Payload is the structured challenge content recovered from a raw
// generator response. Only the fields for the requested challenge type
// are populated.
type Payload struct {
	Question     string
	Options      []string
	CorrectIndex int
	Explanation  string

	BuggyCode      string
	BugDescription string
	FixExplanation string

	CodeStub     string
	CodeTemplate string
	TestCases    []domain.TestCase
	Blanks       []domain.Blank

	Hint string
}

const emptyCodePlaceholder = "# Empty code stub"

// accept validates a decoded object against the challenge type's
// required fields and normalizes it into a Payload. Returns nil when
// the object cannot satisfy the type.
func accept(data map[string]any, challengeType domain.ChallengeType) *Payload {
	if data == nil {
		return nil
	}
	question := asString(data["question"])
	if question == "" {
		return nil
	}

	p := &Payload{
		Question:    question,
		Hint:        asString(data["hint"]),
		Explanation: asString(data["explanation"]),
	}

	switch challengeType {
	case domain.ChallengeMultipleChoice:
		return acceptMultipleChoice(data, p)
	case domain.ChallengeDebugging:
		return acceptDebugging(data, p)
	case domain.ChallengeCoding:
		return acceptCoding(data, p)
	case domain.ChallengeFillInBlank:
		return acceptFillInBlank(data, p)
	}
	return nil
}

// acceptMultipleChoice handles the option shapes generators actually
// produce: flat strings with correct_index, option objects carrying a
// correct flag, and a choices array with text/correct fields.
func acceptMultipleChoice(data map[string]any, p *Payload) *Payload {
	options, correctIndex, ok := normalizeOptions(data)
	if !ok {
		return nil
	}

	if correctIndex < 0 || correctIndex >= len(options) {
		slog.Warn("correct_index missing or out of bounds, defaulting to 0",
			"correct_index", correctIndex,
			"options", len(options),
		)
		correctIndex = 0
	}

	p.Options = options
	p.CorrectIndex = correctIndex
	return p
}

func normalizeOptions(data map[string]any) ([]string, int, bool) {
	// Shape 1 and 2: an options array of strings or of objects.
	if raw, ok := data["options"].([]any); ok && len(raw) > 0 {
		if options, allStrings := stringSlice(raw); allStrings {
			return options, declaredIndex(data), true
		}

		// Option objects with a correct flag.
		var options []string
		correctIndex := -1
		for i, item := range raw {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, 0, false
			}
			text := asString(obj["text"])
			if text == "" {
				text = fmt.Sprintf("%v", item)
			}
			options = append(options, text)
			if isTrue(obj["correct"]) || isTrue(obj["is_correct"]) {
				correctIndex = i
			}
		}
		return options, correctIndex, true
	}

	// Shape 3: a choices array with text/correct fields.
	if raw, ok := data["choices"].([]any); ok && len(raw) > 0 {
		var options []string
		correctIndex := -1
		for i, item := range raw {
			obj, ok := item.(map[string]any)
			if !ok {
				if s := asString(item); s != "" {
					options = append(options, s)
				}
				continue
			}
			text := asString(obj["text"])
			if text == "" {
				continue
			}
			options = append(options, text)
			if isTrue(obj["correct"]) || isTrue(obj["is_correct"]) {
				correctIndex = i
			}
		}
		if len(options) == 0 {
			return nil, 0, false
		}
		return options, correctIndex, true
	}

	return nil, 0, false
}

// declaredIndex looks for the correct answer index under the names
// generators use for it.
func declaredIndex(data map[string]any) int {
	for _, key := range []string{"correct_index", "correct_option", "answer_index"} {
		if v, ok := data[key]; ok {
			if n, ok := asInt(v); ok {
				return n
			}
		}
	}
	return -1
}

func acceptDebugging(data map[string]any, p *Payload) *Payload {
	code, present := data["buggy_code"]
	if !present {
		return nil
	}
	p.BuggyCode = asString(code)
	if p.BuggyCode == "" {
		p.BuggyCode = emptyCodePlaceholder
	}
	p.BugDescription = asString(data["bug_description"])
	p.FixExplanation = asString(data["fix_explanation"])
	if p.Hint == "" {
		p.Hint = p.BugDescription
	}
	return p
}

func acceptCoding(data map[string]any, p *Payload) *Payload {
	stub, ok := data["code_stub"]
	if !ok {
		stub, ok = data["function_template"]
	}
	if !ok {
		return nil
	}
	p.CodeStub = asString(stub)
	if p.CodeStub == "" {
		p.CodeStub = emptyCodePlaceholder
	}

	p.TestCases = parseTestCases(data["test_cases"])
	if len(p.TestCases) == 0 {
		p.TestCases = []domain.TestCase{{Input: "example", Expected: "example"}}
	}
	return p
}

func acceptFillInBlank(data map[string]any, p *Payload) *Payload {
	tmpl, ok := data["code_template"]
	if !ok {
		tmpl, ok = data["code_stub"]
	}
	if !ok {
		return nil
	}
	p.CodeTemplate = asString(tmpl)
	if p.CodeTemplate == "" {
		return nil
	}

	p.Blanks = parseBlanks(data["blanks"])
	if len(p.Blanks) == 0 {
		p.Blanks = []domain.Blank{{ID: "1", CorrectAnswers: []string{"answer"}}}
	}
	return p
}

func parseTestCases(v any) []domain.TestCase {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	var cases []domain.TestCase
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		input := stringify(obj["input"])
		expected := stringify(obj["expected"])
		if expected == "" {
			expected = stringify(obj["output"])
		}
		if input == "" && expected == "" {
			continue
		}
		cases = append(cases, domain.TestCase{Input: input, Expected: expected})
	}
	return cases
}

func parseBlanks(v any) []domain.Blank {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	var blanks []domain.Blank
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		blank := domain.Blank{
			ID:          asString(obj["id"]),
			Hint:        asString(obj["hint"]),
			Explanation: asString(obj["explanation"]),
		}
		if blank.ID == "" {
			blank.ID = strconv.Itoa(i + 1)
		}
		if answers, ok := obj["correct_answers"].([]any); ok {
			for _, a := range answers {
				if s := stringify(a); s != "" {
					blank.CorrectAnswers = append(blank.CorrectAnswers, s)
				}
			}
		}
		if single := stringify(obj["correct_answer"]); single != "" {
			blank.CorrectAnswers = append(blank.CorrectAnswers, single)
		}
		if len(blank.CorrectAnswers) == 0 {
			continue
		}
		blanks = append(blanks, blank)
	}
	return blanks
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// stringify renders JSON values as text the execution harness can
// decode back to the original value: scalars keep their literal form
// and compound values stay JSON.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		if data, err := json.Marshal(t); err == nil {
			return string(data)
		}
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func isTrue(v any) bool {
	b, _ := v.(bool)
	return b
}

func stringSlice(raw []any) ([]string, bool) {
	var out []string
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
