package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/quizforge/quizforge/internal/domain"
)

// TopicCategory groups topics whose fallback challenges share content.
type TopicCategory string

const (
	CategoryParadigm        TopicCategory = "paradigm"
	CategoryDataStructure   TopicCategory = "data_structure"
	CategoryAlgorithm       TopicCategory = "algorithm"
	CategoryLanguageFeature TopicCategory = "language_feature"
	CategoryErrorHandling   TopicCategory = "error_handling"
	CategoryWebDevelopment  TopicCategory = "web_development"
	CategoryDatabase        TopicCategory = "database"
	CategoryTesting         TopicCategory = "testing"
	CategoryGeneral         TopicCategory = "general"
)

// categoryKeywords is checked in declaration order; the first category
// with a keyword inside the topic wins.
var categoryKeywords = []struct {
	category TopicCategory
	keywords []string
}{
	{CategoryParadigm, []string{
		"object-oriented", "oop", "functional", "concurrent", "procedural",
		"declarative", "imperative", "event-driven", "aspect-oriented",
	}},
	{CategoryDataStructure, []string{
		"data structure", "list", "array", "dictionary", "set", "tuple", "stack",
		"queue", "linked list", "tree", "graph", "hash", "map", "heap",
	}},
	{CategoryAlgorithm, []string{
		"algorithm", "sort", "search", "recursion", "dynamic programming",
		"greedy", "divide and conquer", "backtracking", "branch and bound",
	}},
	{CategoryLanguageFeature, []string{
		"function", "method", "class", "module", "package", "library",
		"import", "variable", "constant", "parameter", "argument",
	}},
	{CategoryErrorHandling, []string{
		"error handling", "exception", "try except", "debugging",
		"error", "bug", "troubleshooting",
	}},
	{CategoryWebDevelopment, []string{
		"web", "html", "css", "javascript", "frontend", "backend",
		"fullstack", "responsive", "dom", "api", "rest", "graphql",
	}},
	{CategoryDatabase, []string{
		"database", "sql", "nosql", "data storage", "query", "table",
		"record", "field", "index", "join", "transaction",
	}},
	{CategoryTesting, []string{
		"testing", "unit test", "integration test", "test case",
		"assertion", "mock", "stub", "coverage",
	}},
}

// CategoryForTopic determines which specialized fallback template set a
// topic belongs to.
func CategoryForTopic(topic string) TopicCategory {
	lower := strings.ToLower(topic)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.category
			}
		}
	}
	return CategoryGeneral
}

// templateTestCaseCount is the number of fallback test cases per
// difficulty level.
var templateTestCaseCount = map[domain.Difficulty]int{
	domain.DifficultyEasy:   2,
	domain.DifficultyMedium: 3,
	domain.DifficultyHard:   4,
}

// Templates generates challenges without any model. Output is
// deterministic per (topic, type, difficulty) apart from the record id
// and timestamp.
type Templates struct {
	now func() time.Time
}

// NewTemplates creates the static fallback generator
func NewTemplates() *Templates {
	return &Templates{now: time.Now}
}

// Challenge builds a fully populated fallback challenge
func (t *Templates) Challenge(topic string, challengeType domain.ChallengeType, difficulty domain.Difficulty) *domain.Challenge {
	if !difficulty.Valid() {
		difficulty = domain.DifficultyMedium
	}
	category := CategoryForTopic(topic)

	c := &domain.Challenge{
		ID:          domain.NewChallengeID(),
		Topic:       topic,
		Type:        challengeType,
		Difficulty:  difficulty,
		GeneratedBy: domain.GeneratedByStatic,
		CreatedAt:   t.now(),
	}

	switch challengeType {
	case domain.ChallengeDebugging:
		t.fillDebugging(c, topic, category, difficulty)
	case domain.ChallengeCoding:
		t.fillCoding(c, topic, category, difficulty)
	case domain.ChallengeFillInBlank:
		t.fillFillInBlank(c, topic, category, difficulty)
	default:
		c.Type = domain.ChallengeMultipleChoice
		t.fillMultipleChoice(c, topic, category, difficulty)
	}

	if len(c.Hint) < MinHintLength {
		c.Hint = FallbackHint(topic, c.Type, difficulty, c.BuggyCode+c.CodeStub)
	}
	return c
}

func (t *Templates) fillMultipleChoice(c *domain.Challenge, topic string, category TopicCategory, difficulty domain.Difficulty) {
	switch difficulty {
	case domain.DifficultyEasy:
		c.Question = fmt.Sprintf("Which of the following correctly describes %s?", topic)
		c.Hint = fmt.Sprintf("Think about the basic definition of %s.", topic)
	case domain.DifficultyHard:
		c.Question = fmt.Sprintf("Which statement about %s is true in complex scenarios?", topic)
		c.Hint = fmt.Sprintf("Analyze the advanced applications of %s.", topic)
	default:
		c.Question = fmt.Sprintf("What is the most appropriate use case for %s?", topic)
		c.Hint = fmt.Sprintf("Consider the key characteristics of %s.", topic)
	}

	// First option is the correct one.
	switch category {
	case CategoryDataStructure:
		c.Options = []string{
			fmt.Sprintf("%s is used to store and organize data efficiently", topic),
			fmt.Sprintf("%s is only used for mathematical calculations", topic),
			fmt.Sprintf("%s cannot be implemented in Python", topic),
			fmt.Sprintf("%s always has O(1) time complexity for all operations", topic),
		}
	case CategoryAlgorithm:
		c.Options = []string{
			fmt.Sprintf("%s is an efficient approach to solving computational problems", topic),
			fmt.Sprintf("%s can only be used with specific programming languages", topic),
			fmt.Sprintf("%s always requires recursion", topic),
			fmt.Sprintf("%s cannot be optimized further", topic),
		}
	default:
		c.Options = []string{
			fmt.Sprintf("%s is a fundamental concept in programming", topic),
			fmt.Sprintf("%s is only relevant in legacy systems", topic),
			fmt.Sprintf("%s cannot be used in modern applications", topic),
			fmt.Sprintf("%s is only theoretical and has no practical applications", topic),
		}
	}
	c.CorrectIndex = 0
	c.Explanation = c.Options[0] + "."
}

func (t *Templates) fillDebugging(c *domain.Challenge, topic string, category TopicCategory, difficulty domain.Difficulty) {
	switch difficulty {
	case domain.DifficultyEasy:
		c.Question = fmt.Sprintf("Fix the bug in this %s code:", topic)
		c.Hint = fmt.Sprintf("Check for syntax errors in the %s implementation.", topic)
	case domain.DifficultyHard:
		c.Question = fmt.Sprintf("Debug this complex %s code and fix all issues:", topic)
		c.Hint = fmt.Sprintf("Consider edge cases and error handling in this %s implementation.", topic)
	default:
		c.Question = fmt.Sprintf("Identify and fix the error in this %s implementation:", topic)
		c.Hint = fmt.Sprintf("Look for logical errors in how %s is being used.", topic)
	}

	ident := identifier(topic)
	switch category {
	case CategoryDataStructure:
		c.BuggyCode = fmt.Sprintf(`def use_%s(data):
    result = []
    for item in data:
        # BUG: Incorrect implementation of %s
        result.append(item - 1)  # Should be item + 1
    return result`, ident, topic)
		c.BugDescription = "Each element is decremented instead of incremented."
		c.FixExplanation = "Change item - 1 to item + 1 so each element is incremented."
	case CategoryAlgorithm:
		c.BuggyCode = fmt.Sprintf(`def %s_algorithm(arr):
    # BUG: Incorrect loop condition
    for i in range(len(arr) - 1):  # Should be range(len(arr))
        if arr[i] > arr[i+1]:
            arr[i], arr[i+1] = arr[i+1], arr[i]
    return arr`, ident)
		c.BugDescription = "The loop stops one pass short of fully ordering the array."
		c.FixExplanation = "A single pass only bubbles one element into place; repeat the pass until no swaps happen."
	default:
		c.BuggyCode = fmt.Sprintf(`def process_%s(value):
    # BUG: Missing error handling
    result = 10 / value  # Should check if value is zero
    return result`, ident)
		c.BugDescription = "The division is performed without guarding against zero."
		c.FixExplanation = "Check that value is not zero before dividing, or handle the ZeroDivisionError."
	}
}

func (t *Templates) fillCoding(c *domain.Challenge, topic string, category TopicCategory, difficulty domain.Difficulty) {
	switch difficulty {
	case domain.DifficultyEasy:
		c.Question = fmt.Sprintf("Write a function that implements a basic %s operation:", topic)
		c.Hint = fmt.Sprintf("Start by understanding the basic operations needed for %s.", topic)
	case domain.DifficultyHard:
		c.Question = fmt.Sprintf("Create an efficient solution for this advanced %s problem:", topic)
		c.Hint = fmt.Sprintf("Consider optimization techniques specific to %s.", topic)
	default:
		c.Question = fmt.Sprintf("Implement a function that performs the following %s task:", topic)
		c.Hint = fmt.Sprintf("Break down the problem into smaller steps involving %s.", topic)
	}

	ident := identifier(topic)
	var cases []domain.TestCase
	switch category {
	case CategoryDataStructure:
		c.CodeStub = fmt.Sprintf(`def implement_%s(data):
    # Your code here
    result = None

    return result`, ident)
		cases = []domain.TestCase{
			{Input: "[1, 2, 3]", Expected: "[2, 4, 6]"},
			{Input: "[5, 10, 15]", Expected: "[10, 20, 30]"},
			{Input: "[0, -1, -2]", Expected: "[0, -2, -4]"},
			{Input: "[100, 200]", Expected: "[200, 400]"},
		}
	case CategoryAlgorithm:
		c.CodeStub = fmt.Sprintf(`def %s_solution(arr):
    # Your code here
    result = None

    return result`, ident)
		cases = []domain.TestCase{
			{Input: "[3, 1, 4, 1, 5]", Expected: "[1, 1, 3, 4, 5]"},
			{Input: "[9, 8, 7, 6, 5]", Expected: "[5, 6, 7, 8, 9]"},
			{Input: "[2, 2, 1, 1, 3]", Expected: "[1, 1, 2, 2, 3]"},
			{Input: "[5, 3, 8, 4, 2]", Expected: "[2, 3, 4, 5, 8]"},
		}
	default:
		c.CodeStub = fmt.Sprintf(`def solve_%s(input_data):
    # Your code here
    result = None

    return result`, ident)
		cases = []domain.TestCase{
			{Input: "hello", Expected: "HELLO"},
			{Input: "world", Expected: "WORLD"},
			{Input: "python", Expected: "PYTHON"},
			{Input: "programming", Expected: "PROGRAMMING"},
		}
	}
	c.TestCases = cases[:templateTestCaseCount[difficulty]]
}

func (t *Templates) fillFillInBlank(c *domain.Challenge, topic string, category TopicCategory, difficulty domain.Difficulty) {
	switch difficulty {
	case domain.DifficultyEasy:
		c.Question = fmt.Sprintf("Fill in the blanks to complete this basic %s snippet:", topic)
	case domain.DifficultyHard:
		c.Question = fmt.Sprintf("Fill in the blanks to complete this advanced %s snippet:", topic)
	default:
		c.Question = fmt.Sprintf("Fill in the blanks to complete this %s snippet:", topic)
	}

	ident := identifier(topic)
	switch category {
	case CategoryDataStructure:
		c.CodeTemplate = fmt.Sprintf(`def double_%s(data):
    result = ___1___
    for item in data:
        result.___2___(item * 2)
    return result`, ident)
		c.Blanks = []domain.Blank{
			{ID: "1", CorrectAnswers: []string{"[]", "list()"}, Hint: "Start with an empty collection."},
			{ID: "2", CorrectAnswers: []string{"append"}, Hint: "Add each doubled item to the result."},
		}
	case CategoryAlgorithm:
		c.CodeTemplate = fmt.Sprintf(`def %s_search(arr, target):
    for i in ___1___(len(arr)):
        if arr[i] == ___2___:
            return i
    return -1`, ident)
		c.Blanks = []domain.Blank{
			{ID: "1", CorrectAnswers: []string{"range"}, Hint: "Iterate over every index."},
			{ID: "2", CorrectAnswers: []string{"target"}, Hint: "Compare against the value being searched for."},
		}
	default:
		c.CodeTemplate = fmt.Sprintf(`def shout_%s(text):
    result = text.___1___()
    ___2___ result`, ident)
		c.Blanks = []domain.Blank{
			{ID: "1", CorrectAnswers: []string{"upper"}, Hint: "Convert the text to upper case."},
			{ID: "2", CorrectAnswers: []string{"return"}, Hint: "Hand the result back to the caller."},
		}
	}
}

// identifier turns a topic into a snake_case Python identifier fragment
func identifier(topic string) string {
	lower := strings.ToLower(strings.TrimSpace(topic))
	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "topic"
	}
	return out
}
