package prompt

import (
	"fmt"
	"strings"

	"github.com/quizforge/quizforge/internal/domain"
)

// Builder renders deterministic, schema-documented generation
// instructions. It holds no state and performs no I/O.
type Builder struct{}

// NewBuilder creates a new prompt builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Context character budgets per challenge type
const (
	mcContextChars     = 500
	codeContextChars   = 500
	blanksContextChars = 2000
)

// Build renders the instruction for one (topic, type, difficulty)
// tuple. Identical inputs always produce identical output.
func (b *Builder) Build(topic, window string, challengeType domain.ChallengeType, difficulty domain.Difficulty) string {
	switch challengeType {
	case domain.ChallengeDebugging:
		return b.buildDebugging(topic, window, difficulty)
	case domain.ChallengeFillInBlank:
		return b.buildFillInBlank(topic, window, difficulty)
	case domain.ChallengeCoding:
		return b.buildCoding(topic, window, difficulty)
	default:
		return b.buildMultipleChoice(topic, window, difficulty)
	}
}

func (b *Builder) buildMultipleChoice(topic, window string, difficulty domain.Difficulty) string {
	guidance := map[domain.Difficulty]string{
		domain.DifficultyEasy: "For EASY difficulty:\n" +
			"- Question should test basic understanding and recall\n" +
			"- Use straightforward language and clear options\n" +
			"- Focus on fundamental concepts that beginners would know\n" +
			"- Distractors should be clearly incorrect to someone with basic knowledge\n",
		domain.DifficultyMedium: "For MEDIUM difficulty:\n" +
			"- Question should test application of knowledge\n" +
			"- Include some nuance or detail that requires deeper understanding\n" +
			"- Focus on practical applications or common use cases\n" +
			"- Distractors should be plausible but have clear flaws\n",
		domain.DifficultyHard: "For HARD difficulty:\n" +
			"- Question should test analysis, evaluation, or edge cases\n" +
			"- Include complex scenarios or advanced concepts\n" +
			"- Focus on optimization, best practices, or uncommon use cases\n" +
			"- Distractors should be very plausible and require careful analysis to reject\n",
	}

	schema := "{\n" +
		`  "question": "A clear, specific question about the topic",` + "\n" +
		`  "options": ["Option 1", "Option 2", "Option 3", "Option 4"],` + "\n" +
		`  "correct_index": 0,` + "\n" +
		`  "explanation": "Explanation of why the answer is correct"` + "\n" +
		"}"

	task := fmt.Sprintf("Generate a multiple-choice programming question about %s at %s difficulty.", topic, difficulty)
	return render(task, guidanceFor(guidance, difficulty), truncate(window, mcContextChars), schema, false)
}

func (b *Builder) buildDebugging(topic, window string, difficulty domain.Difficulty) string {
	guidance := map[domain.Difficulty]string{
		domain.DifficultyEasy: "For EASY difficulty:\n" +
			"- Include a single, obvious bug that's easy to spot\n" +
			"- Use simple code with clear structure\n" +
			"- Focus on common syntax errors or basic logical mistakes\n" +
			"- Code should be 5-10 lines maximum\n",
		domain.DifficultyMedium: "For MEDIUM difficulty:\n" +
			"- Include 1-2 bugs that require understanding the code flow\n" +
			"- Use moderately complex code with multiple functions\n" +
			"- Focus on logical errors, edge cases, or incorrect algorithm implementation\n" +
			"- Code should be 10-20 lines\n",
		domain.DifficultyHard: "For HARD difficulty:\n" +
			"- Include subtle bugs that require deep understanding\n" +
			"- Use complex code with multiple components or advanced patterns\n" +
			"- Focus on complex logical errors, race conditions, or optimization issues\n" +
			"- Code should be 20-30 lines with appropriate complexity\n",
	}

	schema := "{\n" +
		`  "question": "A clear description of the bug to fix",` + "\n" +
		`  "buggy_code": "def example():\n    return \"buggy code here\"",` + "\n" +
		`  "bug_description": "A specific description of what is wrong",` + "\n" +
		`  "hint": "A hint to help solve the problem"` + "\n" +
		"}"

	task := fmt.Sprintf("Generate a debugging challenge about %s at %s difficulty.", topic, difficulty)
	return render(task, guidanceFor(guidance, difficulty), truncate(window, codeContextChars), schema, true)
}

func (b *Builder) buildCoding(topic, window string, difficulty domain.Difficulty) string {
	guidance := map[domain.Difficulty]string{
		domain.DifficultyEasy: "For EASY difficulty:\n" +
			"- Create a straightforward implementation task\n" +
			"- Focus on basic algorithms or data structures\n" +
			"- Include 1-2 simple test cases with clear inputs/outputs\n" +
			"- Solution should be achievable in 5-10 lines of code\n",
		domain.DifficultyMedium: "For MEDIUM difficulty:\n" +
			"- Create a challenge requiring algorithmic thinking\n" +
			"- Focus on efficiency and proper implementation\n" +
			"- Include 2-3 test cases covering normal and edge cases\n" +
			"- Solution should require 10-20 lines of code\n",
		domain.DifficultyHard: "For HARD difficulty:\n" +
			"- Create a complex challenge requiring optimization\n" +
			"- Focus on advanced algorithms or data structures\n" +
			"- Include 3-4 test cases covering normal, edge, and corner cases\n" +
			"- Solution may require 20-30 lines of code\n",
	}

	schema := "{\n" +
		`  "question": "A clear description of the coding task",` + "\n" +
		`  "code_stub": "def solution(input):\n    # Your code here\n    pass",` + "\n" +
		`  "test_cases": [` + "\n" +
		`    {"input": "test input 1", "expected": "expected output 1"},` + "\n" +
		`    {"input": "test input 2", "expected": "expected output 2"}` + "\n" +
		"  ],\n" +
		`  "hint": "A hint to help solve the problem"` + "\n" +
		"}"

	task := fmt.Sprintf("Generate a coding challenge about %s at %s difficulty.", topic, difficulty)
	return render(task, guidanceFor(guidance, difficulty), truncate(window, codeContextChars), schema, true)
}

func (b *Builder) buildFillInBlank(topic, window string, difficulty domain.Difficulty) string {
	guidance := map[domain.Difficulty]string{
		domain.DifficultyEasy: "For EASY difficulty:\n" +
			"- Use 2 blanks covering fundamental syntax\n" +
			"- Each blank should have an obvious single answer\n" +
			"- Keep the template under 10 lines\n",
		domain.DifficultyMedium: "For MEDIUM difficulty:\n" +
			"- Use 2-3 blanks covering core logic\n" +
			"- Accept common alternative answers for each blank\n" +
			"- Keep the template under 20 lines\n",
		domain.DifficultyHard: "For HARD difficulty:\n" +
			"- Use 3-4 blanks covering subtle details\n" +
			"- Blanks should require understanding the whole template\n" +
			"- Template may use advanced constructs\n",
	}

	schema := "{\n" +
		`  "question": "A clear description of what the completed code should do",` + "\n" +
		`  "code_template": "def area(w, h):\n    return ___1___",` + "\n" +
		`  "blanks": [` + "\n" +
		`    {"id": "1", "correct_answers": ["w * h", "h * w"], "hint": "multiply the sides", "explanation": "area is width times height"}` + "\n" +
		"  ]\n" +
		"}"

	task := fmt.Sprintf("Generate a fill-in-the-blank challenge about %s at %s difficulty.", topic, difficulty)
	return render(task, guidanceFor(guidance, difficulty), truncate(window, blanksContextChars), schema, true)
}

func guidanceFor(guidance map[domain.Difficulty]string, difficulty domain.Difficulty) string {
	if g, ok := guidance[difficulty]; ok {
		return g
	}
	return guidance[domain.DifficultyMedium]
}

// render assembles the shared prompt framing around task-specific parts
func render(task, guidance, context, schema string, escapedCode bool) string {
	var sb strings.Builder

	sb.WriteString("<s>\n")
	sb.WriteString("You are a JSON-generating API that creates programming challenges. You must output ONLY valid JSON with NO additional text.\n")
	sb.WriteString("</s>\n\n")

	sb.WriteString("<TASK>\n")
	sb.WriteString(task)
	sb.WriteString("\n")
	sb.WriteString(guidance)
	sb.WriteString("</TASK>\n\n")

	sb.WriteString("<CONTEXT>\n")
	sb.WriteString(context)
	sb.WriteString("\n</CONTEXT>\n\n")

	sb.WriteString("<OUTPUT_REQUIREMENTS>\n")
	sb.WriteString("1. Output EXACTLY ONE valid JSON object\n")
	sb.WriteString("2. DO NOT include ANY text before or after the JSON\n")
	sb.WriteString("3. DO NOT include markdown code fences (```)\n")
	sb.WriteString("4. DO NOT include explanatory comments\n")
	sb.WriteString("5. DO NOT leave any fields empty or null\n")
	sb.WriteString("6. Use ONLY double quotes for strings\n")
	if escapedCode {
		sb.WriteString("7. For code in JSON strings, escape newlines with \\n and quotes with \\\"\n")
	}
	sb.WriteString("</OUTPUT_REQUIREMENTS>\n\n")

	sb.WriteString("<JSON_SCHEMA>\n")
	sb.WriteString(schema)
	sb.WriteString("\n</JSON_SCHEMA>\n\n")

	sb.WriteString("Output the JSON object now:")
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
