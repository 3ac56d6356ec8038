package generator

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/quizforge/quizforge/internal/domain"
)

// MinHintLength is the shortest hint considered usable. Anything
// shorter is replaced with a phrase-bank hint.
const MinHintLength = 10

// FallbackHint produces a hint for a challenge whose generator output
// carried none. Selection is deterministic per (topic, type,
// difficulty) so repeated fallback runs agree.
func FallbackHint(topic string, challengeType domain.ChallengeType, difficulty domain.Difficulty, code string) string {
	var phrases []string
	switch challengeType {
	case domain.ChallengeDebugging:
		phrases = debuggingHints(topic, difficulty, code)
	case domain.ChallengeCoding:
		phrases = codingHints(topic, difficulty, code)
	case domain.ChallengeFillInBlank:
		phrases = fillInBlankHints(topic, difficulty)
	default:
		phrases = multipleChoiceHints(topic, difficulty)
	}

	return phrases[pickIndex(topic, challengeType, difficulty, len(phrases))]
}

func pickIndex(topic string, challengeType domain.ChallengeType, difficulty domain.Difficulty, n int) int {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(topic)))
	h.Write([]byte{0})
	h.Write([]byte(challengeType))
	h.Write([]byte{0})
	h.Write([]byte(difficulty))
	return int(h.Sum32() % uint32(n))
}

func multipleChoiceHints(topic string, difficulty domain.Difficulty) []string {
	switch difficulty {
	case domain.DifficultyEasy:
		return []string{
			fmt.Sprintf("Think about the basic definition of %s.", topic),
			fmt.Sprintf("Consider what %s is primarily used for.", topic),
			fmt.Sprintf("Remember the fundamental concepts of %s.", topic),
			fmt.Sprintf("Focus on the most common use case for %s.", topic),
			fmt.Sprintf("Recall the basic properties of %s.", topic),
		}
	case domain.DifficultyHard:
		return []string{
			fmt.Sprintf("Analyze the advanced applications of %s and their implications.", topic),
			fmt.Sprintf("Consider edge cases and exceptions in how %s is implemented.", topic),
			fmt.Sprintf("Think about optimization considerations related to %s.", topic),
			fmt.Sprintf("Evaluate each option against best practices for %s.", topic),
			fmt.Sprintf("Consider the subtle distinctions between similar concepts related to %s.", topic),
		}
	default:
		return []string{
			fmt.Sprintf("Consider the key characteristics of %s and how they apply in different contexts.", topic),
			fmt.Sprintf("Think about the advantages and limitations of %s.", topic),
			fmt.Sprintf("Analyze how %s compares to related concepts.", topic),
			fmt.Sprintf("Consider both the theoretical and practical aspects of %s.", topic),
			fmt.Sprintf("Look for the option that best aligns with standard %s principles.", topic),
		}
	}
}

func debuggingHints(topic string, difficulty domain.Difficulty, code string) []string {
	var phrases []string
	switch difficulty {
	case domain.DifficultyEasy:
		phrases = []string{
			fmt.Sprintf("Check for syntax errors in the %s implementation.", topic),
			"Look for missing or incorrect variable declarations.",
			"Check if there are any typos in function or variable names.",
			"Verify that all parentheses, brackets, and braces are properly matched.",
			"Make sure all required imports or dependencies are included.",
		}
	case domain.DifficultyHard:
		phrases = []string{
			fmt.Sprintf("Consider edge cases and error handling in this %s implementation.", topic),
			"Look for subtle issues with concurrency or resource management.",
			"Check for performance bottlenecks or inefficient algorithms.",
			"Verify that the code handles all possible input scenarios correctly.",
			"Examine how different components interact with each other.",
		}
	default:
		phrases = []string{
			fmt.Sprintf("Look for logical errors in how %s is being implemented.", topic),
			"Check the control flow and make sure conditions are evaluated correctly.",
			"Verify that the algorithm handles edge cases properly.",
			"Check for off-by-one errors in loops or indexing.",
			"Examine how data is being transformed or processed at each step.",
		}
	}

	if strings.Contains(code, "for") && strings.Contains(code, "range") {
		phrases = append(phrases, "Check the loop range boundaries.")
	}
	if strings.Contains(code, "if") {
		phrases = append(phrases, "Verify the conditional logic in the if statements.")
	}
	if strings.Contains(code, "return") {
		phrases = append(phrases, "Make sure the return statement is returning the correct value.")
	}
	if strings.Contains(code, "=") {
		phrases = append(phrases, "Check the assignment operations for potential issues.")
	}
	if strings.Contains(code, "import") {
		phrases = append(phrases, "Verify that all necessary modules are imported correctly.")
	}

	return phrases
}

func codingHints(topic string, difficulty domain.Difficulty, stub string) []string {
	var phrases []string
	switch difficulty {
	case domain.DifficultyEasy:
		phrases = []string{
			fmt.Sprintf("Start by understanding the basic operations needed for %s.", topic),
			"Break down the problem into simple steps.",
			"Think about the input and output requirements carefully.",
			fmt.Sprintf("Consider using built-in functions or methods related to %s.", topic),
			"Start with a simple approach before optimizing.",
		}
	case domain.DifficultyHard:
		phrases = []string{
			fmt.Sprintf("Consider optimization techniques specific to %s.", topic),
			"Think about the algorithmic complexity and how to minimize it.",
			"Consider multiple approaches and their trade-offs.",
			"Break the problem into subproblems that can be solved independently.",
			"Think about how to handle edge cases and error conditions efficiently.",
		}
	default:
		phrases = []string{
			fmt.Sprintf("Break down the problem into smaller steps involving %s.", topic),
			"Consider the time and space complexity of your solution.",
			"Think about edge cases that might affect your implementation.",
			"Consider using appropriate data structures for efficient operations.",
			"Look for patterns in the problem that can simplify your solution.",
		}
	}

	if strings.Contains(stub, "def") && strings.Contains(stub, "(") && strings.Contains(stub, ")") {
		signature := strings.SplitN(stub, "\n", 2)[0]
		if strings.Contains(signature, ",") {
			phrases = append(phrases, "Pay attention to how you use the multiple parameters in your solution.")
		} else {
			phrases = append(phrases, "Consider what operations you need to perform on the input parameter.")
		}
	}
	if strings.Contains(stub, "return") {
		phrases = append(phrases, "Make sure your return value matches the expected output format.")
	}
	if strings.Contains(stub, "#") {
		phrases = append(phrases, "The comments in the code stub provide important clues about the implementation.")
	}

	return phrases
}

func fillInBlankHints(topic string, difficulty domain.Difficulty) []string {
	switch difficulty {
	case domain.DifficultyEasy:
		return []string{
			fmt.Sprintf("Each blank completes a basic %s construct.", topic),
			"Read the surrounding code to see what each blank must produce.",
			fmt.Sprintf("Recall the standard syntax used for %s.", topic),
			"Think about what value or keyword makes each line valid.",
			"Start with the blanks you are most confident about.",
		}
	case domain.DifficultyHard:
		return []string{
			fmt.Sprintf("Consider how the blanks interact across the whole %s snippet.", topic),
			"Work out the data flowing through each blank before filling it in.",
			fmt.Sprintf("Some blanks require less common %s idioms.", topic),
			"Check that your answers keep the snippet consistent end to end.",
			"Trace the code mentally with your answers in place.",
		}
	default:
		return []string{
			fmt.Sprintf("Think about which %s construct fits each blank.", topic),
			"Use the variable names around each blank as clues.",
			fmt.Sprintf("Consider the typical patterns used with %s.", topic),
			"Each blank should make the surrounding line syntactically valid.",
			"Check the expected behavior of the snippet as a whole.",
		}
	}
}
