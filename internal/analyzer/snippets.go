package analyzer

import (
	"regexp"
	"strings"
)

const maxSnippets = 10

// Matches fenced code blocks with optional language
var fencedBlockRegex = regexp.MustCompile("(?s)```(?:\\w+)?\\s*\\n(.+?)```")

// Inline spans that carry language keywords strongly suggest code
var inlineCodeKeywords = []string{
	"def ", "class ", "function ", "return ", "import ", "for ", "while ",
}

// ExtractSnippets finds code-like regions in the text: fenced blocks,
// indentation runs of at least three lines, and inline keyword spans.
// Results are deduplicated and capped.
func (a *Analyzer) ExtractSnippets(text string) []string {
	var snippets []string

	for _, m := range fencedBlockRegex.FindAllStringSubmatch(text, -1) {
		if block := strings.TrimRight(m[1], "\n"); strings.TrimSpace(block) != "" {
			snippets = append(snippets, block)
		}
	}

	snippets = append(snippets, extractIndentedRuns(text)...)
	snippets = append(snippets, extractInlineSpans(text)...)

	return dedupeSnippets(snippets)
}

// extractIndentedRuns collects consecutive indented lines; runs shorter
// than three lines are discarded as ordinary formatting.
func extractIndentedRuns(text string) []string {
	lines := strings.Split(text, "\n")
	var runs []string
	var current []string

	flush := func() {
		if len(current) >= 3 {
			runs = append(runs, strings.Join(current, "\n"))
		}
		current = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			current = append(current, line)
			continue
		}
		if strings.TrimSpace(line) == "" && len(current) > 0 {
			// Blank lines inside an indented run are tolerated.
			current = append(current, line)
			continue
		}
		flush()
	}
	flush()

	return runs
}

// extractInlineSpans collects single non-indented lines that contain
// language keywords.
func extractInlineSpans(text string) []string {
	var spans []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(line, "    ") {
			continue
		}
		for _, kw := range inlineCodeKeywords {
			if strings.Contains(trimmed, kw) {
				spans = append(spans, trimmed)
				break
			}
		}
	}
	return spans
}

func dedupeSnippets(snippets []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, s := range snippets {
		key := strings.TrimSpace(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, s)
		if len(result) == maxSnippets {
			break
		}
	}
	return result
}
