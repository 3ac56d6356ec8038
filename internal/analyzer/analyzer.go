package analyzer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultWindowChars is the default size of a topic content window
const DefaultWindowChars = 2000

const maxTopics = 10

// Analysis is the result of one pass over a document's text
type Analysis struct {
	Topics   []string
	Snippets []string
	Language string
}

// Analyzer extracts topics, content windows, and code-like snippets
// from raw document text using heuristic pattern matching.
type Analyzer struct {
	headingRegex   *regexp.Regexp
	underlineRegex *regexp.Regexp
	funcRegex      *regexp.Regexp
	classRegex     *regexp.Regexp
	keywordTopics  []keywordTopic
}

type keywordTopic struct {
	topic    string
	keywords []string
}

// NewAnalyzer creates a new content analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		headingRegex:   regexp.MustCompile(`^(#{1,6})\s+(.+)$`),
		underlineRegex: regexp.MustCompile(`^(={3,}|-{3,})\s*$`),
		funcRegex:      regexp.MustCompile(`(?m)^\s*(?:def|func|function)\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`),
		classRegex:     regexp.MustCompile(`(?m)^\s*class\s+([A-Za-z_][A-Za-z0-9_]*)`),
		keywordTopics: []keywordTopic{
			{"Sorting Algorithms", []string{"sort", "bubble", "merge", "quicksort", "insertion"}},
			{"Data Structures", []string{"list", "array", "stack", "queue", "dictionary", "tree", "graph", "hash"}},
			{"Error Handling", []string{"exception", "try", "except", "raise", "error"}},
			{"Object Oriented Programming", []string{"class", "object", "inheritance", "polymorphism", "encapsulation"}},
			{"Functions", []string{"function", "def", "parameter", "argument", "return"}},
			{"Recursion", []string{"recursion", "recursive", "base case"}},
			{"File Handling", []string{"file", "open", "read", "write", "close"}},
			{"Loops And Iteration", []string{"loop", "iterate", "iteration", "while"}},
		},
	}
}

// GenericTopics is emitted when nothing can be extracted, so downstream
// generation never starves for input.
var GenericTopics = []string{
	"Python Basics",
	"Data Structures",
	"Algorithms",
	"Functions",
	"Error Handling",
}

// Analyze runs all extractors over the text and merges their output.
// It never fails: empty or unreadable input yields an empty topic list.
func (a *Analyzer) Analyze(text string) *Analysis {
	if strings.TrimSpace(text) == "" {
		return &Analysis{}
	}

	var candidates []string
	candidates = append(candidates, a.extractHeadings(text)...)
	candidates = append(candidates, a.extractKeywordTopics(text)...)
	candidates = append(candidates, a.extractNamedDefinitions(text)...)

	topics := mergeTopics(candidates)
	if len(topics) == 0 {
		topics = append(topics, GenericTopics...)
	}

	return &Analysis{
		Topics:   topics,
		Snippets: a.ExtractSnippets(text),
		Language: a.DetectLanguage(text),
	}
}

// extractHeadings finds structural headings: markdown hashes, underlined
// titles, and short capitalized lines. The first heading is presumed to
// be the document title and skipped.
func (a *Analyzer) extractHeadings(text string) []string {
	lines := strings.Split(text, "\n")
	var headings []string
	titleSkipped := false

	add := func(h string) {
		if !titleSkipped {
			titleSkipped = true
			return
		}
		headings = append(headings, h)
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := a.headingRegex.FindStringSubmatch(trimmed); m != nil {
			add(strings.TrimSpace(m[2]))
			continue
		}

		// Setext-style heading: a line underlined with === or ---.
		if i+1 < len(lines) && a.underlineRegex.MatchString(strings.TrimSpace(lines[i+1])) {
			add(trimmed)
			continue
		}

		if isHeadingLine(trimmed) {
			add(trimmed)
		}
	}

	return headings
}

// isHeadingLine reports whether a plain line looks like a section
// heading: short, few words, leading capital, no terminating period.
func isHeadingLine(line string) bool {
	if len(line) >= 50 || strings.HasSuffix(line, ".") {
		return false
	}
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > 5 {
		return false
	}
	first := []rune(line)[0]
	return unicode.IsUpper(first)
}

// extractKeywordTopics maps domain keyword sets to topic labels. A topic
// is accepted only when its keywords occur often enough and with enough
// distinct keywords to suggest real coverage.
func (a *Analyzer) extractKeywordTopics(text string) []string {
	const (
		minOccurrences = 3
		minDistinct    = 2
	)

	lower := strings.ToLower(text)
	var topics []string

	for _, kt := range a.keywordTopics {
		occurrences := 0
		distinct := 0
		for _, kw := range kt.keywords {
			n := countWord(lower, kw)
			if n > 0 {
				distinct++
				occurrences += n
			}
		}
		if occurrences >= minOccurrences && distinct >= minDistinct {
			topics = append(topics, kt.topic)
		}
	}

	return topics
}

// extractNamedDefinitions converts named functions and classes into
// noun-phrase topics.
func (a *Analyzer) extractNamedDefinitions(text string) []string {
	var topics []string

	for _, m := range a.funcRegex.FindAllStringSubmatch(text, -1) {
		name := identifierToPhrase(m[1])
		if name != "" {
			topics = append(topics, name+" Implementation")
		}
	}
	for _, m := range a.classRegex.FindAllStringSubmatch(text, -1) {
		name := identifierToPhrase(m[1])
		if name != "" {
			topics = append(topics, name+" Class Design")
		}
	}

	return topics
}

// mergeTopics applies the merge rule: validate, title-case, dedupe
// case-insensitively, drop substring topics, cap the result.
func mergeTopics(candidates []string) []string {
	var cleaned []string
	seen := make(map[string]bool)

	for _, c := range candidates {
		t := normalizeTopic(c)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, t)
	}

	// Drop any topic that is a case-insensitive substring of another.
	var merged []string
	for _, t := range cleaned {
		substring := false
		for _, other := range cleaned {
			if t != other && strings.Contains(strings.ToLower(other), strings.ToLower(t)) {
				substring = true
				break
			}
		}
		if !substring {
			merged = append(merged, t)
		}
	}

	if len(merged) > maxTopics {
		merged = merged[:maxTopics]
	}
	return merged
}

// normalizeTopic validates and cleans a single candidate topic,
// returning "" when the candidate must be rejected.
func normalizeTopic(raw string) string {
	t := strings.TrimSpace(strings.ReplaceAll(raw, "_", " "))
	if len(t) < 3 || len(t) > 50 {
		return ""
	}
	hasAlpha := false
	for _, r := range t {
		if unicode.IsLetter(r) {
			hasAlpha = true
			break
		}
	}
	if !hasAlpha {
		return ""
	}
	return titleCase(t)
}

// Window returns up to n bytes of text centered on the first occurrence
// of topic, or the document prefix when the topic is absent. Cut points
// are pulled back to rune boundaries so the window is always valid
// UTF-8.
func (a *Analyzer) Window(text, topic string, n int) string {
	if n <= 0 {
		n = DefaultWindowChars
	}
	idx := strings.Index(strings.ToLower(text), strings.ToLower(topic))
	if idx < 0 {
		if len(text) > n {
			return text[:runeFloor(text, n)]
		}
		return text
	}

	half := n / 2
	start := idx - half
	if start < 0 {
		start = 0
	}
	end := idx + half
	if end > len(text) {
		end = len(text)
	}
	return text[runeFloor(text, start):runeFloor(text, end)]
}

// runeFloor walks i back to the nearest rune boundary at or before it.
func runeFloor(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// KeyConcepts extracts concepts from definitional sentences
// ("X is a ...", "Y refers to ...") in the text.
func (a *Analyzer) KeyConcepts(text string) []string {
	patterns := []string{
		" is a ", " are a ", " refers to ", " defined as ", " means ",
		" consists of ", " represents ", " describes ", " known as ",
	}

	var concepts []string
	for _, sentence := range splitSentences(text) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < 10 {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, p := range patterns {
			idx := strings.Index(lower, p)
			if idx <= 0 {
				continue
			}
			concept := strings.TrimSpace(sentence[:idx])
			words := strings.Fields(concept)
			if len(words) > 2 && len(words) < 6 {
				concepts = append(concepts, concept)
			}
			break
		}
		if len(concepts) >= 5 {
			break
		}
	}
	return concepts
}

var languageKeywords = map[string][]string{
	"python":     {"def", "import", "elif", "self", "lambda", "except"},
	"java":       {"public", "static", "void", "extends", "implements"},
	"javascript": {"function", "const", "let", "var", "await", "async"},
	"c++":        {"template", "namespace", "std", "cout", "cin"},
	"go":         {"func", "chan", "goroutine", "defer", "struct"},
}

// DetectLanguage guesses the primary programming language in the text
// from keyword counts, defaulting to python.
func (a *Analyzer) DetectLanguage(text string) string {
	lower := strings.ToLower(text)

	best := "python"
	bestCount := 0
	for lang, keywords := range languageKeywords {
		count := countWord(lower, lang)
		for _, kw := range keywords {
			count += countWord(lower, kw)
		}
		if count > bestCount {
			best = lang
			bestCount = count
		}
	}
	return best
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}

// countWord counts whole-word occurrences of w in lower-cased text
func countWord(lower, w string) int {
	count := 0
	for idx := 0; ; {
		i := strings.Index(lower[idx:], w)
		if i < 0 {
			break
		}
		abs := idx + i
		before := abs == 0 || !isWordRune(rune(lower[abs-1]))
		afterIdx := abs + len(w)
		after := afterIdx >= len(lower) || !isWordRune(rune(lower[afterIdx]))
		if before && after {
			count++
		}
		idx = abs + len(w)
		if idx >= len(lower) {
			break
		}
	}
	return count
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// identifierToPhrase turns snake_case or CamelCase identifiers into a
// space-separated phrase.
func identifierToPhrase(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	var sb strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) && !unicode.IsUpper(rune(name[i-1])) && name[i-1] != ' ' {
			sb.WriteRune(' ')
		}
		sb.WriteRune(r)
	}
	return titleCase(strings.TrimSpace(sb.String()))
}

// titleCase upper-cases the first letter of each word and lower-cases
// the rest, matching how extracted topics are presented.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
