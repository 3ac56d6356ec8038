// Package extract turns uploaded artifacts into best-effort plain text
// for analysis. Binary formats are handled by external collaborators;
// this package covers the text-adjacent ones.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quizforge/quizforge/internal/domain"
)

// MinTextLength is the minimum extracted length considered meaningful.
const MinTextLength = 50

// Extractor produces plain text from a named artifact's raw bytes.
type Extractor interface {
	Extract(name string, data []byte) (string, error)
	Supports(name string) bool
}

// TextExtractor handles plain-text and markdown artifacts. Markdown
// formatting is stripped down to readable text while headings are kept
// on their own lines so topic extraction can still see them.
type TextExtractor struct{}

// NewTextExtractor creates a plain-text/markdown extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".rst": true,
}

// Supports reports whether the artifact name has a text extension.
func (e *TextExtractor) Supports(name string) bool {
	lower := strings.ToLower(name)
	for ext := range textExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

var (
	linkRegex     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	imageRegex    = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	emphasisRegex = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+)(\*{1,3}|_{1,3})`)
	htmlTagRegex  = regexp.MustCompile(`<[^>]+>`)
)

// Extract returns the artifact text with markdown decoration removed.
// Fenced code blocks are kept verbatim so snippet extraction still
// works downstream.
func (e *TextExtractor) Extract(name string, data []byte) (string, error) {
	if !e.Supports(name) {
		return "", fmt.Errorf("unsupported artifact %q: %w", name, domain.ErrInvalidInput)
	}

	text := string(data)
	if strings.HasSuffix(strings.ToLower(name), ".md") {
		text = stripMarkdown(text)
	}

	if len(strings.TrimSpace(text)) < MinTextLength {
		return "", domain.ErrEmptyDocument
	}
	return text, nil
}

// stripMarkdown removes inline decoration outside fenced code blocks.
func stripMarkdown(text string) string {
	var out []string
	inFence := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}

		line = imageRegex.ReplaceAllString(line, "")
		line = linkRegex.ReplaceAllString(line, "$1")
		line = emphasisRegex.ReplaceAllString(line, "$2")
		line = htmlTagRegex.ReplaceAllString(line, "")
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}
