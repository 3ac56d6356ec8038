package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/quizforge/quizforge/internal/domain"
)

func TestSupports(t *testing.T) {
	e := NewTextExtractor()

	tests := []struct {
		name string
		want bool
	}{
		{"notes.txt", true},
		{"README.md", true},
		{"guide.RST", true},
		{"lecture.pdf", false},
		{"slides.pptx", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		if got := e.Supports(tt.name); got != tt.want {
			t.Errorf("Supports(%q) = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestExtractPlainText(t *testing.T) {
	e := NewTextExtractor()

	input := "Python functions accept parameters and can return values to their callers."
	got, err := e.Extract("notes.txt", []byte(input))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != input {
		t.Errorf("Extract() = %q; want input unchanged", got)
	}
}

func TestExtractStripsMarkdown(t *testing.T) {
	e := NewTextExtractor()

	input := `# Functions

Read the **official docs** and [the tutorial](https://example.com/tutorial) before starting.
![diagram](images/fn.png)
Functions let you reuse code across a program without repeating yourself.
`
	got, err := e.Extract("notes.md", []byte(input))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if strings.Contains(got, "**") {
		t.Errorf("emphasis markers survived: %q", got)
	}
	if strings.Contains(got, "https://example.com") {
		t.Errorf("link target survived: %q", got)
	}
	if !strings.Contains(got, "the tutorial") {
		t.Errorf("link text lost: %q", got)
	}
	if strings.Contains(got, "![") {
		t.Errorf("image survived: %q", got)
	}
	// Headings stay for topic extraction.
	if !strings.Contains(got, "# Functions") {
		t.Errorf("heading lost: %q", got)
	}
}

func TestExtractKeepsFencedCode(t *testing.T) {
	e := NewTextExtractor()

	input := "Intro text explaining what the following function definition does in detail.\n" +
		"```python\ndef shout(s):\n    return s.upper()  # **not emphasis**\n```\n"
	got, err := e.Extract("notes.md", []byte(input))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "# **not emphasis**") {
		t.Errorf("code block was rewritten: %q", got)
	}
}

func TestExtractTooShort(t *testing.T) {
	e := NewTextExtractor()

	_, err := e.Extract("notes.txt", []byte("too short"))
	if !errors.Is(err, domain.ErrEmptyDocument) {
		t.Errorf("Extract() error = %v; want ErrEmptyDocument", err)
	}
}

func TestExtractUnsupported(t *testing.T) {
	e := NewTextExtractor()

	_, err := e.Extract("lecture.pdf", []byte("binary"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Extract() error = %v; want ErrInvalidInput", err)
	}
}
