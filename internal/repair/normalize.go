package repair

import (
	"regexp"
	"strings"
)

var (
	tripleQuoteRegex  = regexp.MustCompile(`(?s)""".*?"""|'''.*?'''`)
	fenceRegex        = regexp.MustCompile("```(?:json|python)?")
	trailingObjComma  = regexp.MustCompile(`,\s*}`)
	trailingArrComma  = regexp.MustCompile(`,\s*]`)
	danglingColonLine = regexp.MustCompile(`:\s*\n`)
	danglingColonComa = regexp.MustCompile(`:\s*,`)
	missingComma      = regexp.MustCompile(`"\s*\n\s*"`)
	singleQuoted      = regexp.MustCompile(`'([^'\\]*)'`)
	pyTrue            = regexp.MustCompile(`\bTrue\b`)
	pyFalse           = regexp.MustCompile(`\bFalse\b`)
	pyNone            = regexp.MustCompile(`\bNone\b`)
)

// Normalize applies the full set of syntax repairs to a raw response:
// code fences, smart and single quotes, language-native literals,
// trailing commas, and dangling colons.
func Normalize(s string) string {
	s = tripleQuoteRegex.ReplaceAllString(s, "")
	s = fenceRegex.ReplaceAllString(s, "")
	s = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'").Replace(s)
	s = singleQuoted.ReplaceAllString(s, `"$1"`)
	s = pyTrue.ReplaceAllString(s, "true")
	s = pyFalse.ReplaceAllString(s, "false")
	s = pyNone.ReplaceAllString(s, "null")
	s = FixSyntax(s)
	return strings.TrimSpace(s)
}

// FixSyntax repairs local JSON syntax slips without touching quoting
// style: empty values after a colon, missing commas between string
// fields, and trailing commas.
func FixSyntax(s string) string {
	s = danglingColonComa.ReplaceAllString(s, `: "",`)
	s = danglingColonLine.ReplaceAllString(s, ": \"\",\n")
	s = missingComma.ReplaceAllString(s, "\",\n\"")
	s = trailingObjComma.ReplaceAllString(s, "}")
	s = trailingArrComma.ReplaceAllString(s, "]")
	return s
}

// FirstObject extracts the first balanced brace-delimited object from
// text by counting braces, ignoring braces inside string literals.
// Returns "" when no balanced object exists.
func FirstObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

var (
	objBlockRegex = regexp.MustCompile(`(?s)\{.*?\}`)
	arrBlockRegex = regexp.MustCompile(`(?s)\[.*?\]`)
)

// Blocks scans the text for every brace- and bracket-delimited
// substring, in that order.
func Blocks(text string) []string {
	var blocks []string
	blocks = append(blocks, objBlockRegex.FindAllString(text, -1)...)
	blocks = append(blocks, arrBlockRegex.FindAllString(text, -1)...)
	return blocks
}
