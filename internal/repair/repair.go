package repair

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/quizforge/quizforge/internal/domain"
)

// Parser converts free-form generator output into a structured
// challenge payload via a cascade of extraction strategies, each tried
// only when the previous one fails to yield a schema-valid payload.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new repair parser
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse runs the repair cascade over raw text. A nil payload with
// domain.ErrUnparseableResponse means hard failure and the caller must
// fall back to templates.
func (p *Parser) Parse(raw string, challengeType domain.ChallengeType) (*Payload, error) {
	if raw == "" {
		return nil, domain.ErrUnparseableResponse
	}

	// Strategy 1: first balanced brace object, lightly repaired.
	if obj := FirstObject(raw); obj != "" {
		if payload := p.tryParse(FixSyntax(obj), challengeType); payload != nil {
			return payload, nil
		}
	}

	// Strategy 2: normalize the whole document and parse it as one.
	cleaned := Normalize(raw)
	if payload := p.tryParse(cleaned, challengeType); payload != nil {
		p.logger.Debug("parsed normalized response", "type", challengeType)
		return payload, nil
	}

	// Strategy 3: scan every brace/bracket block in the cleaned text.
	for i, block := range Blocks(cleaned) {
		if payload := p.tryParse(FixSyntax(block), challengeType); payload != nil {
			p.logger.Debug("parsed extracted block", "type", challengeType, "block", i)
			return payload, nil
		}
	}

	// Strategy 4: the raw, unmodified text.
	if payload := p.tryParse(raw, challengeType); payload != nil {
		return payload, nil
	}

	// Strategy 5: per-key regex extraction.
	if payload := p.extractKeys(raw, challengeType); payload != nil {
		p.logger.Debug("recovered payload via key extraction", "type", challengeType)
		return payload, nil
	}

	return nil, domain.ErrUnparseableResponse
}

func (p *Parser) tryParse(text string, challengeType domain.ChallengeType) *Payload {
	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil
	}
	return accept(data, challengeType)
}

// expectedKeys lists the string fields worth recovering per type when
// all structural parsing has failed.
func expectedKeys(challengeType domain.ChallengeType) []string {
	switch challengeType {
	case domain.ChallengeDebugging:
		return []string{"question", "buggy_code", "bug_description", "hint"}
	case domain.ChallengeCoding:
		return []string{"question", "code_stub", "hint"}
	case domain.ChallengeFillInBlank:
		return []string{"question", "code_template", "hint"}
	default:
		return nil
	}
}

// extractKeys recovers declared string fields one by one with per-key
// regular expressions. Multiple-choice is excluded: options cannot be
// recovered reliably this way.
func (p *Parser) extractKeys(raw string, challengeType domain.ChallengeType) *Payload {
	keys := expectedKeys(challengeType)
	if keys == nil {
		return nil
	}

	data := make(map[string]any)
	for _, key := range keys {
		re := regexp.MustCompile(fmt.Sprintf(`(?s)"%s"\s*:\s*"((?:[^"\\]|\\.)*)"`, key))
		if m := re.FindStringSubmatch(raw); m != nil {
			var value string
			if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &value); err == nil {
				data[key] = value
			} else {
				data[key] = m[1]
			}
		}
	}
	if len(data) == 0 {
		return nil
	}
	return accept(data, challengeType)
}
