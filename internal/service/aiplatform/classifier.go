package aiplatform

import (
	"strings"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
)

// Input is the metadata bundle a classifier inspects.
type Input struct {
	DisplayText string
	ClientID    string
	SourceCode  string
}

// FromMetadata builds classifier input from an automation's platform metadata.
func FromMetadata(m automation.PlatformMetadata) Input {
	return Input{
		DisplayText: m.DisplayText(),
		ClientID:    m.ClientIdentifier(),
		SourceCode:  m.SourceCode(),
	}
}

// Result is a classification verdict. Provider is empty when nothing matched
// and ProviderUnknown when only generic AI keywords matched.
type Result struct {
	Detected   bool
	Provider   Provider
	Confidence int
	Matched    string
}

// Classifier runs the ordered provider cascade. It is stateless and pure:
// identical input always yields an identical result.
type Classifier struct{}

// NewClassifier constructs a classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify inspects a metadata bundle for AI provider markers. The cascade
// runs in two tiers across the priority-ordered matcher list: all marker
// patterns first, then all hint patterns, so a high-specificity match on a
// later provider beats a hint on an earlier one. Generic keywords yield an
// unknown-provider match at lower confidence. Empty input is not an error; it
// returns a not-detected result.
func (c *Classifier) Classify(in Input) Result {
	haystack := strings.ToLower(in.DisplayText + "\n" + in.ClientID + "\n" + in.SourceCode)
	if strings.TrimSpace(haystack) == "" {
		return Result{}
	}

	for _, m := range matchers {
		for _, marker := range m.markers {
			if strings.Contains(haystack, marker) {
				return Result{Detected: true, Provider: m.provider, Confidence: ConfidenceMarker, Matched: marker}
			}
		}
	}

	for _, m := range matchers {
		for _, hint := range m.hints {
			if strings.Contains(haystack, hint) {
				return Result{Detected: true, Provider: m.provider, Confidence: ConfidenceHint, Matched: hint}
			}
		}
	}

	for _, kw := range genericKeywords {
		if strings.Contains(haystack, kw) {
			return Result{Detected: true, Provider: ProviderUnknown, Confidence: ConfidenceGeneric, Matched: kw}
		}
	}

	for _, tok := range weakTokens {
		if containsToken(haystack, tok) {
			return Result{Detected: true, Provider: ProviderUnknown, Confidence: ConfidenceWeak, Matched: tok}
		}
	}

	return Result{}
}

// containsToken reports whether text contains word as a standalone token,
// delimited by non-alphanumeric runes or the text boundary.
func containsToken(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isAlnum(rune(text[start-1]))
		afterOK := end == len(text) || !isAlnum(rune(text[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
