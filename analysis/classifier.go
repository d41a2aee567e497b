// Package analysis classifies complaint text by category and severity and scores
// textual similarity between complaints.
package analysis

import (
	"strings"

	"civicecho-be/models"
)

// Signals are the optional inputs an NLP collaborator adds to plain text.
type Signals struct {
	Sentiment models.Sentiment
	Entities  []string
}

// Result is the outcome of classifying one complaint.
type Result struct {
	Category  models.ComplaintCategory `json:"category"`
	Severity  models.Severity          `json:"severity"`
	Sentiment models.Sentiment         `json:"sentiment"`
	Entities  []string                 `json:"entities,omitempty"`
	// Fallback is set when a configured collaborator failed and keywords were used instead.
	Fallback bool `json:"fallback,omitempty"`
}

// Classify maps text to a category and severity. With nil signals severity comes
// from keyword tiers; otherwise sentiment drives it and entity names widen the
// category match.
func Classify(text string, signals *Signals) Result {
	if signals == nil {
		return Result{
			Category: CategoryFor(text, nil),
			Severity: SeverityFromText(text),
		}
	}
	return Result{
		Category:  CategoryFor(text, signals.Entities),
		Severity:  SeverityFromSentiment(signals.Sentiment, text),
		Sentiment: signals.Sentiment,
		Entities:  signals.Entities,
	}
}

// CategoryFor returns the first category, in fixed priority order, whose keyword
// set has a substring hit in the text or the entity names.
func CategoryFor(text string, entities []string) models.ComplaintCategory {
	parts := make([]string, 0, len(entities)+1)
	parts = append(parts, strings.ToLower(text))
	for _, e := range entities {
		parts = append(parts, strings.ToLower(e))
	}
	combined := strings.Join(parts, " ")

	if row := categoryMatcher.firstGroup(combined); row >= 0 {
		return categoryTable[row].category
	}
	return models.CategoryOther
}

// SeverityFromText grades severity from keyword tiers alone.
func SeverityFromText(text string) models.Severity {
	switch severityMatcher.firstGroup(strings.ToLower(text)) {
	case 0:
		return models.SeverityCritical
	case 1:
		return models.SeverityHigh
	case 2:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// SeverityFromSentiment combines document sentiment with an urgency keyword check.
func SeverityFromSentiment(s models.Sentiment, text string) models.Severity {
	urgent := urgencyMatcher.any(strings.ToLower(text))
	switch {
	case s.Score < -0.5 || s.Magnitude > 2 || urgent:
		return models.SeverityCritical
	case s.Score < -0.25 || s.Magnitude > 1:
		return models.SeverityHigh
	case s.Score < 0:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
