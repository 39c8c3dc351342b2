// Package classify derives heuristic labels (problem-report flag, sentiment,
// urgency, keyword set) from post text and engagement metrics. All matching
// is plain case-insensitive substring containment against fixed word lists,
// so an embedded match like "showdown" containing "down" counts.
package classify

import "strings"

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

func lowerText(title, content string) string {
	return strings.ToLower(title + " " + content)
}

// IsProblemReport reports whether the post text mentions any known
// problem indicator.
func IsProblemReport(title, content string) bool {
	text := lowerText(title, content)
	for _, term := range ProblemTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Sentiment returns the label whose term list has strictly more matches in
// the post text. Ties, including no matches at all, are neutral.
func Sentiment(title, content string) string {
	text := lowerText(title, content)

	negative := countMatches(text, NegativeTerms)
	positive := countMatches(text, PositiveTerms)

	switch {
	case negative > positive:
		return SentimentNegative
	case positive > negative:
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}

func countMatches(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}

// Urgency scores a post from 1 (routine) to 5 (critical): base 1, +3 for an
// urgent term, +2 for score > 50, +1 for comments > 20, +1 if the text
// mentions a duration ("hours" or "days"), capped at 5.
func Urgency(title, content string, score, comments int) int {
	text := lowerText(title, content)

	urgency := 1
	for _, term := range UrgentTerms {
		if strings.Contains(text, term) {
			urgency += 3
			break
		}
	}
	if score > 50 {
		urgency += 2
	}
	if comments > 20 {
		urgency += 1
	}
	if strings.Contains(text, "hours") || strings.Contains(text, "days") {
		urgency += 1
	}

	if urgency > 5 {
		urgency = 5
	}
	return urgency
}

// Keywords returns every service-vocabulary term present in the post text,
// in vocabulary order.
func Keywords(title, content string) []string {
	text := lowerText(title, content)

	var keywords []string
	for _, kw := range ServiceVocabulary {
		if strings.Contains(text, kw) {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
