package router

import (
	"regexp"
	"strings"
)

// Intent is the request category the heuristic router recognizes
type Intent string

const (
	IntentPrice      Intent = "price"
	IntentSentiment  Intent = "sentiment"
	IntentRumor      Intent = "rumor"
	IntentSmartMoney Intent = "smart_money"
	IntentFullReport Intent = "full_report"
	IntentReddit     Intent = "reddit"
	IntentUnknown    Intent = "unknown"
)

var (
	coinPattern      = regexp.MustCompile(`(?:price|sentiment|rumors?|news|smart money|about|for|of|on)\s+([a-zA-Z0-9\- ]+)`)
	subredditPattern = regexp.MustCompile(`r/([A-Za-z0-9_]+)`)
	alphaToken       = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// DetectIntent guesses the request category and the coin (or subreddit) the
// message is about. It is a deterministic regex heuristic: given the same
// message it always returns the same answer, no model involved.
func DetectIntent(message string) (Intent, string) {
	m := strings.ToLower(message)

	if strings.Contains(m, "reddit") || strings.Contains(m, "subreddit") {
		if match := subredditPattern.FindStringSubmatch(message); match != nil {
			return IntentReddit, match[1]
		}
		return IntentReddit, ""
	}

	coin := extractCoin(m)

	switch {
	case containsAny(m, "price", "market cap", "details", "coingecko"):
		return IntentPrice, coin
	case containsAny(m, "sentiment", "community", "twitter", "feel", "opinion"):
		return IntentSentiment, coin
	case containsAny(m, "rumor", "news", "announcement", "leak", "speculation"):
		return IntentRumor, coin
	case containsAny(m, "smart money", "nansen", "flow", "inflow", "outflow"):
		return IntentSmartMoney, coin
	case containsAny(m, "tell me about", "what's up with", "whats up with", "overview", "summary", "all info", "everything"):
		return IntentFullReport, coin
	case coin != "":
		// A bare coin mention reads as "tell me everything"
		return IntentFullReport, coin
	default:
		return IntentUnknown, ""
	}
}

// extractCoin pulls a candidate coin name from after a trigger phrase, with
// a last-word fallback when no phrase matches
func extractCoin(message string) string {
	if match := coinPattern.FindStringSubmatch(message); match != nil {
		return strings.TrimSpace(match[1])
	}

	tokens := strings.Fields(message)
	if len(tokens) == 0 {
		return ""
	}
	last := strings.TrimRight(tokens[len(tokens)-1], "?!.,")
	if alphaToken.MatchString(last) && len(last) > 2 {
		return last
	}
	return ""
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
