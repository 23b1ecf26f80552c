package sentiment

import (
	"sort"
	"strings"
	"unicode"

	"github.com/bbalet/stopwords"
	"github.com/jonreiter/govader"
)

// Assessment buckets for a compound polarity score.
// Thresholds are inclusive: 0.05 is Positive, -0.05 is Negative.
const (
	AssessmentPositive = "Positive"
	AssessmentNegative = "Negative"
	AssessmentNeutral  = "Neutral"

	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Analyzer scores free text with a VADER lexicon model
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		vader: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Compound returns the VADER compound polarity score in [-1, 1]
func (a *Analyzer) Compound(text string) float64 {
	return a.vader.PolarityScores(text).Compound
}

// Classify buckets a compound score into Positive, Negative or Neutral
func Classify(score float64) string {
	switch {
	case score >= positiveThreshold:
		return AssessmentPositive
	case score <= negativeThreshold:
		return AssessmentNegative
	default:
		return AssessmentNeutral
	}
}

// Themes returns the n most frequent non-stopword alphabetic tokens of text,
// most frequent first. Ties keep first-occurrence order so output is stable.
func Themes(text string, n int) []string {
	cleaned := stopwords.CleanString(strings.ToLower(text), "en", false)

	tokens := strings.FieldsFunc(cleaned, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	counts := make(map[string]int)
	order := make(map[string]int)
	words := make([]string, 0)
	for _, tok := range tokens {
		if len(tok) < 2 {
			continue
		}
		if _, seen := counts[tok]; !seen {
			order[tok] = len(words)
			words = append(words, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return order[words[i]] < order[words[j]]
	})

	if n > len(words) {
		n = len(words)
	}
	return words[:n]
}
