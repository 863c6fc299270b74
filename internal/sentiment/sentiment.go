// Package sentiment classifies text with a word-list lexicon.
package sentiment

import (
	"regexp"
	"strings"

	"github.com/content-optimizer/internal/models"
)

// MaxMagnitude bounds the sentiment score to [-MaxMagnitude, MaxMagnitude]
const MaxMagnitude = 3

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Lexicon holds the positive and negative word sets
type Lexicon struct {
	Positive map[string]struct{}
	Negative map[string]struct{}
}

// NewLexicon builds a lexicon from word lists. Words are lowercased.
func NewLexicon(positive, negative []string) Lexicon {
	return Lexicon{
		Positive: toSet(positive),
		Negative: toSet(negative),
	}
}

// DefaultLexicon returns the built-in English marketing lexicon
func DefaultLexicon() Lexicon {
	return NewLexicon(
		[]string{
			"good", "great", "excellent", "amazing", "awesome",
			"love", "best", "positive", "success", "improved",
			"powerful", "efficient", "innovative",
		},
		[]string{
			"bad", "poor", "worst", "hate", "terrible",
			"boring", "awful", "negative", "fail", "problem",
			"slow", "difficult",
		},
	)
}

// Classifier scores text against a lexicon
type Classifier struct {
	lexicon Lexicon
}

// NewClassifier creates a classifier for the given lexicon
func NewClassifier(lexicon Lexicon) *Classifier {
	return &Classifier{lexicon: lexicon}
}

var defaultClassifier = NewClassifier(DefaultLexicon())

// Classify scores text with the default lexicon
func Classify(text string) models.SentimentResult {
	return defaultClassifier.Classify(text)
}

// Classify counts distinct tokens found in each word set. Repeated words count once.
func (c *Classifier) Classify(text string) models.SentimentResult {
	tokens := toSet(tokenPattern.FindAllString(text, -1))

	score := 0
	for tok := range tokens {
		if _, ok := c.lexicon.Positive[tok]; ok {
			score++
		}
		if _, ok := c.lexicon.Negative[tok]; ok {
			score--
		}
	}

	if score > MaxMagnitude {
		score = MaxMagnitude
	}
	if score < -MaxMagnitude {
		score = -MaxMagnitude
	}

	return models.SentimentResult{Label: LabelFor(score), Score: score}
}

// LabelFor derives the label from the sign of a score
func LabelFor(score int) models.SentimentLabel {
	switch {
	case score > 0:
		return models.SentimentPositive
	case score < 0:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
