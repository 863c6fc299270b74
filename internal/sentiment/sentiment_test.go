package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/content-optimizer/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		label models.SentimentLabel
		score int
	}{
		{"empty", "", models.SentimentNeutral, 0},
		{"positive", "This is a GREAT tool", models.SentimentPositive, 1},
		{"negative", "a slow and difficult process", models.SentimentNegative, -2},
		{"balanced", "good but bad", models.SentimentNeutral, 0},
		{"duplicates count once", "love love love", models.SentimentPositive, 1},
		{"clamped high", "good great excellent amazing awesome", models.SentimentPositive, 3},
		{"clamped low", "bad poor worst hate terrible", models.SentimentNegative, -3},
		{"punctuation", "Amazing! Innovative, efficient.", models.SentimentPositive, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			assert.Equal(t, tt.label, got.Label)
			assert.Equal(t, tt.score, got.Score)
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	text := "great product, terrible support, awesome team"
	assert.Equal(t, Classify(text), Classify(text))
}

func TestCustomLexicon(t *testing.T) {
	c := NewClassifier(NewLexicon([]string{"Genial"}, []string{"malo"}))

	assert.Equal(t, models.SentimentResult{Label: models.SentimentPositive, Score: 1}, c.Classify("muy genial"))
	assert.Equal(t, models.SentimentResult{Label: models.SentimentNegative, Score: -1}, c.Classify("muy malo"))
	assert.Equal(t, models.SentimentNeutral, c.Classify("great").Label)
}

func TestLabelMatchesSign(t *testing.T) {
	for score := -MaxMagnitude; score <= MaxMagnitude; score++ {
		label := LabelFor(score)
		switch {
		case score > 0:
			assert.Equal(t, models.SentimentPositive, label)
		case score < 0:
			assert.Equal(t, models.SentimentNegative, label)
		default:
			assert.Equal(t, models.SentimentNeutral, label)
		}
	}
}
