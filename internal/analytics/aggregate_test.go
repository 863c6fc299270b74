package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/content-optimizer/internal/models"
)

func rows(fields ...map[string]string) []models.Row {
	out := make([]models.Row, 0, len(fields))
	for i, f := range fields {
		out = append(out, models.Row{Index: i + 2, Fields: f})
	}
	return out
}

func TestAggregateEmpty(t *testing.T) {
	snap := Aggregate(nil)
	assert.Equal(t, models.MetricsSnapshot{}, snap)
}

func TestAggregateSentimentPercentages(t *testing.T) {
	snap := Aggregate(rows(
		map[string]string{"Sentiment": "Positive"},
		map[string]string{"Sentiment": "Negative"},
		map[string]string{"Sentiment": "Positive"},
	))

	assert.Equal(t, 66.7, snap.PositivePct)
	assert.Equal(t, 33.3, snap.NegativePct)
	assert.Equal(t, 0.0, snap.NeutralPct)
	assert.Equal(t, 3, snap.TotalItems)
	assert.Equal(t, 0.0, snap.AvgSentiment)
	assert.Equal(t, 0.0, snap.AvgEngagementScore)
}

func TestAggregateAbsentFieldsAreZero(t *testing.T) {
	snap := Aggregate(rows(
		map[string]string{"Topic": "a"},
		map[string]string{"Topic": "b"},
	))

	assert.Equal(t, models.MetricsSnapshot{TotalItems: 2}, snap)
}

func TestAggregateFullRows(t *testing.T) {
	input := rows(
		map[string]string{"Sentiment": "Positive", "Sentiment_Score": "3", "Platform": "twitter", "Optimization_Score": "8"},
		map[string]string{"Sentiment": "Neutral", "Sentiment_Score": "0", "Platform": "reddit", "Optimization_Score": "6"},
		map[string]string{"Sentiment": "Negative", "Sentiment_Score": "-3", "Platform": "Twitter", "Optimization_Score": "n/a"},
		map[string]string{"Sentiment": "", "Sentiment_Score": "", "Platform": "youtube", "Optimization_Score": "10"},
	)

	snap := Aggregate(input)

	assert.Equal(t, 25.0, snap.PositivePct)
	assert.Equal(t, 25.0, snap.NeutralPct)
	assert.Equal(t, 25.0, snap.NegativePct)
	assert.Equal(t, 0.0, snap.AvgSentiment)
	assert.Equal(t, 1, snap.TwitterPosts)
	assert.Equal(t, 1, snap.RedditPosts)
	assert.Equal(t, 1, snap.YouTubePosts)
	assert.Equal(t, 6.0, snap.AvgOptimizationScore)
	// engagement: (8+10)/2, (6+5)/2, (0+0)/2, (10+5)/2 -> 9, 5.5, 0, 7.5
	assert.Equal(t, 5.5, snap.AvgEngagementScore)
	assert.Equal(t, 4, snap.TotalItems)
}

func TestAggregateEngagementNeedsBothFields(t *testing.T) {
	snap := Aggregate(rows(
		map[string]string{"Optimization_Score": "8"},
		map[string]string{"Optimization_Score": "4"},
	))
	assert.Equal(t, 6.0, snap.AvgOptimizationScore)
	assert.Equal(t, 0.0, snap.AvgEngagementScore)
}

func TestAggregateNonFiniteScoresAreZero(t *testing.T) {
	snap := Aggregate(rows(
		map[string]string{"Sentiment_Score": "NaN", "Optimization_Score": "8"},
		map[string]string{"Sentiment_Score": "2", "Optimization_Score": "nan"},
		map[string]string{"Sentiment_Score": "-Inf", "Optimization_Score": "Infinity"},
	))

	// sentiment 0, 2, 0; optimization 8, 0, 0
	assert.Equal(t, 0.67, snap.AvgSentiment)
	assert.Equal(t, 2.67, snap.AvgOptimizationScore)
	// engagement: (8+5)/2, (0+8.33)/2, (0+5)/2 -> 6.5, 4.17, 2.5
	assert.Equal(t, 4.39, snap.AvgEngagementScore)

	_, err := json.Marshal(snap.Values())
	assert.NoError(t, err)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	input := rows(map[string]string{"Sentiment_Score": "abc", "Optimization_Score": "5"})
	Aggregate(input)
	assert.Equal(t, "abc", input[0].Fields["Sentiment_Score"])
}

func TestEngagementScore(t *testing.T) {
	assert.Equal(t, 5.0, EngagementScore(0, 3))
	assert.Equal(t, 0.0, EngagementScore(0, -3))
	assert.Equal(t, 10.0, EngagementScore(10, 3))
}
