// Package analytics aggregates scored content rows into metrics snapshots.
package analytics

import (
	"math"

	"github.com/content-optimizer/internal/models"
)

// Field names read from the content tab
const (
	FieldSentiment         = models.ColSentiment
	FieldSentimentScore    = models.ColSentimentScore
	FieldPlatform          = models.ColPlatform
	FieldOptimizationScore = models.ColOptimizationScore
)

// Aggregate computes a snapshot over rows. A field is treated as available
// when at least one row carries it; unavailable fields contribute zeros.
// The snapshot timestamp is left for the caller to stamp.
func Aggregate(rows []models.Row) models.MetricsSnapshot {
	snap := models.MetricsSnapshot{TotalItems: len(rows)}
	if len(rows) == 0 {
		return snap
	}

	total := float64(len(rows))
	hasSentiment := hasField(rows, FieldSentiment)
	hasSentimentScore := hasField(rows, FieldSentimentScore)
	hasPlatform := hasField(rows, FieldPlatform)
	hasOptimization := hasField(rows, FieldOptimizationScore)

	var positive, neutral, negative int
	var sentimentSum, optimizationSum, engagementSum float64

	for _, row := range rows {
		if hasSentiment {
			switch models.SentimentLabel(row.Fields[FieldSentiment]) {
			case models.SentimentPositive:
				positive++
			case models.SentimentNeutral:
				neutral++
			case models.SentimentNegative:
				negative++
			}
		}

		sentiment := row.Float(FieldSentimentScore)
		optimization := row.Float(FieldOptimizationScore)
		sentimentSum += sentiment
		optimizationSum += optimization
		engagementSum += EngagementScore(optimization, sentiment)

		if hasPlatform {
			switch row.Fields[FieldPlatform] {
			case "twitter":
				snap.TwitterPosts++
			case "reddit":
				snap.RedditPosts++
			case "youtube":
				snap.YouTubePosts++
			}
		}
	}

	if hasSentiment {
		snap.PositivePct = round(float64(positive)/total*100, 1)
		snap.NeutralPct = round(float64(neutral)/total*100, 1)
		snap.NegativePct = round(float64(negative)/total*100, 1)
	}
	if hasSentimentScore {
		snap.AvgSentiment = round(sentimentSum/total, 2)
	}
	if hasOptimization {
		snap.AvgOptimizationScore = round(optimizationSum/total, 2)
	}
	if hasOptimization && hasSentimentScore {
		snap.AvgEngagementScore = round(engagementSum/total, 2)
	}

	return snap
}

// EngagementScore averages an optimization score with the sentiment score
// mapped from [-3, 3] onto [0, 10].
func EngagementScore(optimization, sentiment float64) float64 {
	normalized := ((sentiment + 3) / 6) * 10
	return (optimization + normalized) / 2
}

func hasField(rows []models.Row, field string) bool {
	for _, row := range rows {
		if _, ok := row.Fields[field]; ok {
			return true
		}
	}
	return false
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
