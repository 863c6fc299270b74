package models

// Column names shared by the stages
const (
	ColTimestamp         = "Timestamp"
	ColTopic             = "Topic"
	ColPlatform          = "Platform"
	ColGeneratedContent  = "Generated_Content"
	ColSource            = "Source"
	ColOptimizedContent  = "Optimized_Content"
	ColOptimizationScore = "Optimization_Score"
	ColSentiment         = "Sentiment"
	ColSentimentScore    = "Sentiment_Score"

	ColTopicID     = "Topic_ID"
	ColDescription = "Description"
	ColURL         = "URL"
	ColStatus      = "Status"

	ColTestID   = "Test_ID"
	ColVariantA = "Variant_A"
	ColVariantB = "Variant_B"
	ColScoreA   = "Score_A"
	ColScoreB   = "Score_B"
	ColWinner   = "Winner"

	ColWinningVariant  = "Winning_Variant"
	ColBestPlatform    = "Best_Platform"
	ColViralScore      = "Viral_Score"
	ColRecommendedTime = "Recommended_Time"
	ColWinningText     = "Winning_Text"
)

// SourceAIGenerated marks rows written by the generator
const SourceAIGenerated = "AI_Generated"

// ContentHeaders is the initial header of the content tab. Later stages
// append their own columns.
var ContentHeaders = []string{
	ColTimestamp,
	ColTopic,
	ColPlatform,
	ColGeneratedContent,
	ColSource,
}

// ABTestHeaders is the column order of the A/B testing tab
var ABTestHeaders = []string{
	ColTestID,
	ColTimestamp,
	ColTopic,
	ColPlatform,
	ColVariantA,
	ColVariantB,
	ColScoreA,
	ColScoreB,
	ColWinner,
}

// PredictionHeaders is the column order of the prediction tab
var PredictionHeaders = []string{
	ColTimestamp,
	ColWinningVariant,
	ColBestPlatform,
	ColViralScore,
	ColRecommendedTime,
	ColWinningText,
}
