package models

import "time"

// ContentItem is a generated piece of copy for one topic and platform
type ContentItem struct {
	Topic        string   `json:"topic"`
	Platform     Platform `json:"platform"`
	OriginalText string   `json:"original_text"`
}

// VariantLabel names one side of an A/B comparison
type VariantLabel string

const (
	VariantA VariantLabel = "Variant A"
	VariantB VariantLabel = "Variant B"
)

// Variant is one scored rendition of a content item
type Variant struct {
	Source ContentItem  `json:"source"`
	Label  VariantLabel `json:"label"`
	Text   string       `json:"variant_text"`
	Score  int          `json:"score"`
}

// ABTest pairs an original (A) with its rewrite (B). A wins ties.
type ABTest struct {
	A      Variant      `json:"variant_a"`
	B      Variant      `json:"variant_b"`
	Winner VariantLabel `json:"winner"`
}

// WinningVariant returns the side named by Winner
func (t ABTest) WinningVariant() Variant {
	if t.Winner == VariantB {
		return t.B
	}
	return t.A
}

// SentimentLabel is the three-way sentiment classification
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNeutral  SentimentLabel = "Neutral"
	SentimentNegative SentimentLabel = "Negative"
)

// SentimentResult holds a label and its clamped score in [-3, 3].
// Label is Positive iff Score > 0 and Negative iff Score < 0.
type SentimentResult struct {
	Label SentimentLabel `json:"label"`
	Score int            `json:"score"`
}

// PredictionResult is the best platform for a text and its viral score in [0, 1]
type PredictionResult struct {
	Platform        string  `json:"platform"`
	ViralScore      float64 `json:"viral_score"`
	RecommendedTime string  `json:"recommended_time"`
}

// MetricsHeaders is the fixed column order of the metrics history tab
var MetricsHeaders = []string{
	"Run_Timestamp",
	"Avg_Sentiment",
	"Positive_%",
	"Neutral_%",
	"Negative_%",
	"Twitter_Posts",
	"Reddit_Posts",
	"YouTube_Posts",
	"Avg_Optimization_Score",
	"Avg_Engagement_Score",
	"Total_Items",
}

// MetricsSnapshot is one aggregation run over the content tab.
// Snapshots are appended to the history tab and never updated.
type MetricsSnapshot struct {
	Timestamp            time.Time `json:"timestamp"`
	AvgSentiment         float64   `json:"avg_sentiment"`
	PositivePct          float64   `json:"positive_pct"`
	NeutralPct           float64   `json:"neutral_pct"`
	NegativePct          float64   `json:"negative_pct"`
	TwitterPosts         int       `json:"twitter_posts"`
	RedditPosts          int       `json:"reddit_posts"`
	YouTubePosts         int       `json:"youtube_posts"`
	AvgOptimizationScore float64   `json:"avg_optimization_score"`
	AvgEngagementScore   float64   `json:"avg_engagement_score"`
	TotalItems           int       `json:"total_items"`
}

// Values returns the snapshot as a row in MetricsHeaders order
func (m MetricsSnapshot) Values() []interface{} {
	return []interface{}{
		m.Timestamp.Format(TimestampLayout),
		m.AvgSentiment,
		m.PositivePct,
		m.NeutralPct,
		m.NegativePct,
		m.TwitterPosts,
		m.RedditPosts,
		m.YouTubePosts,
		m.AvgOptimizationScore,
		m.AvgEngagementScore,
		m.TotalItems,
	}
}

// TimestampLayout is the timestamp format written to every tab
const TimestampLayout = "2006-01-02 15:04:05"
