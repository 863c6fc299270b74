// Package reporter appends a metrics snapshot of the content tab to the
// metrics history tab.
package reporter

import (
	"context"
	"fmt"

	"github.com/content-optimizer/internal/analytics"
	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/stage"
	"github.com/content-optimizer/pkg/telemetry"
)

// Name of the stage
const Name = "reporter"

// Stage aggregates the content tab into the metrics history
type Stage struct {
	deps stage.Deps
}

// New creates the reporter stage
func New(deps stage.Deps) *Stage {
	deps.Log = deps.Log.WithStage(Name)
	return &Stage{deps: deps}
}

func (s *Stage) Name() string { return Name }

// Snapshot aggregates the content tab without writing anything
func (s *Stage) Snapshot(ctx context.Context) (models.MetricsSnapshot, error) {
	table, err := s.deps.Store.ReadAll(ctx, s.deps.Tabs.Content)
	if err != nil {
		return models.MetricsSnapshot{}, fmt.Errorf("failed to read %s: %w", s.deps.Tabs.Content, err)
	}

	snapshot := analytics.Aggregate(table.Rows)
	snapshot.Timestamp = s.deps.Clock()
	return snapshot, nil
}

// Run appends one snapshot row. History rows are never rewritten; an empty
// content tab appends nothing.
func (s *Stage) Run(ctx context.Context) (*stage.Result, error) {
	res := stage.NewResult(Name)
	log := s.deps.Log.WithRunID(stage.RunIDFrom(ctx))
	tab := s.deps.Tabs.Metrics

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return res.Finish(), err
	}
	res.RowsRead = snapshot.TotalItems

	if snapshot.TotalItems == 0 {
		res.Summary = "📈 Performance Metrics: no content to aggregate"
		s.deps.Notify(ctx, res.Summary)
		log.Info().Msg("No content found, metrics not recorded")
		return res.Finish(), nil
	}

	if err := s.deps.Store.EnsureTab(ctx, tab, models.MetricsHeaders); err != nil {
		return res.Finish(), fmt.Errorf("failed to prepare %s: %w", tab, err)
	}
	if err := s.deps.Store.AppendRow(ctx, tab, snapshot.Values()); err != nil {
		return res.Finish(), fmt.Errorf("failed to append metrics: %w", err)
	}
	res.RowsWritten = 1

	telemetry.SetSnapshot(gauges(snapshot))

	res.Summary = fmt.Sprintf("📈 Performance Metrics Updated\nTotal Items: %d\nAvg Sentiment: %g\nAvg Engagement Score: %g",
		snapshot.TotalItems, snapshot.AvgSentiment, snapshot.AvgEngagementScore)
	s.deps.Notify(ctx, res.Summary)

	log.Info().
		Int("total_items", snapshot.TotalItems).
		Float64("avg_sentiment", snapshot.AvgSentiment).
		Float64("avg_engagement", snapshot.AvgEngagementScore).
		Msg("Metrics recorded")
	return res.Finish(), nil
}

// gauges maps every numeric snapshot column to its value
func gauges(m models.MetricsSnapshot) map[string]float64 {
	return map[string]float64{
		"avg_sentiment":          m.AvgSentiment,
		"positive_pct":           m.PositivePct,
		"neutral_pct":            m.NeutralPct,
		"negative_pct":           m.NegativePct,
		"twitter_posts":          float64(m.TwitterPosts),
		"reddit_posts":           float64(m.RedditPosts),
		"youtube_posts":          float64(m.YouTubePosts),
		"avg_optimization_score": m.AvgOptimizationScore,
		"avg_engagement_score":   m.AvgEngagementScore,
		"total_items":            float64(m.TotalItems),
	}
}
