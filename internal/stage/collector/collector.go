// Package collector gathers new topics from the configured sources into the
// topics tab.
package collector

import (
	"context"
	"fmt"

	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/source"
	"github.com/content-optimizer/internal/stage"
)

// Name of the stage
const Name = "collector"

// Fetcher fetches raw topics from every source
type Fetcher interface {
	FetchAll(ctx context.Context) ([]*models.RawTopic, []error)
}

// Stage appends topics not seen before to the topics tab
type Stage struct {
	deps    stage.Deps
	sources Fetcher
}

// New creates the collector stage
func New(deps stage.Deps, sources Fetcher) *Stage {
	deps.Log = deps.Log.WithStage(Name)
	return &Stage{deps: deps, sources: sources}
}

func (s *Stage) Name() string { return Name }

// Run fetches all sources and appends unseen topics. Source failures are
// recorded on the result; store failures abort the run.
func (s *Stage) Run(ctx context.Context) (*stage.Result, error) {
	res := stage.NewResult(Name)
	log := s.deps.Log.WithRunID(stage.RunIDFrom(ctx))
	tab := s.deps.Tabs.Topics

	if err := s.deps.Store.EnsureTab(ctx, tab, models.TopicHeaders); err != nil {
		return res.Finish(), fmt.Errorf("failed to prepare %s: %w", tab, err)
	}

	table, err := s.deps.Store.ReadAll(ctx, tab)
	if err != nil {
		return res.Finish(), fmt.Errorf("failed to read %s: %w", tab, err)
	}

	known := make(map[string]struct{}, len(table.Rows))
	for _, row := range table.Rows {
		if id := row.Text(models.ColTopicID); id != "" {
			known[id] = struct{}{}
		}
	}

	topics, fetchErrs := s.sources.FetchAll(ctx)
	for _, err := range fetchErrs {
		log.Warn().Err(err).Msg("Source fetch failed")
	}
	res.Errors = append(res.Errors, fetchErrs...)
	res.RowsRead = len(topics)

	timestamp := s.deps.Timestamp()
	for _, t := range topics {
		id := source.ExternalID(t)
		if _, dup := known[id]; dup {
			res.RowsSkipped++
			continue
		}

		row := []interface{}{
			id,
			timestamp,
			t.Title,
			t.Description,
			fmt.Sprintf("%s:%s", t.SourceType, t.SourceName),
			t.URL,
			string(models.TopicStatusPending),
		}
		if err := s.deps.Store.AppendRow(ctx, tab, row); err != nil {
			return res.Finish(), fmt.Errorf("failed to append topic: %w", err)
		}
		known[id] = struct{}{}
		res.RowsWritten++
	}

	res.Summary = fmt.Sprintf("📥 Topic collection completed: %d new topics, %d already known", res.RowsWritten, res.RowsSkipped)
	if len(fetchErrs) > 0 {
		res.Summary += fmt.Sprintf(", %d sources failed", len(fetchErrs))
	}
	s.deps.Notify(ctx, res.Summary)

	log.Info().
		Int("new", res.RowsWritten).
		Int("known", res.RowsSkipped).
		Msg("Topics collected")

	return res.Finish(), nil
}
