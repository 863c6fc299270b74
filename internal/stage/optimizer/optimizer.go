// Package optimizer rewrites generated copy with the platform rules and scores
// each rewrite in place on the content tab.
package optimizer

import (
	"context"
	"fmt"

	"github.com/content-optimizer/internal/content"
	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/stage"
)

// Name of the stage
const Name = "optimizer"

var columns = []string{
	models.ColGeneratedContent,
	models.ColOptimizedContent,
	models.ColOptimizationScore,
}

// Stage fills Optimized_Content and Optimization_Score for every content row
type Stage struct {
	deps stage.Deps
}

// New creates the optimizer stage
func New(deps stage.Deps) *Stage {
	deps.Log = deps.Log.WithStage(Name)
	return &Stage{deps: deps}
}

func (s *Stage) Name() string { return Name }

func (s *Stage) Run(ctx context.Context) (*stage.Result, error) {
	res := stage.NewResult(Name)
	log := s.deps.Log.WithRunID(stage.RunIDFrom(ctx))
	tab := s.deps.Tabs.Content

	if err := s.deps.Store.EnsureTab(ctx, tab, columns); err != nil {
		return res.Finish(), fmt.Errorf("failed to prepare %s: %w", tab, err)
	}

	table, err := s.deps.Store.ReadAll(ctx, tab)
	if err != nil {
		return res.Finish(), fmt.Errorf("failed to read %s: %w", tab, err)
	}

	for _, row := range table.Rows {
		res.RowsRead++
		original := row.Text(models.ColGeneratedContent)
		if original == "" {
			res.Skip(nil)
			continue
		}

		platform := models.ParsePlatform(row.Text(models.ColPlatform))
		optimized := content.Optimize(original, platform)
		score := content.OptimizationScore(original, optimized, platform)

		if err := s.deps.Store.UpdateCell(ctx, tab, row.Index, models.ColOptimizedContent, optimized); err != nil {
			return res.Finish(), fmt.Errorf("failed to update row %d: %w", row.Index, err)
		}
		if err := s.deps.Store.UpdateCell(ctx, tab, row.Index, models.ColOptimizationScore, score); err != nil {
			return res.Finish(), fmt.Errorf("failed to update row %d: %w", row.Index, err)
		}
		res.RowsWritten++

		log.Debug().Int("row", row.Index).Int("score", score).Msg("Row optimized")
	}

	res.Summary = fmt.Sprintf("✅ Content Optimization Completed\nOptimized Rows: %d", res.RowsWritten)
	s.deps.Notify(ctx, res.Summary)

	log.Info().Int("optimized", res.RowsWritten).Msg("Optimization finished")
	return res.Finish(), nil
}
