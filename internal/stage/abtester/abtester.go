// Package abtester pits each generated text against its rule-based rewrite
// and records the scored pair on the A/B tab.
package abtester

import (
	"context"
	"fmt"
	"strings"

	"github.com/content-optimizer/internal/content"
	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/stage"
)

// Name of the stage
const Name = "abtester"

// Stage appends one A/B test row per content row
type Stage struct {
	deps stage.Deps
}

// New creates the A/B testing stage
func New(deps stage.Deps) *Stage {
	deps.Log = deps.Log.WithStage(Name)
	return &Stage{deps: deps}
}

func (s *Stage) Name() string { return Name }

// TestID numbers a test by run time and the 1-based position of its content row
func TestID(unix int64, n int) string {
	return fmt.Sprintf("AB-%d-%d", unix, n)
}

// Compare scores an item's text against its rewrite for the item's platform.
// Variant A is the original and wins ties.
func Compare(item models.ContentItem) models.ABTest {
	rewrite := content.MakeVariant(item.OriginalText, item.Platform)
	test := models.ABTest{
		A: models.Variant{
			Source: item,
			Label:  models.VariantA,
			Text:   item.OriginalText,
			Score:  content.Score(item.OriginalText),
		},
		B: models.Variant{
			Source: item,
			Label:  models.VariantB,
			Text:   rewrite,
			Score:  content.Score(rewrite),
		},
		Winner: models.VariantA,
	}
	if test.B.Score > test.A.Score {
		test.Winner = models.VariantB
	}
	return test
}

func (s *Stage) Run(ctx context.Context) (*stage.Result, error) {
	res := stage.NewResult(Name)
	log := s.deps.Log.WithRunID(stage.RunIDFrom(ctx))
	tab := s.deps.Tabs.ABTesting

	source, err := s.deps.Store.ReadAll(ctx, s.deps.Tabs.Content)
	if err != nil {
		return res.Finish(), fmt.Errorf("failed to read %s: %w", s.deps.Tabs.Content, err)
	}

	if err := s.deps.Store.EnsureTab(ctx, tab, models.ABTestHeaders); err != nil {
		return res.Finish(), fmt.Errorf("failed to prepare %s: %w", tab, err)
	}

	now := s.deps.Clock()
	timestamp := now.Format(models.TimestampLayout)
	for i, row := range source.Rows {
		res.RowsRead++
		original := row.Text(models.ColGeneratedContent)
		if original == "" {
			res.Skip(nil)
			continue
		}

		platformName := strings.ToLower(row.Text(models.ColPlatform))
		test := Compare(models.ContentItem{
			Topic:        row.Text(models.ColTopic),
			Platform:     models.ParsePlatform(platformName),
			OriginalText: original,
		})

		values := []interface{}{
			TestID(now.Unix(), i+1),
			timestamp,
			test.A.Source.Topic,
			platformName,
			test.A.Text,
			test.B.Text,
			test.A.Score,
			test.B.Score,
			string(test.Winner),
		}
		if err := s.deps.Store.AppendRow(ctx, tab, values); err != nil {
			return res.Finish(), fmt.Errorf("failed to append A/B test: %w", err)
		}
		res.RowsWritten++

		log.Debug().Int("row", row.Index).Int("score_a", test.A.Score).Int("score_b", test.B.Score).Str("winner", string(test.Winner)).Msg("A/B test recorded")
	}

	res.Summary = fmt.Sprintf("⚖️ A/B Testing completed for %d items", res.RowsWritten)
	s.deps.Notify(ctx, res.Summary)

	log.Info().Int("tests", res.RowsWritten).Msg("A/B testing finished")
	return res.Finish(), nil
}
