// Package analyzer labels the sentiment of generated copy on the content tab.
package analyzer

import (
	"context"
	"fmt"

	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/sentiment"
	"github.com/content-optimizer/internal/stage"
)

// Name of the stage
const Name = "analyzer"

var columns = []string{
	models.ColGeneratedContent,
	models.ColSentiment,
	models.ColSentimentScore,
}

// Stage fills Sentiment and Sentiment_Score for every content row
type Stage struct {
	deps       stage.Deps
	classifier *sentiment.Classifier
}

// New creates the analyzer stage. A nil classifier uses the default lexicon.
func New(deps stage.Deps, classifier *sentiment.Classifier) *Stage {
	if classifier == nil {
		classifier = sentiment.NewClassifier(sentiment.DefaultLexicon())
	}
	deps.Log = deps.Log.WithStage(Name)
	return &Stage{deps: deps, classifier: classifier}
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
		text := row.Text(models.ColGeneratedContent)
		if text == "" {
			res.Skip(nil)
			continue
		}

		result := s.classifier.Classify(text)
		if err := s.deps.Store.UpdateCell(ctx, tab, row.Index, models.ColSentiment, string(result.Label)); err != nil {
			return res.Finish(), fmt.Errorf("failed to update row %d: %w", row.Index, err)
		}
		if err := s.deps.Store.UpdateCell(ctx, tab, row.Index, models.ColSentimentScore, result.Score); err != nil {
			return res.Finish(), fmt.Errorf("failed to update row %d: %w", row.Index, err)
		}
		res.RowsWritten++

		log.Debug().Int("row", row.Index).Str("label", string(result.Label)).Int("score", result.Score).Msg("Row classified")
	}

	res.Summary = fmt.Sprintf("📊 Sentiment Analysis completed for %d rows", res.RowsWritten)
	s.deps.Notify(ctx, res.Summary)

	log.Info().Int("classified", res.RowsWritten).Msg("Sentiment analysis finished")
	return res.Finish(), nil
}
