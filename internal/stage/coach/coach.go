// Package coach predicts the best platform and posting time for the winner
// of each A/B test and rewrites the prediction tab.
package coach

import (
	"context"
	"fmt"

	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/stage"
	"github.com/content-optimizer/internal/viral"
	"github.com/content-optimizer/pkg/telemetry"
)

// Name of the stage
const Name = "coach"

// Stage turns the A/B tab into posting recommendations
type Stage struct {
	deps      stage.Deps
	predictor *viral.Predictor
}

// New creates the coach stage. A nil predictor uses the default policy.
func New(deps stage.Deps, predictor *viral.Predictor) *Stage {
	if predictor == nil {
		predictor = viral.Default()
	}
	deps.Log = deps.Log.WithStage(Name)
	return &Stage{deps: deps, predictor: predictor}
}

func (s *Stage) Name() string { return Name }

// Predict compares the two variants of one A/B row. Scores are on the 0-10
// rubric and are scaled to a [0, 1] base.
func (s *Stage) Predict(row models.Row) viral.Comparison {
	return s.predictor.Compare(
		viral.Candidate{Text: row.Text(models.ColVariantA), Score: row.Float(models.ColScoreA) / 10},
		viral.Candidate{Text: row.Text(models.ColVariantB), Score: row.Float(models.ColScoreB) / 10},
	)
}

// Run replaces the prediction tab with one recommendation per A/B row
func (s *Stage) Run(ctx context.Context) (*stage.Result, error) {
	res := stage.NewResult(Name)
	log := s.deps.Log.WithRunID(stage.RunIDFrom(ctx))
	tab := s.deps.Tabs.Prediction

	tests, err := s.deps.Store.ReadAll(ctx, s.deps.Tabs.ABTesting)
	if err != nil {
		return res.Finish(), fmt.Errorf("failed to read %s: %w", s.deps.Tabs.ABTesting, err)
	}
	res.RowsRead = len(tests.Rows)

	if len(tests.Rows) == 0 {
		res.Summary = "🔮 Prediction Coach: no A/B testing data found"
		s.deps.Notify(ctx, res.Summary)
		log.Info().Msg("No A/B tests found, predictions unchanged")
		return res.Finish(), nil
	}

	timestamp := s.deps.Timestamp()
	comparisons := make([]viral.Comparison, len(tests.Rows))
	values := make([][]interface{}, len(tests.Rows))
	for i, row := range tests.Rows {
		cmp := s.Predict(row)
		comparisons[i] = cmp
		values[i] = []interface{}{
			timestamp,
			string(cmp.Winner),
			cmp.Prediction.Platform,
			cmp.Prediction.ViralScore,
			cmp.Prediction.RecommendedTime,
			cmp.WinnerText,
		}

		log.Debug().
			Int("row", row.Index).
			Str("winner", string(cmp.Winner)).
			Str("platform", cmp.Prediction.Platform).
			Float64("viral_score", cmp.Prediction.ViralScore).
			Msg("Prediction computed")
	}

	if err := s.deps.Store.ResetTab(ctx, tab, models.PredictionHeaders, values); err != nil {
		return res.Finish(), fmt.Errorf("failed to write %s: %w", tab, err)
	}
	res.RowsWritten = len(values)
	for _, cmp := range comparisons {
		telemetry.SetViralScore(cmp.Prediction.Platform, cmp.Prediction.ViralScore)
	}

	res.Summary = fmt.Sprintf("🔮 Prediction Coach completed for %d items", res.RowsWritten)
	s.deps.Notify(ctx, res.Summary)

	log.Info().Int("predictions", res.RowsWritten).Msg("Prediction coach finished")
	return res.Finish(), nil
}
