package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/content-optimizer/internal/config"
	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/notify"
	"github.com/content-optimizer/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "app.db")},
		Tabs: config.TabsConfig{
			Topics:     "Topics",
			Content:    "Content_Creation",
			ABTesting:  "AB_Testing",
			Metrics:    "performance_metrics",
			Prediction: "Prediction_Coach",
		},
		Generation: config.GenerationConfig{Platforms: []string{"twitter"}, MaxTopicsPerRun: 1},
	}
}

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, topic string, platform models.Platform) (string, error) {
	return topic + " on " + platform.String(), nil
}

func TestOpenStore(t *testing.T) {
	log := logger.Nop()

	store, err := OpenStore(context.Background(), config.StoreConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "nested", "store.db"),
	}, nil, log)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = OpenStore(context.Background(), config.StoreConfig{Driver: "csv"}, nil, log)
	assert.Error(t, err)

	_, err = OpenStore(context.Background(), config.StoreConfig{Driver: "sheets"}, nil, log)
	assert.Error(t, err)
}

func TestNewRegistersStagesInPipelineOrder(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logger.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, append(append([]string{}, CollectStages...), PipelineStages...), a.Registry.Names())
	assert.Empty(t, a.Sources.Sources())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "postgres"
	_, err := New(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Generation.Platforms = []string{"tiktok"}
	_, err = New(context.Background(), cfg, logger.Nop())
	assert.ErrorIs(t, err, models.ErrUnsupportedPlatform)
}

func TestNewSources(t *testing.T) {
	cfg := config.SourcesConfig{
		RSS: config.RSSConfig{
			Enabled: true,
			Feeds:   []config.RSSFeed{{Name: "a", URL: "https://a"}, {Name: "b", URL: "https://b"}},
		},
		Custom: config.CustomConfig{Enabled: true, Keywords: []string{"seo"}},
	}

	manager := NewSources(cfg, nil, false, nil, logger.Nop())
	assert.Len(t, manager.Sources(), 3)

	cfg.RSS.Enabled = false
	manager = NewSources(cfg, nil, false, nil, logger.Nop())
	assert.Len(t, manager.Sources(), 1)
}

func TestFullPipelineOnSQLite(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	log := logger.Nop()
	store, err := OpenStore(ctx, cfg.Store, nil, log)
	require.NoError(t, err)
	defer store.Close()

	a, err := NewWith(cfg, store, stubGenerator{}, notify.Nop{}, log)
	require.NoError(t, err)
	require.NoError(t, a.InitTabs(ctx))

	require.NoError(t, store.AppendRow(ctx, "Topics", []interface{}{"id-1", "", "Smart email growth", "", "custom:keywords", "", ""}))

	results, err := a.Registry.RunAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 7)
	for _, res := range results {
		assert.Equal(t, results[0].RunID, res.RunID)
	}

	content, err := store.ReadAll(ctx, "Content_Creation")
	require.NoError(t, err)
	require.Len(t, content.Rows, 1)
	row := content.Rows[0]
	assert.Equal(t, "Smart email growth on twitter", row.Fields["Generated_Content"])
	assert.NotEmpty(t, row.Fields["Optimized_Content"])
	assert.NotEmpty(t, row.Fields["Optimization_Score"])
	assert.Equal(t, "Neutral", row.Fields["Sentiment"])

	metrics, err := store.ReadAll(ctx, "performance_metrics")
	require.NoError(t, err)
	assert.Len(t, metrics.Rows, 1)

	predictions, err := store.ReadAll(ctx, "Prediction_Coach")
	require.NoError(t, err)
	assert.Len(t, predictions.Rows, 1)
}

func TestTabs(t *testing.T) {
	a := &App{Config: testConfig(t)}
	tabs := a.Tabs()
	require.Len(t, tabs, 5)
	assert.Equal(t, "Content_Creation", tabs[1].Name)
	assert.Contains(t, tabs[1].Header, models.ColSentimentScore)
}
