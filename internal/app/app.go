// Package app wires configuration into the store, clients and pipeline stages
// shared by the CLI, the scheduler and the dashboard.
package app

import (
	"context"
	"fmt"

	"github.com/content-optimizer/internal/ai"
	"github.com/content-optimizer/internal/config"
	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/notify"
	"github.com/content-optimizer/internal/source"
	"github.com/content-optimizer/internal/source/custom"
	"github.com/content-optimizer/internal/source/rss"
	"github.com/content-optimizer/internal/stage"
	"github.com/content-optimizer/internal/stage/abtester"
	"github.com/content-optimizer/internal/stage/analyzer"
	"github.com/content-optimizer/internal/stage/coach"
	"github.com/content-optimizer/internal/stage/collector"
	"github.com/content-optimizer/internal/stage/generator"
	"github.com/content-optimizer/internal/stage/optimizer"
	"github.com/content-optimizer/internal/stage/reporter"
	"github.com/content-optimizer/internal/storage"
	"github.com/content-optimizer/internal/storage/sheets"
	"github.com/content-optimizer/internal/storage/sqlite"
	"github.com/content-optimizer/pkg/logger"
	"github.com/content-optimizer/pkg/ratelimit"
)

// Stage groups run together by the scheduler
var (
	CollectStages  = []string{collector.Name, generator.Name}
	PipelineStages = []string{optimizer.Name, analyzer.Name, abtester.Name, reporter.Name, coach.Name}
)

// App holds every long-lived component
type App struct {
	Config    *config.Config
	Log       *logger.Logger
	Limiter   *ratelimit.MultiLimiter
	Store     storage.RowStore
	Notifier  notify.Notifier
	Sources   *source.Manager
	Generator *generator.Stage
	Reporter  *reporter.Stage
	Coach     *coach.Stage
	Registry  *stage.Registry
}

// NewLogger builds the logger described by cfg
func NewLogger(cfg config.LoggingConfig) *logger.Logger {
	return logger.New(logger.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: cfg.Output,
	})
}

// NewLimiter builds the shared rate limiter from cfg
func NewLimiter(cfg config.RateLimitConfig) *ratelimit.MultiLimiter {
	return ratelimit.NewLimiter(ratelimit.Rates{
		AnthropicPerMinute: cfg.AnthropicRequestsPerMinute,
		SheetsPerMinute:    cfg.SheetsRequestsPerMinute,
		RSSPerMinute:       cfg.RSSRequestsPerMinute,
	})
}

// OpenStore opens the row store selected by cfg.Driver
func OpenStore(ctx context.Context, cfg config.StoreConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) (storage.RowStore, error) {
	switch cfg.Driver {
	case "sheets":
		log.Info().Msg("Using Google Sheets as row store")
		store, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:      cfg.SpreadsheetID,
			ServiceAccountJSON: cfg.ServiceAccountJSON,
			CredentialsFile:    cfg.CredentialsFile,
		}, limiter, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Google Sheets: %w", err)
		}
		return store, nil
	case "sqlite":
		log.Info().Str("dsn", cfg.DSN).Msg("Using SQLite as row store")
		store, err := sqlite.New(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// New builds the application from cfg. The generative provider is only
// contacted when a stage that needs it runs.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	limiter := NewLimiter(cfg.RateLimit)

	store, err := OpenStore(ctx, cfg.Store, limiter, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Limiter: limiter,
		Store:   store,
		Notifier: notify.NewSlack(notify.SlackConfig{
			WebhookURL: cfg.Notifier.SlackWebhookURL,
			Timeout:    cfg.Notifier.Timeout,
			MaxRetries: 2,
		}, log),
	}

	aiClient := ai.NewClient(cfg.Anthropic, limiter, log)
	expander := ai.NewKeywordExpander(aiClient, cfg.Sources.Custom.ExpansionsPerKeyword, log)
	a.Sources = NewSources(cfg.Sources, expander, cfg.Anthropic.APIKey != "", limiter, log)

	if err := a.buildStages(ai.NewGenerator(aiClient, log)); err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

// NewWith builds the application around an existing store and generator.
// Sources are left empty.
func NewWith(cfg *config.Config, store storage.RowStore, gen generator.ContentGenerator, notifier notify.Notifier, log *logger.Logger) (*App, error) {
	a := &App{
		Config:   cfg,
		Log:      log,
		Limiter:  NewLimiter(cfg.RateLimit),
		Store:    store,
		Notifier: notifier,
		Sources:  source.NewManager(),
	}
	if err := a.buildStages(gen); err != nil {
		return nil, err
	}
	return a, nil
}

// NewSources registers the enabled topic sources. Keywords are expanded by
// the provider only when expand is set.
func NewSources(cfg config.SourcesConfig, expander custom.Expander, expand bool, limiter *ratelimit.MultiLimiter, log *logger.Logger) *source.Manager {
	manager := source.NewManager()

	if cfg.RSS.Enabled {
		for _, src := range rss.NewMultiple(cfg.RSS, limiter, log) {
			manager.Register(src)
		}
	}

	if cfg.Custom.Enabled {
		if !expand {
			expander = nil
		}
		manager.Register(custom.New(cfg.Custom, expander, log))
	}

	return manager
}

func (a *App) buildStages(gen generator.ContentGenerator) error {
	deps := stage.Deps{
		Store:    a.Store,
		Tabs:     a.Config.Tabs,
		Notifier: a.Notifier,
		Log:      a.Log,
	}

	genStage, err := generator.New(deps, gen, a.Config.Generation)
	if err != nil {
		return fmt.Errorf("invalid generation config: %w", err)
	}
	a.Generator = genStage
	a.Reporter = reporter.New(deps)
	a.Coach = coach.New(deps, nil)

	a.Registry = stage.NewRegistry(a.Log)
	a.Registry.Register(collector.New(deps, a.Sources))
	a.Registry.Register(a.Generator)
	a.Registry.Register(optimizer.New(deps))
	a.Registry.Register(analyzer.New(deps, nil))
	a.Registry.Register(abtester.New(deps))
	a.Registry.Register(a.Reporter)
	a.Registry.Register(a.Coach)
	return nil
}

// InitTabs creates every tab with its header, leaving existing data alone
func (a *App) InitTabs(ctx context.Context) error {
	for _, t := range a.Tabs() {
		if err := a.Store.EnsureTab(ctx, t.Name, t.Header); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", t.Name, err)
		}
	}
	return nil
}

// Tab is a configured tab and the header the pipeline expects on it
type Tab struct {
	Name   string   `json:"name"`
	Header []string `json:"header"`
}

// Tabs lists every tab in pipeline order
func (a *App) Tabs() []Tab {
	content := append(append([]string{}, models.ContentHeaders...),
		models.ColOptimizedContent,
		models.ColOptimizationScore,
		models.ColSentiment,
		models.ColSentimentScore,
	)

	tabs := a.Config.Tabs
	return []Tab{
		{Name: tabs.Topics, Header: models.TopicHeaders},
		{Name: tabs.Content, Header: content},
		{Name: tabs.ABTesting, Header: models.ABTestHeaders},
		{Name: tabs.Metrics, Header: models.MetricsHeaders},
		{Name: tabs.Prediction, Header: models.PredictionHeaders},
	}
}

// TabNames lists the configured tab names in pipeline order
func (a *App) TabNames() []string {
	tabs := a.Tabs()
	names := make([]string, 0, len(tabs))
	for _, t := range tabs {
		names = append(names, t.Name)
	}
	return names
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}
