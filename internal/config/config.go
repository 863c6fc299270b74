package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Store      StoreConfig      `mapstructure:"store"`
	Tabs       TabsConfig       `mapstructure:"tabs"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
	Sources    SourcesConfig    `mapstructure:"sources"`
	Generation GenerationConfig `mapstructure:"generation"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// StoreConfig selects and configures the row store
type StoreConfig struct {
	Driver             string `mapstructure:"driver"` // sheets or sqlite
	SpreadsheetID      string `mapstructure:"spreadsheet_id"`
	CredentialsFile    string `mapstructure:"credentials_file"`
	ServiceAccountJSON string `mapstructure:"service_account_json"`
	DSN                string `mapstructure:"dsn"` // sqlite file path
}

// TabsConfig names the tabs each stage reads and writes
type TabsConfig struct {
	Topics     string `mapstructure:"topics"`
	Content    string `mapstructure:"content"`
	ABTesting  string `mapstructure:"ab_testing"`
	Metrics    string `mapstructure:"metrics"`
	Prediction string `mapstructure:"prediction"`
}

// AnthropicConfig holds Claude API settings
type AnthropicConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// NotifierConfig holds Slack webhook settings. An empty URL disables notifications.
type NotifierConfig struct {
	SlackWebhookURL string        `mapstructure:"slack_webhook_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// SourcesConfig holds all topic source configurations
type SourcesConfig struct {
	RSS    RSSConfig    `mapstructure:"rss"`
	Custom CustomConfig `mapstructure:"custom"`
}

// RSSConfig holds RSS feed settings
type RSSConfig struct {
	Enabled bool      `mapstructure:"enabled"`
	Feeds   []RSSFeed `mapstructure:"feeds"`
	MaxAge  string    `mapstructure:"max_age"`
}

// RSSFeed represents a single RSS feed
type RSSFeed struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// CustomConfig holds custom keyword settings
type CustomConfig struct {
	Enabled              bool     `mapstructure:"enabled"`
	Keywords             []string `mapstructure:"keywords"`
	ExpansionsPerKeyword int      `mapstructure:"expansions_per_keyword"`
}

// GenerationConfig controls content generation and rewriting
type GenerationConfig struct {
	Platforms       []string `mapstructure:"platforms"`
	MaxTopicsPerRun int      `mapstructure:"max_topics_per_run"`
}

// SchedulerConfig holds scheduler settings
type SchedulerConfig struct {
	CollectCron  string `mapstructure:"collect_cron"`  // collector + generator
	PipelineCron string `mapstructure:"pipeline_cron"` // optimizer through coach
}

// DashboardConfig holds HTTP dashboard settings
type DashboardConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	AnthropicRequestsPerMinute float64 `mapstructure:"anthropic_requests_per_minute"`
	SheetsRequestsPerMinute    float64 `mapstructure:"sheets_requests_per_minute"`
	RSSRequestsPerMinute       float64 `mapstructure:"rss_requests_per_minute"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout or file path
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Load .env file if present (ignore errors if not found)
	_ = godotenv.Load()
	_ = godotenv.Load(".env.local")

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".content-optimizer"))
		}
	}

	v.SetEnvPrefix("CONTENTOPT")
	v.AutomaticEnv()

	// Explicit bindings for nested keys (Viper doesn't auto-bind underscored nested keys).
	// The bare names are the ones existing deployments already export.
	bind(v, "store.driver", "CONTENTOPT_STORE_DRIVER")
	bind(v, "store.spreadsheet_id", "CONTENTOPT_STORE_SPREADSHEET_ID", "SPREADSHEET_ID")
	bind(v, "store.credentials_file", "CONTENTOPT_STORE_CREDENTIALS_FILE", "GSPREAD_SERVICE_ACCOUNT_FILE")
	bind(v, "store.service_account_json", "CONTENTOPT_STORE_SERVICE_ACCOUNT_JSON")
	bind(v, "store.dsn", "CONTENTOPT_STORE_DSN")
	bind(v, "anthropic.api_key", "CONTENTOPT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	bind(v, "anthropic.model", "CONTENTOPT_ANTHROPIC_MODEL")
	bind(v, "notifier.slack_webhook_url", "CONTENTOPT_NOTIFIER_SLACK_WEBHOOK_URL", "SLACK_WEBHOOK_URL")
	bind(v, "dashboard.addr", "CONTENTOPT_DASHBOARD_ADDR")
	bind(v, "logging.level", "CONTENTOPT_LOGGING_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &config, nil
}

func bind(v *viper.Viper, key string, envs ...string) {
	_ = v.BindEnv(append([]string{key}, envs...)...)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Store defaults
	v.SetDefault("store.driver", "sheets")
	v.SetDefault("store.dsn", "./data/content.db")

	// Tab names used by the existing spreadsheet
	v.SetDefault("tabs.topics", "Topics")
	v.SetDefault("tabs.content", "Content_Creation")
	v.SetDefault("tabs.ab_testing", "AB_Testing")
	v.SetDefault("tabs.metrics", "performance_metrics")
	v.SetDefault("tabs.prediction", "Prediction_Coach")

	// Anthropic defaults
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.temperature", 0.7)

	v.SetDefault("notifier.timeout", "5s")

	// Sources defaults
	v.SetDefault("sources.rss.enabled", false)
	v.SetDefault("sources.rss.max_age", "168h")
	v.SetDefault("sources.custom.enabled", true)
	v.SetDefault("sources.custom.expansions_per_keyword", 3)

	// Generation defaults
	v.SetDefault("generation.platforms", []string{"reddit", "twitter", "youtube"})
	v.SetDefault("generation.max_topics_per_run", 5)

	// Scheduler defaults
	v.SetDefault("scheduler.collect_cron", "0 */6 * * *") // Every 6 hours
	v.SetDefault("scheduler.pipeline_cron", "30 * * * *") // Hourly, after generation settles

	v.SetDefault("dashboard.addr", ":8080")
	v.SetDefault("dashboard.mode", "release")

	// Rate limit defaults
	v.SetDefault("rate_limit.anthropic_requests_per_minute", 10)
	v.SetDefault("rate_limit.sheets_requests_per_minute", 60)
	v.SetDefault("rate_limit.rss_requests_per_minute", 60)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")
}

// Validate checks the settings every command needs: a usable row store
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sheets":
		if c.Store.SpreadsheetID == "" {
			return fmt.Errorf("store.spreadsheet_id is required for the sheets driver")
		}
		if c.Store.ServiceAccountJSON == "" && c.Store.CredentialsFile == "" {
			return fmt.Errorf("store.credentials_file or store.service_account_json is required for the sheets driver")
		}
	case "sqlite":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q (want sheets or sqlite)", c.Store.Driver)
	}
	return nil
}

// ValidateGeneration checks the settings needed to call the generative provider
func (c *Config) ValidateGeneration() error {
	if c.Anthropic.APIKey == "" {
		return fmt.Errorf("anthropic.api_key is required")
	}
	if len(c.Generation.Platforms) == 0 {
		return fmt.Errorf("generation.platforms must list at least one platform")
	}
	return nil
}

// ValidateScheduler reports every missing cron expression at once
func (c *Config) ValidateScheduler() error {
	var errs []error
	if c.Scheduler.CollectCron == "" {
		errs = append(errs, errors.New("scheduler.collect_cron is required"))
	}
	if c.Scheduler.PipelineCron == "" {
		errs = append(errs, errors.New("scheduler.pipeline_cron is required"))
	}
	return errors.Join(errs...)
}
