// Package generator turns pending topics into platform copy in the content tab.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/content-optimizer/internal/ai"
	"github.com/content-optimizer/internal/config"
	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/stage"
)

// Name of the stage
const Name = "generator"

// DefaultMaxTopics bounds a run when the config leaves it unset
const DefaultMaxTopics = 5

// ContentGenerator writes copy about a topic for one platform
type ContentGenerator interface {
	Generate(ctx context.Context, topic string, platform models.Platform) (string, error)
}

// Stage generates content for pending topics
type Stage struct {
	deps      stage.Deps
	gen       ContentGenerator
	platforms []models.Platform
	maxTopics int
}

// New creates the generator stage. Every configured platform must be one the
// generator has a prompt for.
func New(deps stage.Deps, gen ContentGenerator, cfg config.GenerationConfig) (*Stage, error) {
	platforms := make([]models.Platform, 0, len(cfg.Platforms))
	for _, name := range cfg.Platforms {
		p := models.ParsePlatform(name)
		if !ai.Supports(p) {
			return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedPlatform, name)
		}
		platforms = append(platforms, p)
	}
	if len(platforms) == 0 {
		platforms = ai.SupportedPlatforms()
	}

	maxTopics := cfg.MaxTopicsPerRun
	if maxTopics <= 0 {
		maxTopics = DefaultMaxTopics
	}

	deps.Log = deps.Log.WithStage(Name)
	return &Stage{deps: deps, gen: gen, platforms: platforms, maxTopics: maxTopics}, nil
}

func (s *Stage) Name() string { return Name }

// Platforms returns the platforms each topic is generated for
func (s *Stage) Platforms() []models.Platform { return s.platforms }

// Run generates content for up to maxTopics pending topics. A topic is marked
// used once at least one platform succeeded for it.
func (s *Stage) Run(ctx context.Context) (*stage.Result, error) {
	res := stage.NewResult(Name)
	log := s.deps.Log.WithRunID(stage.RunIDFrom(ctx))

	if err := s.prepare(ctx); err != nil {
		return res.Finish(), err
	}

	topics, err := s.deps.Store.ReadAll(ctx, s.deps.Tabs.Topics)
	if err != nil {
		return res.Finish(), fmt.Errorf("failed to read %s: %w", s.deps.Tabs.Topics, err)
	}

	processed := 0
	for _, row := range topics.Rows {
		if processed >= s.maxTopics {
			break
		}
		topic := row.Text(models.ColTopic)
		if topic == "" || models.TopicStatus(row.Text(models.ColStatus)) != models.TopicStatusPending {
			continue
		}
		processed++
		res.RowsRead++

		generated := 0
		for _, platform := range s.platforms {
			text, err := s.gen.Generate(ctx, topic, platform)
			if err != nil {
				if ctx.Err() != nil {
					return res.Finish(), ctx.Err()
				}
				log.Warn().Err(err).Str("topic", topic).Str("platform", platform.String()).Msg("Generation failed")
				res.Skip(err)
				continue
			}
			if err := s.deps.Store.AppendRow(ctx, s.deps.Tabs.Content, s.contentRow(topic, platform, text)); err != nil {
				return res.Finish(), fmt.Errorf("failed to append content: %w", err)
			}
			generated++
			res.RowsWritten++
		}

		if generated == 0 {
			continue
		}
		if err := s.deps.Store.UpdateCell(ctx, s.deps.Tabs.Topics, row.Index, models.ColStatus, string(models.TopicStatusUsed)); err != nil {
			return res.Finish(), fmt.Errorf("failed to mark topic used: %w", err)
		}
	}

	res.Summary = fmt.Sprintf("✍️ Content generation completed: %d items for %d topics", res.RowsWritten, processed)
	if res.RowsSkipped > 0 {
		res.Summary += fmt.Sprintf(", %d failed", res.RowsSkipped)
	}
	s.deps.Notify(ctx, res.Summary)

	log.Info().Int("topics", processed).Int("items", res.RowsWritten).Msg("Content generated")
	return res.Finish(), nil
}

// GenerateOne generates copy for a single topic and platform outside the
// batch, appends it to the content tab, and returns the text.
func (s *Stage) GenerateOne(ctx context.Context, topic, platformName string) (string, error) {
	platform := models.ParsePlatform(platformName)
	if !ai.Supports(platform) {
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedPlatform, platformName)
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("topic is required")
	}

	if err := s.deps.Store.EnsureTab(ctx, s.deps.Tabs.Content, models.ContentHeaders); err != nil {
		return "", fmt.Errorf("failed to prepare %s: %w", s.deps.Tabs.Content, err)
	}

	text, err := s.gen.Generate(ctx, topic, platform)
	if err != nil {
		return "", err
	}
	if err := s.deps.Store.AppendRow(ctx, s.deps.Tabs.Content, s.contentRow(topic, platform, text)); err != nil {
		return "", fmt.Errorf("failed to append content: %w", err)
	}

	s.deps.Notify(ctx, fmt.Sprintf("✍️ Generated %s content for: %s", platform, topic))
	return text, nil
}

func (s *Stage) prepare(ctx context.Context) error {
	if err := s.deps.Store.EnsureTab(ctx, s.deps.Tabs.Topics, models.TopicHeaders); err != nil {
		return fmt.Errorf("failed to prepare %s: %w", s.deps.Tabs.Topics, err)
	}
	if err := s.deps.Store.EnsureTab(ctx, s.deps.Tabs.Content, models.ContentHeaders); err != nil {
		return fmt.Errorf("failed to prepare %s: %w", s.deps.Tabs.Content, err)
	}
	return nil
}

func (s *Stage) contentRow(topic string, platform models.Platform, text string) []interface{} {
	return []interface{}{
		s.deps.Timestamp(),
		topic,
		platform.String(),
		text,
		models.SourceAIGenerated,
	}
}
