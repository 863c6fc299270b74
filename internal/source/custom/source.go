package custom

import (
	"context"
	"time"

	"github.com/content-optimizer/internal/ai"
	"github.com/content-optimizer/internal/config"
	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/source"
	"github.com/content-optimizer/pkg/logger"
)

// Expander turns a keyword into concrete topic ideas
type Expander interface {
	ExpandKeyword(ctx context.Context, keyword string) ([]*ai.ExpandedTopic, error)
}

// Source implements TopicSource for custom keywords/topics
type Source struct {
	keywords []string
	expander Expander
	now      func() time.Time
	log      *logger.Logger
}

// New creates a new custom source. With a nil expander every keyword is
// returned as a topic verbatim.
func New(cfg config.CustomConfig, expander Expander, log *logger.Logger) *Source {
	return &Source{
		keywords: cfg.Keywords,
		expander: expander,
		now:      time.Now,
		log:      log.WithSource("custom", "keywords"),
	}
}

// Name returns the source name
func (s *Source) Name() string {
	return "custom-keywords"
}

// Type returns "custom"
func (s *Source) Type() string {
	return "custom"
}

// Fetch returns the configured keywords as topics, expanded when possible.
// A keyword whose expansion fails falls back to the keyword itself.
func (s *Source) Fetch(ctx context.Context) ([]*models.RawTopic, error) {
	now := s.now()
	topics := make([]*models.RawTopic, 0, len(s.keywords))

	for _, keyword := range s.keywords {
		if s.expander != nil {
			expanded, err := s.expander.ExpandKeyword(ctx, keyword)
			if err == nil && len(expanded) > 0 {
				for _, e := range expanded {
					topics = append(topics, s.topic(e.Title, e.Description, keyword, now))
				}
				continue
			}
			if err != nil {
				s.log.Warn().Err(err).Str("keyword", keyword).Msg("Keyword expansion failed, using keyword as topic")
			}
		}
		topics = append(topics, s.topic(keyword, "Custom keyword", keyword, now))
	}

	s.log.Info().
		Int("count", len(topics)).
		Msg("Returned custom keyword topics")

	return topics, nil
}

func (s *Source) topic(title, description, keyword string, now time.Time) *models.RawTopic {
	return &models.RawTopic{
		Title:       title,
		Description: description,
		SourceType:  "custom",
		SourceName:  "keywords",
		Keywords:    []string{keyword},
		PublishedAt: now,
	}
}

// HealthCheck always succeeds for custom source
func (s *Source) HealthCheck(ctx context.Context) error {
	return nil
}

// Ensure Source implements source.TopicSource
var _ source.TopicSource = (*Source)(nil)
