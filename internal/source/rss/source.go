package rss

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/content-optimizer/internal/config"
	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/source"
	"github.com/content-optimizer/pkg/logger"
	"github.com/content-optimizer/pkg/ratelimit"
)

// DefaultMaxAge skips feed items older than a week
const DefaultMaxAge = 7 * 24 * time.Hour

// Source implements TopicSource for RSS feeds
type Source struct {
	name    string
	url     string
	maxAge  time.Duration
	parser  *gofeed.Parser
	limiter *ratelimit.MultiLimiter
	now     func() time.Time
	log     *logger.Logger
}

// New creates a new RSS source for a single feed. limiter may be nil.
func New(feed config.RSSFeed, maxAge time.Duration, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Source {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Source{
		name:    feed.Name,
		url:     feed.URL,
		maxAge:  maxAge,
		parser:  gofeed.NewParser(),
		limiter: limiter,
		now:     time.Now,
		log:     log.WithSource("rss", feed.Name),
	}
}

// NewMultiple creates multiple RSS sources from config
func NewMultiple(cfg config.RSSConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) []*Source {
	maxAge, err := time.ParseDuration(cfg.MaxAge)
	if err != nil {
		maxAge = DefaultMaxAge
	}

	sources := make([]*Source, 0, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		sources = append(sources, New(feed, maxAge, limiter, log))
	}
	return sources
}

// Name returns the source name
func (s *Source) Name() string {
	return s.name
}

// Type returns "rss"
func (s *Source) Type() string {
	return "rss"
}

// Fetch parses the feed and returns its recent items as raw topics.
// Items without a title, older than maxAge or repeating an earlier link are dropped.
func (s *Source) Fetch(ctx context.Context) ([]*models.RawTopic, error) {
	s.log.Debug().Str("url", s.url).Msg("Fetching RSS feed")

	feed, err := s.parse(ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.name, err)
	}

	now := s.now()
	links := make(map[string]struct{}, len(feed.Items))
	topics := make([]*models.RawTopic, 0, len(feed.Items))
	for _, item := range feed.Items {
		topic, ok := s.toTopic(item, now)
		if !ok {
			continue
		}
		if topic.URL != "" {
			if _, dup := links[topic.URL]; dup {
				continue
			}
			links[topic.URL] = struct{}{}
		}
		topics = append(topics, topic)
	}

	s.log.Info().
		Int("items", len(feed.Items)).
		Int("kept", len(topics)).
		Msg("Fetched RSS topics")

	return topics, nil
}

// HealthCheck verifies the feed can be fetched and parsed
func (s *Source) HealthCheck(ctx context.Context) error {
	_, err := s.parse(ctx)
	return err
}

func (s *Source) parse(ctx context.Context) (*gofeed.Feed, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, ratelimit.LimiterRSS); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	return s.parser.ParseURLWithContext(s.url, ctx)
}

func (s *Source) toTopic(item *gofeed.Item, now time.Time) (*models.RawTopic, bool) {
	title := cleanText(item.Title)
	if title == "" {
		return nil, false
	}

	publishedAt := now
	switch {
	case item.PublishedParsed != nil:
		publishedAt = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		publishedAt = *item.UpdatedParsed
	}
	if now.Sub(publishedAt) > s.maxAge {
		return nil, false
	}

	return &models.RawTopic{
		Title:       title,
		Description: cleanText(item.Description),
		URL:         strings.TrimSpace(item.Link),
		SourceType:  s.Type(),
		SourceName:  s.name,
		Keywords:    keywords(item),
		PublishedAt: publishedAt,
	}, true
}

// cleanText strips HTML tags and collapses whitespace
func cleanText(text string) string {
	for _, br := range []string{"<br>", "<br/>", "<br />", "</p>"} {
		text = strings.ReplaceAll(text, br, " ")
	}

	var b strings.Builder
	inTag := false
	for _, r := range text {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// keywords collects the item's categories and author, case-insensitively unique
func keywords(item *gofeed.Item) []string {
	candidates := append([]string{}, item.Categories...)
	for _, p := range item.Authors {
		if p != nil {
			candidates = append(candidates, p.Name)
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

var _ source.TopicSource = (*Source)(nil)
