package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/content-optimizer/internal/models"
)

// maxConcurrentFetches bounds how many sources are fetched at once
const maxConcurrentFetches = 4

// TopicSource defines the interface for topic discovery sources
type TopicSource interface {
	// Name returns the unique name of this source
	Name() string

	// Type returns the source type (rss, custom)
	Type() string

	// Fetch retrieves topics from the source
	Fetch(ctx context.Context) ([]*models.RawTopic, error)

	// HealthCheck verifies the source is accessible
	HealthCheck(ctx context.Context) error
}

// GenerateExternalID creates a unique ID for a topic based on source and URL
func GenerateExternalID(sourceType, url string) string {
	data := fmt.Sprintf("%s:%s", sourceType, url)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash[:16]) // Use first 16 bytes (32 hex chars)
}

// ExternalID identifies a raw topic across runs: by URL when it has one,
// otherwise by its normalized title.
func ExternalID(t *models.RawTopic) string {
	key := t.URL
	if key == "" {
		key = strings.ToLower(strings.Join(strings.Fields(t.Title), " "))
	}
	return GenerateExternalID(t.SourceType, key)
}

// Manager fans out over the registered topic sources
type Manager struct {
	sources []TopicSource
}

// NewManager creates an empty source manager
func NewManager() *Manager {
	return &Manager{}
}

// Register adds a source to the manager
func (m *Manager) Register(source TopicSource) {
	m.sources = append(m.sources, source)
}

// Sources returns the registered sources in registration order
func (m *Manager) Sources() []TopicSource {
	return m.sources
}

// Health is the outcome of one source health check
type Health struct {
	Name string
	Type string
	Err  error
}

// CheckAll runs every source's health check concurrently
func (m *Manager) CheckAll(ctx context.Context) []Health {
	out := make([]Health, len(m.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, src := range m.sources {
		out[i] = Health{Name: src.Name(), Type: src.Type()}
		g.Go(func() error {
			out[i].Err = src.HealthCheck(gctx)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// FetchAll fetches topics from all sources concurrently. A failing source
// does not stop the others; its error is returned alongside the topics.
// Topics come back in registration order with duplicates removed.
func (m *Manager) FetchAll(ctx context.Context) ([]*models.RawTopic, []error) {
	results := make([][]*models.RawTopic, len(m.sources))

	var mu sync.Mutex
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, src := range m.sources {
		g.Go(func() error {
			topics, err := src.Fetch(gctx)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
				mu.Unlock()
				return nil
			}
			results[i] = topics
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	var all []*models.RawTopic
	for _, topics := range results {
		for _, t := range topics {
			id := ExternalID(t)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, t)
		}
	}

	return all, errs
}
