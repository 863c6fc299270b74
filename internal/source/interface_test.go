package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/content-optimizer/internal/models"
)

type stubSource struct {
	name   string
	topics []*models.RawTopic
	err    error
}

func (s *stubSource) Name() string { return s.name }
func (s *stubSource) Type() string { return "stub" }
func (s *stubSource) HealthCheck(ctx context.Context) error { return s.err }
func (s *stubSource) Fetch(ctx context.Context) ([]*models.RawTopic, error) {
	return s.topics, s.err
}

func TestGenerateExternalID(t *testing.T) {
	a := GenerateExternalID("rss", "https://example.com/a")
	assert.Len(t, a, 32)
	assert.Equal(t, a, GenerateExternalID("rss", "https://example.com/a"))
	assert.NotEqual(t, a, GenerateExternalID("custom", "https://example.com/a"))
}

func TestExternalIDFallsBackToTitle(t *testing.T) {
	a := ExternalID(&models.RawTopic{SourceType: "custom", Title: "AI  Marketing"})
	b := ExternalID(&models.RawTopic{SourceType: "custom", Title: "ai marketing"})
	assert.Equal(t, a, b)
}

func TestFetchAllCollectsErrorsAndDedupes(t *testing.T) {
	m := NewManager()
	m.Register(&stubSource{name: "one", topics: []*models.RawTopic{
		{Title: "A", URL: "https://x/a", SourceType: "rss"},
		{Title: "B", URL: "https://x/b", SourceType: "rss"},
	}})
	m.Register(&stubSource{name: "broken", err: errors.New("timeout")})
	m.Register(&stubSource{name: "two", topics: []*models.RawTopic{
		{Title: "A again", URL: "https://x/a", SourceType: "rss"},
		{Title: "C", URL: "https://x/c", SourceType: "rss"},
	}})

	topics, errs := m.FetchAll(context.Background())

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "broken")

	var titles []string
	for _, tp := range topics {
		titles = append(titles, tp.Title)
	}
	assert.Equal(t, []string{"A", "B", "C"}, titles)
}

func TestCheckAll(t *testing.T) {
	m := NewManager()
	m.Register(&stubSource{name: "one"})
	m.Register(&stubSource{name: "two", err: errors.New("unreachable")})

	health := m.CheckAll(context.Background())
	require.Len(t, health, 2)
	assert.Equal(t, "one", health[0].Name)
	assert.NoError(t, health[0].Err)
	assert.Equal(t, "two", health[1].Name)
	assert.EqualError(t, health[1].Err, "unreachable")
	assert.Len(t, m.Sources(), 2)
}
