package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/stage/stagetest"
)

type fakeFetcher struct {
	topics []*models.RawTopic
	errs   []error
}

func (f *fakeFetcher) FetchAll(context.Context) ([]*models.RawTopic, []error) {
	return f.topics, f.errs
}

func TestCollectorAppendsNewTopicsOnce(t *testing.T) {
	deps, _, notifier := stagetest.NewDeps(t)
	fetcher := &fakeFetcher{
		topics: []*models.RawTopic{
			{Title: "AI in marketing", Description: "d", URL: "https://x/ai", SourceType: "rss", SourceName: "blog"},
			{Title: "SEO basics", SourceType: "custom", SourceName: "keywords"},
		},
		errs: []error{errors.New("feed down")},
	}
	st := New(deps, fetcher)

	res, err := st.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowsWritten)
	assert.Len(t, res.Errors, 1)
	assert.Contains(t, notifier.Last(), "2 new topics")
	assert.Contains(t, notifier.Last(), "1 sources failed")

	table := stagetest.Read(t, deps, "Topics")
	assert.Equal(t, models.TopicHeaders, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "AI in marketing", table.Rows[0].Fields["Topic"])
	assert.Equal(t, "rss:blog", table.Rows[0].Fields["Source"])
	assert.Equal(t, "2025-03-14 09:30:00", table.Rows[0].Fields["Timestamp"])
	assert.Equal(t, "", table.Rows[0].Fields["Status"])
	assert.Len(t, table.Rows[0].Fields["Topic_ID"], 32)

	// second run sees the same topics as known
	fetcher.errs = nil
	res, err = st.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.RowsWritten)
	assert.Equal(t, 2, res.RowsSkipped)
	assert.Len(t, stagetest.Read(t, deps, "Topics").Rows, 2)
	assert.Len(t, notifier.Messages, 2)
}
