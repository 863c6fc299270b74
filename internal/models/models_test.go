package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRowPadsMissingValues(t *testing.T) {
	row := NewRow(2, []string{"Topic", "", "Platform", "Score"}, []string{" AI ", "skipped", "twitter"})

	assert.Equal(t, 2, row.Index)
	assert.Equal(t, map[string]string{"Topic": " AI ", "Platform": "twitter", "Score": ""}, row.Fields)
	assert.Equal(t, "AI", row.Text("Topic"))

	_, ok := row.Get("Score")
	assert.True(t, ok)
	_, ok = row.Get("Missing")
	assert.False(t, ok)
}

func TestRowFloat(t *testing.T) {
	row := NewRow(2, []string{"a", "b", "c", "d", "e"}, []string{" 7.5 ", "n/a", "", "NaN", "-Infinity"})

	assert.Equal(t, 7.5, row.Float("a"))
	assert.Zero(t, row.Float("b"))
	assert.Zero(t, row.Float("c"))
	assert.Zero(t, row.Float("d"))
	assert.Zero(t, row.Float("e"))
	assert.Zero(t, row.Float("missing"))
}

func TestTableColumns(t *testing.T) {
	table := &Table{Header: []string{"Topic", "Platform"}}

	assert.Equal(t, 1, table.ColumnIndex("Platform"))
	assert.Equal(t, -1, table.ColumnIndex("platform"))
	assert.True(t, table.HasColumn("Topic"))
	assert.False(t, table.HasColumn("Winner"))
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in   string
		want Platform
	}{
		{"twitter", PlatformTwitter},
		{" Reddit ", PlatformReddit},
		{"YOUTUBE", PlatformYouTube},
		{"LinkedIn", PlatformLinkedIn},
		{"instagram", PlatformInstagram},
		{"", PlatformOther},
		{"myspace", PlatformOther},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePlatform(tt.in))
		})
	}
}

func TestStringSliceScan(t *testing.T) {
	v, err := StringSlice{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	var s StringSlice
	require.NoError(t, s.Scan([]byte(`["x"]`)))
	assert.Equal(t, StringSlice{"x"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Nil(t, s)

	assert.Error(t, s.Scan(42))
}

func TestMetricsSnapshotValuesFollowHeaders(t *testing.T) {
	snap := MetricsSnapshot{
		Timestamp:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		AvgSentiment: 0.5,
		PositivePct:  50,
		TwitterPosts: 2,
		TotalItems:   4,
	}

	values := snap.Values()
	require.Len(t, values, len(MetricsHeaders))
	assert.Equal(t, "2025-01-02 03:04:05", values[0])
	assert.Equal(t, 0.5, values[1])
	assert.Equal(t, 2, values[5])
	assert.Equal(t, 4, values[len(values)-1])
}
