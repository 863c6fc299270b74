package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingColumns(t *testing.T) {
	assert.Nil(t, MissingColumns([]string{"A", "B"}, []string{"B", "A"}))
	assert.Equal(t, []string{"C", "D"}, MissingColumns([]string{"A"}, []string{"A", "C", "D", "C"}))
	assert.Equal(t, []string{"A"}, MissingColumns(nil, []string{"A"}))
}

func TestBuildTable(t *testing.T) {
	table := BuildTable("T", [][]string{
		{"Topic", "Platform"},
		{"AI"},
		{"Growth", "reddit", "extra"},
	})

	assert.Equal(t, "T", table.Name)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0].Index)
	assert.Equal(t, "", table.Rows[0].Fields["Platform"])
	assert.Equal(t, "reddit", table.Rows[1].Fields["Platform"])
	assert.Len(t, table.Rows[1].Fields, 2)
}

func TestBuildTableEmpty(t *testing.T) {
	table := BuildTable("T", nil)
	assert.Empty(t, table.Header)
	assert.Empty(t, table.Rows)
}
