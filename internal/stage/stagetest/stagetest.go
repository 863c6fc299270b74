// Package stagetest provides fixtures for testing pipeline stages against a
// real SQLite row store.
package stagetest

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/content-optimizer/internal/config"
	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/stage"
	"github.com/content-optimizer/internal/storage/sqlite"
	"github.com/content-optimizer/pkg/logger"
)

// Now is the fixed clock used by fixture deps
var Now = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// Notifier records every message it is given
type Notifier struct {
	mu       sync.Mutex
	Messages []string
}

func (n *Notifier) Notify(_ context.Context, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, text)
}

// Last returns the most recent message, or ""
func (n *Notifier) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Messages) == 0 {
		return ""
	}
	return n.Messages[len(n.Messages)-1]
}

// Tabs are the default tab names
func Tabs() config.TabsConfig {
	return config.TabsConfig{
		Topics:     "Topics",
		Content:    "Content_Creation",
		ABTesting:  "AB_Testing",
		Metrics:    "performance_metrics",
		Prediction: "Prediction_Coach",
	}
}

// NewDeps builds stage deps over a fresh SQLite store in a temp dir
func NewDeps(t *testing.T) (stage.Deps, *sqlite.Repository, *Notifier) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	n := &Notifier{}
	deps := stage.Deps{
		Store:    store,
		Tabs:     Tabs(),
		Notifier: n,
		Log:      logger.Nop(),
		Now:      func() time.Time { return Now },
	}
	return deps, store, n
}

// SeedContent creates the content tab with the given rows. Each row maps
// header names to values; header gives the column order.
func SeedContent(t *testing.T, deps stage.Deps, header []string, rows ...map[string]string) {
	t.Helper()
	Seed(t, deps, deps.Tabs.Content, header, rows...)
}

// Seed creates tab with header and appends rows in order
func Seed(t *testing.T, deps stage.Deps, tab string, header []string, rows ...map[string]string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, deps.Store.EnsureTab(ctx, tab, header))
	for _, row := range rows {
		values := make([]interface{}, len(header))
		for i, h := range header {
			values[i] = row[h]
		}
		require.NoError(t, deps.Store.AppendRow(ctx, tab, values))
	}
}

// Read returns the rows of tab
func Read(t *testing.T, deps stage.Deps, tab string) *models.Table {
	t.Helper()
	table, err := deps.Store.ReadAll(context.Background(), tab)
	require.NoError(t, err)
	return table
}
