package stage

import (
	"context"
	"time"

	"github.com/content-optimizer/internal/config"
	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/notify"
	"github.com/content-optimizer/internal/storage"
	"github.com/content-optimizer/pkg/logger"
)

// Deps are the collaborators every stage is built from
type Deps struct {
	Store    storage.RowStore
	Tabs     config.TabsConfig
	Notifier notify.Notifier
	Log      *logger.Logger
	Now      func() time.Time
}

// Clock returns the current time from Now, or time.Now when unset
func (d Deps) Clock() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Timestamp formats the current time the way the tabs store it
func (d Deps) Timestamp() string {
	return d.Clock().Format(models.TimestampLayout)
}

// Notify forwards to the configured notifier, if any
func (d Deps) Notify(ctx context.Context, text string) {
	if d.Notifier != nil {
		d.Notifier.Notify(ctx, text)
	}
}
