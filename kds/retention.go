package kds

import (
	"context"
	"time"

	"github.com/yeremiapane/dineflow/utils"
)

// RunRetention prunes events older than keep every interval until ctx ends.
func (l *EventLog) RunRetention(ctx context.Context, interval, keep time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := l.Prune(now.Add(-keep))
			if err != nil {
				utils.ErrorLogger.WithError(err).Error("event log prune failed")
				continue
			}
			if removed > 0 {
				utils.InfoLogger.WithField("removed", removed).Info("event log pruned")
			}
		}
	}
}
