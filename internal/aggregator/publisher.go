package aggregator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/models"
)

// Recorder counts dashboard writes.
type Recorder interface {
	DashboardPublished(err error)
}

// DashboardPublisher rebuilds every child's dashboard from a snapshot and
// writes it to the cache. Dashboards of children no longer present are
// removed.
type DashboardPublisher struct {
	builder  *DashboardBuilder
	cache    *CacheManager
	recorder Recorder
	logger   *zap.Logger
}

func NewDashboardPublisher(builder *DashboardBuilder, cm *CacheManager, recorder Recorder, logger *zap.Logger) *DashboardPublisher {
	return &DashboardPublisher{
		builder:  builder,
		cache:    cm,
		recorder: recorder,
		logger:   logger,
	}
}

// PublishDashboards returns the number of dashboards written. A failed
// write is logged and the remaining children are still published; the
// last error is returned.
func (p *DashboardPublisher) PublishDashboards(ctx context.Context, snap cache.Snapshot, catalog []models.Vaccine, now time.Time) (int, error) {
	dashboards := p.builder.Build(snap, catalog, now)

	successCount := 0
	errorCount := 0
	var lastErr error
	present := make(map[string]bool, len(dashboards))

	for i := range dashboards {
		d := &dashboards[i]
		present[d.ChildID] = true
		err := p.cache.UpdateDashboardCache(ctx, d)
		if p.recorder != nil {
			p.recorder.DashboardPublished(err)
		}
		if err != nil {
			p.logger.Error("Failed to update dashboard cache",
				zap.String("child_id", d.ChildID),
				zap.Error(err),
			)
			errorCount++
			lastErr = err
			continue
		}
		successCount++
	}

	if snap.Entry(cache.ChildrenKey()).Loaded {
		p.removeStale(ctx, present)
	}

	p.logger.Debug("Published dashboards",
		zap.Int("success_count", successCount),
		zap.Int("error_count", errorCount),
	)
	return successCount, lastErr
}

func (p *DashboardPublisher) removeStale(ctx context.Context, present map[string]bool) {
	cached, err := p.cache.CachedChildIDs(ctx)
	if err != nil {
		p.logger.Warn("Failed to list cached dashboards", zap.Error(err))
		return
	}
	var stale []string
	for _, id := range cached {
		if !present[id] {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return
	}
	if err := p.cache.DeleteDashboards(ctx, stale...); err != nil {
		p.logger.Warn("Failed to delete stale dashboards", zap.Error(err))
		return
	}
	p.logger.Info("Removed dashboards of deleted children", zap.Strings("child_ids", stale))
}
