package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mamacare-sync/internal/models"
	"mamacare-sync/internal/store"
)

const (
	dashboardKeyPrefix = "mamacare:child:"
	dashboardKeySuffix = ":dashboard"
)

// DashboardKey is the KV key of a child's dashboard.
func DashboardKey(childID string) string {
	return dashboardKeyPrefix + childID + dashboardKeySuffix
}

// CacheManager stores dashboards in the KV store for out-of-process readers.
type CacheManager struct {
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

func NewCacheManager(kv store.KV, ttl time.Duration, logger *zap.Logger) *CacheManager {
	return &CacheManager{
		kv:     kv,
		ttl:    ttl,
		logger: logger,
	}
}

// UpdateDashboardCache writes d as JSON with the configured TTL.
func (c *CacheManager) UpdateDashboardCache(ctx context.Context, d *models.ChildDashboard) error {
	key := DashboardKey(d.ChildID)

	jsonData, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard: %w", err)
	}

	if err := c.kv.Set(ctx, key, string(jsonData), c.ttl); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	c.logger.Debug("Updated dashboard cache",
		zap.String("child_id", d.ChildID),
		zap.String("key", key),
	)
	return nil
}

// GetDashboard reads a cached dashboard; store.ErrMiss when absent.
func (c *CacheManager) GetDashboard(ctx context.Context, childID string) (*models.ChildDashboard, error) {
	raw, err := c.kv.Get(ctx, DashboardKey(childID))
	if err != nil {
		return nil, err
	}
	var d models.ChildDashboard
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dashboard: %w", err)
	}
	return &d, nil
}

// CachedChildIDs lists children that currently have a dashboard.
func (c *CacheManager) CachedChildIDs(ctx context.Context) ([]string, error) {
	keys, err := c.kv.ScanKeys(ctx, dashboardKeyPrefix+"*"+dashboardKeySuffix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(k, dashboardKeyPrefix), dashboardKeySuffix))
	}
	return ids, nil
}

func (c *CacheManager) DeleteDashboards(ctx context.Context, childIDs ...string) error {
	keys := make([]string, 0, len(childIDs))
	for _, id := range childIDs {
		keys = append(keys, DashboardKey(id))
	}
	return c.kv.Delete(ctx, keys...)
}
