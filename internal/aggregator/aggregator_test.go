package aggregator_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	agg "mamacare-sync/internal/aggregator"
	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/models"
	"mamacare-sync/internal/store"
)

var now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func fixtureSnapshot() cache.Snapshot {
	return cache.NewSnapshot(map[cache.Key]interface{}{
		cache.ChildrenKey(): []models.Child{
			{ID: "c1", Name: "Ana", DateOfBirth: models.MustParseDate("2023-03-01")},
			{ID: "c2", Name: "Rui", DateOfBirth: models.MustParseDate("2024-01-10")},
		},
		cache.GrowthKey("c1"): []models.GrowthRecord{
			{ID: "g2", ChildID: "c1", Date: models.MustParseDate("2024-05-01"), Weight: 9.5, Height: 75},
			{ID: "g1", ChildID: "c1", Date: models.MustParseDate("2024-01-01"), Weight: 8, Height: 70},
		},
		cache.VaccinationsKey("c1"): []models.VaccinationRecord{
			{ID: "v1", ChildID: "c1", Status: models.VaccinationCompleted},
			{ID: "v2", ChildID: "c1", Status: models.VaccinationPending},
		},
		cache.PrescriptionsKey("c1"): []models.Prescription{
			{ID: "p1", ChildID: "c1", IsActive: true},
			{ID: "p2", ChildID: "c1"},
		},
		cache.RemindersKey("c1"): []models.Reminder{
			{ID: "r1", ChildID: "c1", DateTime: now.Add(-time.Hour)},
			{ID: "r2", ChildID: "c1", DateTime: now.Add(time.Hour)},
			{ID: "r3", ChildID: "c1", DateTime: now, IsCompleted: true},
		},
		cache.RecommendationsKey(): []models.Recommendation{
			{ID: "x1", ChildID: "c1"},
			{ID: "x2", ChildID: "c1", IsRead: true},
			{ID: "x3", ChildID: "c2"},
		},
	})
}

func TestDashboardBuilder_Build(t *testing.T) {
	catalog := []models.Vaccine{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	dashboards := agg.NewDashboardBuilder().Build(fixtureSnapshot(), catalog, now)
	require.Len(t, dashboards, 2)

	d := dashboards[0]
	assert.Equal(t, "c1", d.ChildID)
	assert.Equal(t, "1a 3m", d.AgeLabel)
	assert.Equal(t, 2, d.GrowthRecordCount)
	assert.True(t, d.HasGrowthTrend)
	require.NotNil(t, d.LatestGrowth)
	assert.Equal(t, "g2", d.LatestGrowth.ID)
	assert.Equal(t, 1, d.VaccinesCompleted)
	assert.Equal(t, 4, d.VaccinesTotal)
	assert.InDelta(t, 25.0, d.VaccineProgress, 1e-9)
	assert.Equal(t, 1, d.ActivePrescriptions)
	assert.Equal(t, 1, d.OverdueReminders)
	assert.Equal(t, 1, d.UpcomingReminders)
	assert.Equal(t, 1, d.CompletedReminders)
	assert.Equal(t, 1, d.UnreadRecommendations)

	// c2 has no scoped data loaded
	empty := dashboards[1]
	assert.Equal(t, "5 meses", empty.AgeLabel)
	assert.Zero(t, empty.GrowthRecordCount)
	assert.False(t, empty.HasGrowthTrend)
	assert.Nil(t, empty.LatestGrowth)
	assert.Equal(t, 1, empty.UnreadRecommendations)
}

func TestCacheManager_UpdateDashboardCache_WritesJSON(t *testing.T) {
	kv := store.NewMemoryKV()
	cm := agg.NewCacheManager(kv, time.Minute, zap.NewNop())

	d := &models.ChildDashboard{ChildID: "c1", ChildName: "Ana", GeneratedAt: now}
	require.NoError(t, cm.UpdateDashboardCache(context.Background(), d))

	raw, err := kv.Get(context.Background(), "mamacare:child:c1:dashboard")
	require.NoError(t, err)
	var decoded models.ChildDashboard
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "Ana", decoded.ChildName)

	got, err := cm.GetDashboard(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ChildID)

	_, err = cm.GetDashboard(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrMiss)
}

type recorder struct{ ok, failed int }

func (r *recorder) DashboardPublished(err error) {
	if err != nil {
		r.failed++
		return
	}
	r.ok++
}

func TestDashboardPublisher_RemovesDeletedChildren(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	cm := agg.NewCacheManager(kv, time.Minute, zap.NewNop())
	require.NoError(t, cm.UpdateDashboardCache(ctx, &models.ChildDashboard{ChildID: "gone"}))

	rec := &recorder{}
	pub := agg.NewDashboardPublisher(agg.NewDashboardBuilder(), cm, rec, zap.NewNop())
	n, err := pub.PublishDashboards(ctx, fixtureSnapshot(), nil, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, rec.ok)

	_, err = cm.GetDashboard(ctx, "gone")
	assert.ErrorIs(t, err, store.ErrMiss)
	ids, err := cm.CachedChildIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c2"}, ids)
}

func TestDashboardPublisher_ChildrenNotLoaded(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	cm := agg.NewCacheManager(kv, time.Minute, zap.NewNop())
	require.NoError(t, cm.UpdateDashboardCache(ctx, &models.ChildDashboard{ChildID: "kept"}))

	pub := agg.NewDashboardPublisher(agg.NewDashboardBuilder(), cm, nil, zap.NewNop())
	n, err := pub.PublishDashboards(ctx, cache.NewSnapshot(nil), nil, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = cm.GetDashboard(ctx, "kept")
	assert.NoError(t, err, "nothing is removed before the children list loads")
}
