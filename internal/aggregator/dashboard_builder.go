package aggregator

import (
	"time"

	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/models"
	"mamacare-sync/internal/views"
)

// DashboardBuilder turns a cache snapshot into per-child dashboards.
type DashboardBuilder struct{}

func NewDashboardBuilder() *DashboardBuilder {
	return &DashboardBuilder{}
}

// Build returns one dashboard per loaded child, in backend order.
func (b *DashboardBuilder) Build(snap cache.Snapshot, catalog []models.Vaccine, now time.Time) []models.ChildDashboard {
	children := snap.Children()
	out := make([]models.ChildDashboard, 0, len(children))
	for _, child := range children {
		out = append(out, b.BuildForChild(snap, child, catalog, now))
	}
	return out
}

// BuildForChild aggregates one child. Scopes that never loaded count as
// empty.
func (b *DashboardBuilder) BuildForChild(snap cache.Snapshot, child models.Child, catalog []models.Vaccine, now time.Time) models.ChildDashboard {
	series := views.GrowthSeriesFor(snap, child.ID)
	reminders := views.ReminderPartitionsFor(snap, child.ID, now)

	d := models.ChildDashboard{
		ChildID:               child.ID,
		ChildName:             child.Name,
		AgeLabel:              views.ChildAgeLabel(child.DateOfBirth.Time, now),
		GrowthRecordCount:     len(series),
		HasGrowthTrend:        views.HasTrend(series),
		VaccinesCompleted:     views.CompletedVaccinationsFor(snap, child.ID),
		VaccinesTotal:         len(catalog),
		VaccineProgress:       views.VaccinationProgressFor(snap, child.ID, catalog),
		ActivePrescriptions:   len(views.ActivePrescriptionsFor(snap, child.ID)),
		OverdueReminders:      len(reminders.Overdue),
		UpcomingReminders:     len(reminders.Upcoming),
		CompletedReminders:    len(reminders.Completed),
		UnreadRecommendations: views.UnreadRecommendationCountFor(snap, child.ID),
		GeneratedAt:           now,
	}
	if latest, ok := views.LatestGrowth(series); ok {
		d.LatestGrowth = &latest
	}
	return d
}
