// Package views derives presentation data from a cache snapshot. Every
// function is pure: same snapshot and same now, same output. A scope that
// never loaded yields empty output.
package views

import (
	"sort"

	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/models"
)

// ChildByID looks the child up in the Children collection.
func ChildByID(snap cache.Snapshot, id string) (models.Child, bool) {
	for _, c := range snap.Children() {
		if c.ID == id {
			return c, true
		}
	}
	return models.Child{}, false
}

// GrowthSeriesFor returns the child's growth records ascending by Date.
// Records with equal dates keep their source order. Records of another
// child cached under this scope are left out.
func GrowthSeriesFor(snap cache.Snapshot, childID string) []models.GrowthRecord {
	var series []models.GrowthRecord
	for _, r := range snap.GrowthRecords(childID) {
		if r.ChildID == childID {
			series = append(series, r)
		}
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date.Time)
	})
	return series
}

// HasTrend reports whether series has enough points for a chart.
func HasTrend(series []models.GrowthRecord) bool {
	return len(series) >= 2
}

// LatestGrowth returns the record with the greatest Date, regardless of
// insertion order.
func LatestGrowth(series []models.GrowthRecord) (models.GrowthRecord, bool) {
	if len(series) == 0 {
		return models.GrowthRecord{}, false
	}
	latest := series[0]
	for _, r := range series[1:] {
		if !r.Date.Before(latest.Date.Time) {
			latest = r
		}
	}
	return latest, true
}

// ActivePrescriptionsFor keeps source order.
func ActivePrescriptionsFor(snap cache.Snapshot, childID string) []models.Prescription {
	var out []models.Prescription
	for _, p := range snap.Prescriptions(childID) {
		if p.ChildID == childID && p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

// VaccinationsFor passes the backend records through. Status is never
// re-derived from dates.
func VaccinationsFor(snap cache.Snapshot, childID string) []models.VaccinationRecord {
	var out []models.VaccinationRecord
	for _, v := range snap.Vaccinations(childID) {
		if v.ChildID == childID {
			out = append(out, v)
		}
	}
	return out
}

// CompletedVaccinationsFor counts records with status completed.
func CompletedVaccinationsFor(snap cache.Snapshot, childID string) int {
	n := 0
	for _, v := range VaccinationsFor(snap, childID) {
		if v.Status == models.VaccinationCompleted {
			n++
		}
	}
	return n
}

// VaccinationProgressFor is completed / len(catalog) * 100, or 0 with an
// empty catalog.
func VaccinationProgressFor(snap cache.Snapshot, childID string, catalog []models.Vaccine) float64 {
	if len(catalog) == 0 {
		return 0
	}
	return float64(CompletedVaccinationsFor(snap, childID)) / float64(len(catalog)) * 100
}

// UnreadRecommendationCountFor counts the child's unread recommendations.
func UnreadRecommendationCountFor(snap cache.Snapshot, childID string) int {
	n := 0
	for _, r := range snap.Recommendations() {
		if r.ChildID == childID && !r.IsRead {
			n++
		}
	}
	return n
}

// RecommendationsFor returns the child's recommendations, newest first.
func RecommendationsFor(snap cache.Snapshot, childID string) []models.Recommendation {
	var out []models.Recommendation
	for _, r := range snap.Recommendations() {
		if r.ChildID == childID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
