package models

import "time"

// ChildDashboard is the aggregated per-child view published to the KV store
// for out-of-process consumers (home-screen widgets, notification workers).
type ChildDashboard struct {
	ChildID   string `json:"child_id"`
	ChildName string `json:"child_name"`
	AgeLabel  string `json:"age_label"`

	// Growth
	GrowthRecordCount int           `json:"growth_record_count"`
	HasGrowthTrend    bool          `json:"has_growth_trend"` // >= 2 measurements
	LatestGrowth      *GrowthRecord `json:"latest_growth,omitempty"`

	// Vaccination
	VaccinesCompleted int     `json:"vaccines_completed"`
	VaccinesTotal     int     `json:"vaccines_total"`
	VaccineProgress   float64 `json:"vaccine_progress"` // percent

	ActivePrescriptions int `json:"active_prescriptions"`

	// Reminders
	OverdueReminders   int `json:"overdue_reminders"`
	UpcomingReminders  int `json:"upcoming_reminders"`
	CompletedReminders int `json:"completed_reminders"`

	UnreadRecommendations int `json:"unread_recommendations"`

	GeneratedAt time.Time `json:"generated_at"`
}
