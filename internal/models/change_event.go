package models

// Change event types published after a successful mutation.
const (
	EventChildCreated          = "child.created"
	EventChildUpdated          = "child.updated"
	EventChildDeleted          = "child.deleted"
	EventGrowthCreated         = "growth.created"
	EventVaccinationUpdated    = "vaccination.updated"
	EventPrescriptionCreated   = "prescription.created"
	EventPrescriptionUpdated   = "prescription.updated"
	EventPrescriptionDeleted   = "prescription.deleted"
	EventReminderCreated       = "reminder.created"
	EventReminderUpdated       = "reminder.updated"
	EventReminderDeleted       = "reminder.deleted"
	EventRecommendationCreated = "recommendation.created"
	EventRecommendationRead    = "recommendation.read"
)

// ChangeEvent announces a remote change so other sessions can invalidate
// the affected scope.
type ChangeEvent struct {
	EventType string `json:"event_type"`
	ChildID   string `json:"child_id,omitempty"`
	EntityID  string `json:"entity_id,omitempty"`
	Origin    string `json:"origin,omitempty"` // publishing session id
	Timestamp int64  `json:"timestamp"`
}
