package models

import "time"

// ReminderType categorises a reminder.
type ReminderType string

const (
	ReminderMedication  ReminderType = "medication"
	ReminderAppointment ReminderType = "appointment"
	ReminderVaccination ReminderType = "vaccination"
	ReminderMeasurement ReminderType = "measurement"
	ReminderOther       ReminderType = "other"
)

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderMedication, ReminderAppointment, ReminderVaccination, ReminderMeasurement, ReminderOther:
		return true
	}
	return false
}

// RecurringPattern of a recurring reminder.
type RecurringPattern string

const (
	RecurDaily   RecurringPattern = "daily"
	RecurWeekly  RecurringPattern = "weekly"
	RecurMonthly RecurringPattern = "monthly"
)

func (p RecurringPattern) Valid() bool {
	return p == RecurDaily || p == RecurWeekly || p == RecurMonthly
}

// Reminder is scheduled at DateTime. Pending and overdue are derived at read
// time and never stored.
type Reminder struct {
	ID                  string            `json:"id"`
	ChildID             string            `json:"childId"`
	Title               string            `json:"title"`
	Description         string            `json:"description,omitempty"`
	Type                ReminderType      `json:"type"`
	DateTime            time.Time         `json:"dateTime"`
	IsCompleted         bool              `json:"isCompleted"`
	IsRecurring         bool              `json:"isRecurring"`
	RecurringPattern    *RecurringPattern `json:"recurringPattern,omitempty"`
	NotificationEnabled bool              `json:"notificationEnabled"`
	CreatedAt           time.Time         `json:"createdAt"`
}

// ReminderInput is the create payload.
type ReminderInput struct {
	ChildID             string            `json:"childId"`
	Title               string            `json:"title"`
	Description         string            `json:"description,omitempty"`
	Type                ReminderType      `json:"type"`
	DateTime            time.Time         `json:"dateTime"`
	IsRecurring         bool              `json:"isRecurring"`
	RecurringPattern    *RecurringPattern `json:"recurringPattern,omitempty"`
	NotificationEnabled bool              `json:"notificationEnabled"`
}

// ReminderPatch is a partial update.
type ReminderPatch struct {
	Title               *string           `json:"title,omitempty"`
	Description         *string           `json:"description,omitempty"`
	Type                *ReminderType     `json:"type,omitempty"`
	DateTime            *time.Time        `json:"dateTime,omitempty"`
	IsCompleted         *bool             `json:"isCompleted,omitempty"`
	IsRecurring         *bool             `json:"isRecurring,omitempty"`
	RecurringPattern    *RecurringPattern `json:"recurringPattern,omitempty"`
	NotificationEnabled *bool             `json:"notificationEnabled,omitempty"`
}
