package views

import (
	"sort"
	"time"

	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/models"
)

// ReminderPartitions splits a child's reminders by state at a given instant.
// Every reminder lands in exactly one partition.
type ReminderPartitions struct {
	Overdue   []models.Reminder
	Upcoming  []models.Reminder
	Completed []models.Reminder
}

// Total is the number of reminders across partitions.
func (p ReminderPartitions) Total() int {
	return len(p.Overdue) + len(p.Upcoming) + len(p.Completed)
}

// RemindersFor returns the child's reminders ascending by DateTime.
func RemindersFor(snap cache.Snapshot, childID string) []models.Reminder {
	out := ownReminders(snap, childID)
	sortByDateTime(out)
	return out
}

// ownReminders copies the reminders cached under childID that belong to it.
func ownReminders(snap cache.Snapshot, childID string) []models.Reminder {
	var out []models.Reminder
	for _, r := range snap.Reminders(childID) {
		if r.ChildID == childID {
			out = append(out, r)
		}
	}
	return out
}

// ReminderPartitionsFor partitions against now: completed first, then
// overdue when DateTime is before now, upcoming otherwise. Each partition is
// ascending by DateTime.
func ReminderPartitionsFor(snap cache.Snapshot, childID string, now time.Time) ReminderPartitions {
	var p ReminderPartitions
	for _, r := range ownReminders(snap, childID) {
		switch {
		case r.IsCompleted:
			p.Completed = append(p.Completed, r)
		case r.DateTime.Before(now):
			p.Overdue = append(p.Overdue, r)
		default:
			p.Upcoming = append(p.Upcoming, r)
		}
	}
	sortByDateTime(p.Overdue)
	sortByDateTime(p.Upcoming)
	sortByDateTime(p.Completed)
	return p
}

func sortByDateTime(rs []models.Reminder) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].DateTime.Before(rs[j].DateTime)
	})
}
