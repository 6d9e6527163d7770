package cache

import "mamacare-sync/internal/models"

// Snapshot is an immutable copy of the store taken at one instant.
// Collections inside it are shared with the store and must be treated as
// read-only.
type Snapshot struct {
	entries map[Key]Entry
}

// NewSnapshot builds a snapshot from loaded collections. Intended for tests
// and tools that compute views without a store.
func NewSnapshot(collections map[Key]interface{}) Snapshot {
	entries := make(map[Key]Entry, len(collections))
	for k, v := range collections {
		entries[k] = Entry{Data: v, Loaded: true}
	}
	return Snapshot{entries: entries}
}

// Entry returns the entry for key, or a NotLoaded entry.
func (s Snapshot) Entry(key Key) Entry {
	return s.entries[key]
}

// Keys returns every key present in the snapshot.
func (s Snapshot) Keys() []Key {
	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// List returns the collection under key, or nil when the key never loaded.
func List[T any](s Snapshot, key Key) []T {
	e, ok := s.entries[key]
	if !ok || !e.Loaded {
		return nil
	}
	items, _ := e.Data.([]T)
	return items
}

func (s Snapshot) Children() []models.Child {
	return List[models.Child](s, ChildrenKey())
}

func (s Snapshot) GrowthRecords(childID string) []models.GrowthRecord {
	return List[models.GrowthRecord](s, GrowthKey(childID))
}

func (s Snapshot) Vaccinations(childID string) []models.VaccinationRecord {
	return List[models.VaccinationRecord](s, VaccinationsKey(childID))
}

func (s Snapshot) Prescriptions(childID string) []models.Prescription {
	return List[models.Prescription](s, PrescriptionsKey(childID))
}

func (s Snapshot) Reminders(childID string) []models.Reminder {
	return List[models.Reminder](s, RemindersKey(childID))
}

func (s Snapshot) Recommendations() []models.Recommendation {
	return List[models.Recommendation](s, RecommendationsKey())
}
