package cache

import "fmt"

// EntityType names a cached collection.
type EntityType string

const (
	EntityChildren        EntityType = "children"
	EntityGrowth          EntityType = "growth"
	EntityVaccinations    EntityType = "vaccinations"
	EntityPrescriptions   EntityType = "prescriptions"
	EntityReminders       EntityType = "reminders"
	EntityRecommendations EntityType = "recommendations"
)

// GlobalScope is the scope of collections that are not partitioned by child.
const GlobalScope = "@global"

// ChildScopedEntities are fetched once per child.
var ChildScopedEntities = []EntityType{
	EntityGrowth,
	EntityVaccinations,
	EntityPrescriptions,
	EntityReminders,
}

// Key identifies one cached collection.
type Key struct {
	Entity EntityType
	Scope  string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Entity, k.Scope)
}

func ChildrenKey() Key {
	return Key{Entity: EntityChildren, Scope: GlobalScope}
}

func RecommendationsKey() Key {
	return Key{Entity: EntityRecommendations, Scope: GlobalScope}
}

func GrowthKey(childID string) Key {
	return Key{Entity: EntityGrowth, Scope: childID}
}

func VaccinationsKey(childID string) Key {
	return Key{Entity: EntityVaccinations, Scope: childID}
}

func PrescriptionsKey(childID string) Key {
	return Key{Entity: EntityPrescriptions, Scope: childID}
}

func RemindersKey(childID string) Key {
	return Key{Entity: EntityReminders, Scope: childID}
}

// ChildKeys returns every child-scoped key of childID.
func ChildKeys(childID string) []Key {
	keys := make([]Key, 0, len(ChildScopedEntities))
	for _, e := range ChildScopedEntities {
		keys = append(keys, Key{Entity: e, Scope: childID})
	}
	return keys
}
