package mutation

import (
	"context"

	"go.uber.org/zap"

	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/models"
)

// ApplyRemoteChange invalidates the scopes another session's mutation
// affected. It reports whether anything was invalidated. Events carrying
// this coordinator's origin and unknown event types are skipped.
func (c *Coordinator) ApplyRemoteChange(ctx context.Context, event models.ChangeEvent) bool {
	if event.Origin != "" && event.Origin == c.origin {
		return false
	}

	if event.EventType == models.EventChildDeleted {
		if event.ChildID == "" {
			c.logger.Warn("Child deletion event without child id")
			return false
		}
		c.forgetChild(ctx, event.ChildID)
		c.logRemote(event)
		return true
	}

	key, ok := keyForEvent(event)
	if !ok {
		c.logger.Debug("Ignoring change event",
			zap.String("event_type", event.EventType),
			zap.String("child_id", event.ChildID),
		)
		return false
	}
	c.cache.Invalidate(key)
	c.logRemote(event)
	return true
}

func (c *Coordinator) logRemote(event models.ChangeEvent) {
	c.logger.Debug("Applied remote change",
		zap.String("event_type", event.EventType),
		zap.String("child_id", event.ChildID),
		zap.String("origin", event.Origin),
	)
}

// keyForEvent maps an event to the key the matching local mutation
// invalidates.
func keyForEvent(event models.ChangeEvent) (cache.Key, bool) {
	switch event.EventType {
	case models.EventChildCreated, models.EventChildUpdated:
		return cache.ChildrenKey(), true
	case models.EventRecommendationCreated, models.EventRecommendationRead:
		return cache.RecommendationsKey(), true
	}

	if event.ChildID == "" {
		return cache.Key{}, false
	}
	switch event.EventType {
	case models.EventGrowthCreated:
		return cache.GrowthKey(event.ChildID), true
	case models.EventVaccinationUpdated:
		return cache.VaccinationsKey(event.ChildID), true
	case models.EventPrescriptionCreated, models.EventPrescriptionUpdated, models.EventPrescriptionDeleted:
		return cache.PrescriptionsKey(event.ChildID), true
	case models.EventReminderCreated, models.EventReminderUpdated, models.EventReminderDeleted:
		return cache.RemindersKey(event.ChildID), true
	}
	return cache.Key{}, false
}
