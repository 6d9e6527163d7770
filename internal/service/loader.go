package service

import (
	"context"
	"fmt"

	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/models"
)

// Reader is the remote read surface. *gateway.Client implements it.
type Reader interface {
	ListChildren(ctx context.Context) ([]models.Child, error)
	ListGrowthRecords(ctx context.Context, childID string) ([]models.GrowthRecord, error)
	ListVaccinationRecords(ctx context.Context, childID string) ([]models.VaccinationRecord, error)
	ListPrescriptions(ctx context.Context, childID string) ([]models.Prescription, error)
	ListReminders(ctx context.Context, childID string) ([]models.Reminder, error)
	ListRecommendations(ctx context.Context) ([]models.Recommendation, error)
}

// GatewayLoader loads cache keys through the gateway.
type GatewayLoader struct {
	reader Reader
}

func NewGatewayLoader(reader Reader) *GatewayLoader {
	return &GatewayLoader{reader: reader}
}

// Load returns the typed slice of the key's entity. Gateway errors are
// returned unwrapped so callers can match them with errors.Is.
func (l *GatewayLoader) Load(ctx context.Context, key cache.Key) (interface{}, error) {
	switch key.Entity {
	case cache.EntityChildren:
		return l.reader.ListChildren(ctx)
	case cache.EntityRecommendations:
		return l.reader.ListRecommendations(ctx)
	case cache.EntityGrowth:
		return l.reader.ListGrowthRecords(ctx, key.Scope)
	case cache.EntityVaccinations:
		return l.reader.ListVaccinationRecords(ctx, key.Scope)
	case cache.EntityPrescriptions:
		return l.reader.ListPrescriptions(ctx, key.Scope)
	case cache.EntityReminders:
		return l.reader.ListReminders(ctx, key.Scope)
	}
	return nil, fmt.Errorf("unknown entity type %q", key.Entity)
}
