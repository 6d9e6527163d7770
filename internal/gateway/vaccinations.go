package gateway

import (
	"context"

	"mamacare-sync/internal/models"
)

func (c *Client) ListVaccinationRecords(ctx context.Context, childID string) ([]models.VaccinationRecord, error) {
	var records []models.VaccinationRecord
	if err := c.get(ctx, "/vaccination-records/child/{childId}", map[string]string{"childId": childID}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) UpdateVaccinationRecord(ctx context.Context, id string, patch models.VaccinationPatch) (*models.VaccinationRecord, error) {
	var record models.VaccinationRecord
	if err := c.send(ctx, "PUT", "/vaccination-records/{id}", idParam(id), patch, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
