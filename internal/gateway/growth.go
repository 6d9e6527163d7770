package gateway

import (
	"context"

	"mamacare-sync/internal/models"
)

func (c *Client) ListGrowthRecords(ctx context.Context, childID string) ([]models.GrowthRecord, error) {
	var records []models.GrowthRecord
	if err := c.get(ctx, "/growth/child/{childId}", map[string]string{"childId": childID}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) CreateGrowthRecord(ctx context.Context, in models.GrowthInput) (*models.GrowthRecord, error) {
	var record models.GrowthRecord
	if err := c.send(ctx, "POST", "/growth", nil, in, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
