package gateway

import (
	"context"

	"mamacare-sync/internal/models"
)

func (c *Client) ListPrescriptions(ctx context.Context, childID string) ([]models.Prescription, error) {
	var prescriptions []models.Prescription
	if err := c.get(ctx, "/prescriptions/child/{childId}", map[string]string{"childId": childID}, &prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}

func (c *Client) CreatePrescription(ctx context.Context, in models.PrescriptionInput) (*models.Prescription, error) {
	var p models.Prescription
	if err := c.send(ctx, "POST", "/prescriptions", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdatePrescription(ctx context.Context, id string, patch models.PrescriptionPatch) (*models.Prescription, error) {
	var p models.Prescription
	if err := c.send(ctx, "PUT", "/prescriptions/{id}", idParam(id), patch, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletePrescription(ctx context.Context, id string) error {
	return c.send(ctx, "DELETE", "/prescriptions/{id}", idParam(id), nil, nil)
}
