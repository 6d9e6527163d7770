package gateway

import (
	"context"

	"mamacare-sync/internal/models"
)

func (c *Client) ListReminders(ctx context.Context, childID string) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := c.get(ctx, "/reminders/child/{childId}", map[string]string{"childId": childID}, &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

func (c *Client) CreateReminder(ctx context.Context, in models.ReminderInput) (*models.Reminder, error) {
	var r models.Reminder
	if err := c.send(ctx, "POST", "/reminders", nil, in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) UpdateReminder(ctx context.Context, id string, patch models.ReminderPatch) (*models.Reminder, error) {
	var r models.Reminder
	if err := c.send(ctx, "PUT", "/reminders/{id}", idParam(id), patch, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) DeleteReminder(ctx context.Context, id string) error {
	return c.send(ctx, "DELETE", "/reminders/{id}", idParam(id), nil, nil)
}
