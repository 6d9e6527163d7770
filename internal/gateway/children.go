package gateway

import (
	"context"

	"mamacare-sync/internal/models"
)

// ListChildren returns the user's children in backend order.
func (c *Client) ListChildren(ctx context.Context) ([]models.Child, error) {
	var children []models.Child
	if err := c.get(ctx, "/children", nil, &children); err != nil {
		return nil, err
	}
	return children, nil
}

func (c *Client) CreateChild(ctx context.Context, in models.ChildInput) (*models.Child, error) {
	var child models.Child
	if err := c.send(ctx, "POST", "/children", nil, in, &child); err != nil {
		return nil, err
	}
	return &child, nil
}

func (c *Client) UpdateChild(ctx context.Context, id string, patch models.ChildPatch) (*models.Child, error) {
	var child models.Child
	if err := c.send(ctx, "PUT", "/children/{id}", idParam(id), patch, &child); err != nil {
		return nil, err
	}
	return &child, nil
}

func (c *Client) DeleteChild(ctx context.Context, id string) error {
	return c.send(ctx, "DELETE", "/children/{id}", idParam(id), nil, nil)
}
