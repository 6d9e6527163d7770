package gateway

import (
	"context"

	"mamacare-sync/internal/models"
)

// ListRecommendations returns every recommendation visible to the user.
// The backend does not partition them per child.
func (c *Client) ListRecommendations(ctx context.Context) ([]models.Recommendation, error) {
	var recs []models.Recommendation
	if err := c.get(ctx, "/recommendations", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Client) CreateRecommendation(ctx context.Context, in models.RecommendationInput) (*models.Recommendation, error) {
	var rec models.Recommendation
	if err := c.send(ctx, "POST", "/recommendations", nil, in, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkRecommendationRead sets isRead on the server.
func (c *Client) MarkRecommendationRead(ctx context.Context, id string) (*models.Recommendation, error) {
	var rec models.Recommendation
	body := map[string]bool{"isRead": true}
	if err := c.send(ctx, "PUT", "/recommendations/{id}", idParam(id), body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
