package models

import "time"

// RecommendationCategory is an open set; these are the known values.
type RecommendationCategory string

const (
	CategoryNutrition   RecommendationCategory = "nutrition"
	CategorySleep       RecommendationCategory = "sleep"
	CategoryHygiene     RecommendationCategory = "hygiene"
	CategoryActivity    RecommendationCategory = "activity"
	CategoryDevelopment RecommendationCategory = "development"
)

// Priority of a recommendation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Recommendation struct {
	ID          string                 `json:"id"`
	ChildID     string                 `json:"childId"`
	Category    RecommendationCategory `json:"category"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Priority    Priority               `json:"priority"`
	IsRead      bool                   `json:"isRead"`
	CreatedAt   time.Time              `json:"createdAt"`
}

type RecommendationInput struct {
	ChildID     string                 `json:"childId"`
	Category    RecommendationCategory `json:"category"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Priority    Priority               `json:"priority"`
}
