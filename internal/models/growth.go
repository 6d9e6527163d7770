package models

// GrowthRecord is one measurement of a child.
type GrowthRecord struct {
	ID                string   `json:"id"`
	ChildID           string   `json:"childId"`
	Date              Date     `json:"date"`
	Weight            float64  `json:"weight"` // kg
	Height            float64  `json:"height"` // cm
	HeadCircumference *float64 `json:"headCircumference,omitempty"`
	Notes             string   `json:"notes,omitempty"`
}

// GrowthInput is the create payload. ChildID is filled in by the gateway.
type GrowthInput struct {
	ChildID           string   `json:"childId"`
	Date              Date     `json:"date"`
	Weight            float64  `json:"weight"`
	Height            float64  `json:"height"`
	HeadCircumference *float64 `json:"headCircumference,omitempty"`
	Notes             string   `json:"notes,omitempty"`
}
