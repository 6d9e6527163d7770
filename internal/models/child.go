package models

import "time"

// Gender of a child.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Child is the pivot entity every other record hangs off.
type Child struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DateOfBirth  Date      `json:"dateOfBirth"`
	Gender       Gender    `json:"gender"`
	PhotoURI     string    `json:"photoUri,omitempty"`
	Weight       *float64  `json:"weight,omitempty"` // kg
	Height       *float64  `json:"height,omitempty"` // cm
	MedicalNotes string    `json:"medicalNotes,omitempty"`
	UserID       string    `json:"userId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ChildInput is the create payload.
type ChildInput struct {
	Name         string   `json:"name"`
	DateOfBirth  Date     `json:"dateOfBirth"`
	Gender       Gender   `json:"gender"`
	PhotoURI     string   `json:"photoUri,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	MedicalNotes string   `json:"medicalNotes,omitempty"`
}

// ChildPatch is a partial update; nil fields are not sent.
type ChildPatch struct {
	Name         *string  `json:"name,omitempty"`
	DateOfBirth  *Date    `json:"dateOfBirth,omitempty"`
	Gender       *Gender  `json:"gender,omitempty"`
	PhotoURI     *string  `json:"photoUri,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	MedicalNotes *string  `json:"medicalNotes,omitempty"`
}
