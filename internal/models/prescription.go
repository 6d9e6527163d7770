package models

// Prescription of a medication for a child.
type Prescription struct {
	ID                   string `json:"id"`
	ChildID              string `json:"childId"`
	MedicationName       string `json:"medicationName"`
	Dosage               string `json:"dosage"`
	Frequency            string `json:"frequency"`
	StartDate            Date   `json:"startDate"`
	EndDate              *Date  `json:"endDate,omitempty"`
	Notes                string `json:"notes,omitempty"`
	PrescriptionImageURI string `json:"prescriptionImageUri,omitempty"`
	IsActive             bool   `json:"isActive"`
}

// PrescriptionInput is the create payload; the backend decides IsActive.
type PrescriptionInput struct {
	ChildID              string `json:"childId"`
	MedicationName       string `json:"medicationName"`
	Dosage               string `json:"dosage"`
	Frequency            string `json:"frequency"`
	StartDate            Date   `json:"startDate"`
	EndDate              *Date  `json:"endDate,omitempty"`
	Notes                string `json:"notes,omitempty"`
	PrescriptionImageURI string `json:"prescriptionImageUri,omitempty"`
}

// PrescriptionPatch is a partial update.
type PrescriptionPatch struct {
	MedicationName *string `json:"medicationName,omitempty"`
	Dosage         *string `json:"dosage,omitempty"`
	Frequency      *string `json:"frequency,omitempty"`
	StartDate      *Date   `json:"startDate,omitempty"`
	EndDate        *Date   `json:"endDate,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	IsActive       *bool   `json:"isActive,omitempty"`
}
