package models

// VaccinationStatus is set by the backend and passed through untouched.
type VaccinationStatus string

const (
	VaccinationPending   VaccinationStatus = "pending"
	VaccinationCompleted VaccinationStatus = "completed"
	VaccinationOverdue   VaccinationStatus = "overdue"
)

func (s VaccinationStatus) Valid() bool {
	switch s {
	case VaccinationPending, VaccinationCompleted, VaccinationOverdue:
		return true
	}
	return false
}

// VaccinationRecord links a child to a catalog vaccine.
type VaccinationRecord struct {
	ID               string            `json:"id"`
	ChildID          string            `json:"childId"`
	VaccineID        string            `json:"vaccineId"`
	VaccineName      string            `json:"vaccineName"`
	DateAdministered *Date             `json:"dateAdministered,omitempty"`
	NextDoseDate     *Date             `json:"nextDoseDate,omitempty"`
	Status           VaccinationStatus `json:"status"`
	Notes            string            `json:"notes,omitempty"`
}

// VaccinationPatch is a partial update.
type VaccinationPatch struct {
	DateAdministered *Date             `json:"dateAdministered,omitempty"`
	NextDoseDate     *Date             `json:"nextDoseDate,omitempty"`
	Status           VaccinationStatus `json:"status,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
}

// Vaccine is an entry of the static vaccine catalog.
type Vaccine struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	RecommendedAge    string   `json:"recommendedAge"`
	AgeInMonths       int      `json:"ageInMonths"`
	Utility           string   `json:"utility"`
	Diseases          []string `json:"diseases"`
	SideEffects       []string `json:"sideEffects"`
	Contraindications []string `json:"contraindications,omitempty"` // nil when unknown
	DosesRequired     int      `json:"dosesRequired"`
}
