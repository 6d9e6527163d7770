package mutation

import (
	"strings"

	"mamacare-sync/internal/gateway"
	"mamacare-sync/internal/models"
)

// fieldErrors collects per-field reasons.
type fieldErrors map[string]string

func (f fieldErrors) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		f[field] = "required"
	}
}

func (f fieldErrors) positive(field string, v *float64) {
	if v != nil && *v <= 0 {
		f[field] = "must be positive"
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return gateway.NewValidationError(f)
}

// requireChildID guards writes addressed by record id; the child id picks
// the scope that gets invalidated.
func requireChildID(childID string) error {
	f := fieldErrors{}
	f.require("childId", childID)
	return f.err()
}

func validateChildInput(in models.ChildInput) error {
	f := fieldErrors{}
	f.require("name", in.Name)
	if in.DateOfBirth.IsZero() {
		f["dateOfBirth"] = "required"
	}
	if !in.Gender.Valid() {
		f["gender"] = "must be male or female"
	}
	f.positive("weight", in.Weight)
	f.positive("height", in.Height)
	return f.err()
}

func validateChildPatch(p models.ChildPatch) error {
	f := fieldErrors{}
	if p.Name != nil {
		f.require("name", *p.Name)
	}
	if p.DateOfBirth != nil && p.DateOfBirth.IsZero() {
		f["dateOfBirth"] = "required"
	}
	if p.Gender != nil && !p.Gender.Valid() {
		f["gender"] = "must be male or female"
	}
	f.positive("weight", p.Weight)
	f.positive("height", p.Height)
	return f.err()
}

func validateGrowthInput(in models.GrowthInput) error {
	f := fieldErrors{}
	f.require("childId", in.ChildID)
	if in.Date.IsZero() {
		f["date"] = "required"
	}
	f.positive("weight", &in.Weight)
	f.positive("height", &in.Height)
	f.positive("headCircumference", in.HeadCircumference)
	return f.err()
}

func validateVaccinationPatch(p models.VaccinationPatch) error {
	f := fieldErrors{}
	if p.Status != "" && !p.Status.Valid() {
		f["status"] = "unknown status"
	}
	return f.err()
}

func validatePrescriptionInput(in models.PrescriptionInput) error {
	f := fieldErrors{}
	f.require("childId", in.ChildID)
	f.require("medicationName", in.MedicationName)
	f.require("dosage", in.Dosage)
	f.require("frequency", in.Frequency)
	if in.StartDate.IsZero() {
		f["startDate"] = "required"
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate.Time) {
		f["endDate"] = "before start date"
	}
	return f.err()
}

func validateReminderInput(in models.ReminderInput) error {
	f := fieldErrors{}
	f.require("childId", in.ChildID)
	f.require("title", in.Title)
	if !in.Type.Valid() {
		f["type"] = "unknown type"
	}
	if in.DateTime.IsZero() {
		f["dateTime"] = "required"
	}
	if in.RecurringPattern != nil && !in.RecurringPattern.Valid() {
		f["recurringPattern"] = "unknown pattern"
	}
	if in.IsRecurring && in.RecurringPattern == nil {
		f["recurringPattern"] = "required for recurring reminders"
	}
	return f.err()
}

func validateReminderPatch(p models.ReminderPatch) error {
	f := fieldErrors{}
	if p.Title != nil {
		f.require("title", *p.Title)
	}
	if p.Type != nil && !p.Type.Valid() {
		f["type"] = "unknown type"
	}
	if p.RecurringPattern != nil && !p.RecurringPattern.Valid() {
		f["recurringPattern"] = "unknown pattern"
	}
	return f.err()
}

func validateRecommendationInput(in models.RecommendationInput) error {
	f := fieldErrors{}
	f.require("childId", in.ChildID)
	f.require("title", in.Title)
	f.require("category", string(in.Category))
	if !in.Priority.Valid() {
		f["priority"] = "must be low, medium or high"
	}
	return f.err()
}
