package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"mamacare-sync/internal/models"
)

// VaccineRepository reads the static vaccine catalog.
type VaccineRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewVaccineRepository(db *sql.DB, logger *zap.Logger) *VaccineRepository {
	return &VaccineRepository{
		db:     db,
		logger: logger,
	}
}

// ListVaccines returns the catalog ordered by recommended age.
// A NULL contraindications column stays nil (unknown), distinct from empty.
func (r *VaccineRepository) ListVaccines(ctx context.Context) ([]models.Vaccine, error) {
	query := `
		SELECT
			vaccine_id,
			name,
			description,
			recommended_age,
			age_in_months,
			utility,
			diseases,
			side_effects,
			contraindications,
			doses_required
		FROM vaccines
		ORDER BY age_in_months, name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query vaccines: %w", err)
	}
	defer rows.Close()

	var vaccines []models.Vaccine
	for rows.Next() {
		var v models.Vaccine
		var description, utility sql.NullString
		if err := rows.Scan(
			&v.ID,
			&v.Name,
			&description,
			&v.RecommendedAge,
			&v.AgeInMonths,
			&utility,
			pq.Array(&v.Diseases),
			pq.Array(&v.SideEffects),
			pq.Array(&v.Contraindications),
			&v.DosesRequired,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vaccine: %w", err)
		}
		v.Description = description.String
		v.Utility = utility.String
		vaccines = append(vaccines, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vaccines: %w", err)
	}

	r.logger.Debug("Loaded vaccine catalog", zap.Int("count", len(vaccines)))
	return vaccines, nil
}

// GetVaccine returns one catalog entry, or nil when the id is unknown.
func (r *VaccineRepository) GetVaccine(ctx context.Context, id string) (*models.Vaccine, error) {
	query := `
		SELECT
			vaccine_id,
			name,
			description,
			recommended_age,
			age_in_months,
			utility,
			diseases,
			side_effects,
			contraindications,
			doses_required
		FROM vaccines
		WHERE vaccine_id = $1
	`

	var v models.Vaccine
	var description, utility sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.Name,
		&description,
		&v.RecommendedAge,
		&v.AgeInMonths,
		&utility,
		pq.Array(&v.Diseases),
		pq.Array(&v.SideEffects),
		pq.Array(&v.Contraindications),
		&v.DosesRequired,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vaccine: %w", err)
	}
	v.Description = description.String
	v.Utility = utility.String
	return &v, nil
}
