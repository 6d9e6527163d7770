package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var vaccineColumns = []string{
	"vaccine_id", "name", "description", "recommended_age", "age_in_months",
	"utility", "diseases", "side_effects", "contraindications", "doses_required",
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *VaccineRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewVaccineRepository(db, zap.NewNop())
	return db, mock, repo
}

func TestListVaccines_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows(vaccineColumns).
		AddRow("bcg", "BCG", "Tuberculose", "Ao nascer", 0, "Protege contra formas graves", "{tuberculose}", "{febre,\"dor local\"}", nil, 1).
		AddRow("hexa", "Hexavalente", nil, "2 meses", 2, nil, "{difteria,tetano}", "{}", "{}", 3)

	mock.ExpectQuery(`SELECT\s+vaccine_id`).WillReturnRows(rows)

	vaccines, err := repo.ListVaccines(context.Background())
	require.NoError(t, err)
	require.Len(t, vaccines, 2)

	assert.Equal(t, "bcg", vaccines[0].ID)
	assert.Equal(t, []string{"tuberculose"}, vaccines[0].Diseases)
	assert.Equal(t, []string{"febre", "dor local"}, vaccines[0].SideEffects)
	assert.Nil(t, vaccines[0].Contraindications, "NULL means unknown")

	assert.Equal(t, 3, vaccines[1].DosesRequired)
	assert.Empty(t, vaccines[1].Description)
	assert.NotNil(t, vaccines[1].Contraindications)
	assert.Empty(t, vaccines[1].Contraindications)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListVaccines_QueryError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+vaccine_id`).WillReturnError(errors.New("connection reset"))

	_, err := repo.ListVaccines(context.Background())
	assert.ErrorContains(t, err, "failed to query vaccines")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVaccine(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM vaccines\s+WHERE vaccine_id = \$1`).
		WithArgs("bcg").
		WillReturnRows(sqlmock.NewRows(vaccineColumns).
			AddRow("bcg", "BCG", "", "Ao nascer", 0, "", "{}", "{}", nil, 1))
	mock.ExpectQuery(`FROM vaccines\s+WHERE vaccine_id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(vaccineColumns))

	v, err := repo.GetVaccine(context.Background(), "bcg")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "BCG", v.Name)

	v, err = repo.GetVaccine(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.NoError(t, mock.ExpectationsWereMet())
}
