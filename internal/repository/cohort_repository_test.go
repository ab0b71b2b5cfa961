package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCohortMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCohortRepositoryFindStudent(t *testing.T) {
	db, mock, cleanup := newCohortMock(t)
	defer cleanup()
	repo := NewCohortRepository(db)

	rows := sqlmock.NewRows([]string{"id", "full_name", "email", "cohort_id", "active"}).
		AddRow("s1", "Warning Student", "warning@medready.example", "cohort-1", true)
	mock.ExpectQuery("SELECT id, full_name, email, cohort_id, active FROM students").
		WithArgs("s1").
		WillReturnRows(rows)

	student, err := repo.FindStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Warning Student", student.FullName)
	require.NotNil(t, student.CohortID)
	assert.Equal(t, "cohort-1", *student.CohortID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCohortRepositoryFindStudentUnknown(t *testing.T) {
	db, mock, cleanup := newCohortMock(t)
	defer cleanup()
	repo := NewCohortRepository(db)

	mock.ExpectQuery("SELECT id, full_name, email, cohort_id, active FROM students").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindStudent(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
