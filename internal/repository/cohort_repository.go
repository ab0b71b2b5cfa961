package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/medready/paramedic-ops-api/internal/models"
)

// CohortRepository reads cohort rosters for the attendance sweep.
type CohortRepository struct {
	db *sqlx.DB
}

// NewCohortRepository constructs the repository.
func NewCohortRepository(db *sqlx.DB) *CohortRepository {
	return &CohortRepository{db: db}
}

// ListActive returns cohorts that are currently running.
func (r *CohortRepository) ListActive(ctx context.Context) ([]models.Cohort, error) {
	query := `SELECT id, name, start_date, active FROM cohorts WHERE active = TRUE ORDER BY start_date DESC`
	var rows []models.Cohort
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list active cohorts: %w", err)
	}
	return rows, nil
}

// FindStudent returns a single student row by id.
func (r *CohortRepository) FindStudent(ctx context.Context, studentID string) (*models.Student, error) {
	query := `SELECT id, full_name, email, cohort_id, active FROM students WHERE id = $1`
	var row models.Student
	if err := r.db.GetContext(ctx, &row, query, studentID); err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &row, nil
}

// ListStudents returns the active students enrolled in a cohort.
func (r *CohortRepository) ListStudents(ctx context.Context, cohortID string) ([]models.Student, error) {
	query := `SELECT id, full_name, email, cohort_id, active
FROM students
WHERE cohort_id = $1 AND active = TRUE
ORDER BY full_name ASC`
	var rows []models.Student
	if err := r.db.SelectContext(ctx, &rows, query, cohortID); err != nil {
		return nil, fmt.Errorf("list cohort students: %w", err)
	}
	return rows, nil
}
