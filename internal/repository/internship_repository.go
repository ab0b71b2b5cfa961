package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medready/paramedic-ops-api/internal/models"
)

// ErrAlreadyCompleted signals a closeout race lost to a concurrent finalize.
var ErrAlreadyCompleted = fmt.Errorf("internship closeout already completed")

// InternshipRepository handles persistence for internship records.
type InternshipRepository struct {
	db *sqlx.DB
}

// NewInternshipRepository constructs the repository.
func NewInternshipRepository(db *sqlx.DB) *InternshipRepository {
	return &InternshipRepository{db: db}
}

// FindByID loads an internship record.
func (r *InternshipRepository) FindByID(ctx context.Context, id string) (*models.Internship, error) {
	query := `SELECT id, student_id, site_id, total_verified_hours, final_eval_submitted_at, preceptor_signoff_at,
field_doc_submitted_at, state_doc_submitted_at, written_exam_passed, written_exam_date,
psychomotor_exam_passed, psychomotor_exam_date, closeout_completed_at, closeout_completed_by,
created_at, updated_at
FROM internships WHERE id = $1`
	var internship models.Internship
	if err := r.db.GetContext(ctx, &internship, query, id); err != nil {
		return nil, err
	}
	return &internship, nil
}

// CompleteCloseout stamps the completion actor and timestamp. The guard on
// closeout_completed_at makes the transition one-way: a concurrent finalize
// that lands first wins and this call reports ErrAlreadyCompleted.
func (r *InternshipRepository) CompleteCloseout(ctx context.Context, id, completedBy string, completedAt time.Time) error {
	query := `UPDATE internships
SET closeout_completed_at = $2, closeout_completed_by = $3, updated_at = $2
WHERE id = $1 AND closeout_completed_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, completedAt, completedBy)
	if err != nil {
		return fmt.Errorf("complete closeout: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete closeout rows affected: %w", err)
	}
	if affected == 0 {
		// Either the id is unknown or a concurrent finalize already stamped it.
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM internships WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("complete closeout existence check: %w", err)
		}
		if !exists {
			return sql.ErrNoRows
		}
		return ErrAlreadyCompleted
	}
	return nil
}
