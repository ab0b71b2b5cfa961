package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medready/paramedic-ops-api/internal/models"
)

// SiteRepository handles persistence for placement sites and their bookings.
type SiteRepository struct {
	db *sqlx.DB
}

// NewSiteRepository constructs the repository.
func NewSiteRepository(db *sqlx.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

// FindByIDAndKind loads a site scoped to its kind discriminator.
func (r *SiteRepository) FindByIDAndKind(ctx context.Context, id string, kind models.SiteKind) (*models.CapacitySite, error) {
	query := `SELECT id, name, kind, max_students_per_day, active, created_at, updated_at
FROM capacity_sites WHERE id = $1 AND kind = $2`
	var site models.CapacitySite
	if err := r.db.GetContext(ctx, &site, query, id, kind); err != nil {
		return nil, err
	}
	return &site, nil
}

// List returns all sites, optionally filtered by kind.
func (r *SiteRepository) List(ctx context.Context, kind *models.SiteKind) ([]models.CapacitySite, error) {
	query := `SELECT id, name, kind, max_students_per_day, active, created_at, updated_at
FROM capacity_sites WHERE ($1::text IS NULL OR kind = $1) ORDER BY name ASC`
	var kindArg interface{}
	if kind != nil {
		kindArg = string(*kind)
	}
	var rows []models.CapacitySite
	if err := r.db.SelectContext(ctx, &rows, query, kindArg); err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return rows, nil
}

// UpdateMaxPerDay sets the configured daily cap for a site.
func (r *SiteRepository) UpdateMaxPerDay(ctx context.Context, id string, max *int, updatedAt time.Time) (*models.CapacitySite, error) {
	query := `UPDATE capacity_sites SET max_students_per_day = $2, updated_at = $3 WHERE id = $1
RETURNING id, name, kind, max_students_per_day, active, created_at, updated_at`
	var site models.CapacitySite
	if err := r.db.GetContext(ctx, &site, query, id, max, updatedAt); err != nil {
		return nil, err
	}
	return &site, nil
}

// CountCommittedPlacements counts active placements for a (site, date) pair.
// Completed and withdrawn placements do not hold a slot.
func (r *SiteRepository) CountCommittedPlacements(ctx context.Context, siteID string, date time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM placements
WHERE site_id = $1 AND placement_date = $2 AND status NOT IN ($3, $4)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, siteID, date, models.PlacementStatusCompleted, models.PlacementStatusWithdrawn); err != nil {
		return 0, fmt.Errorf("count committed placements: %w", err)
	}
	return count, nil
}
