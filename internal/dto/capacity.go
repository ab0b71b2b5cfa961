package dto

import "github.com/medready/paramedic-ops-api/internal/models"

// CapacityCheckRequest carries the query parameters of a capacity check.
type CapacityCheckRequest struct {
	SiteID       string `json:"site_id" validate:"required"`
	Source       string `json:"source" validate:"required,site_kind"`
	Date         string `json:"date" validate:"omitempty"`
	StudentCount int    `json:"student_count" validate:"omitempty,min=1"`
}

// CapacityCheckResponse is the accountant output plus site identity.
type CapacityCheckResponse struct {
	SiteID   string                    `json:"site_id"`
	SiteName string                    `json:"site_name"`
	Source   models.SiteKind           `json:"source"`
	Date     string                    `json:"date"`
	models.CapacityProjection
}

// SiteUpdateRequest adjusts a site's configured daily maximum.
type SiteUpdateRequest struct {
	MaxStudentsPerDay *int `json:"max_students_per_day" validate:"omitempty,min=0"`
}
