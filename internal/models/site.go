package models

import "time"

// SiteKind discriminates placement site types.
type SiteKind string

const (
	SiteKindAgency       SiteKind = "agency"
	SiteKindClinicalSite SiteKind = "clinical_site"
)

// Valid returns true when the kind is one of the two supported values.
func (k SiteKind) Valid() bool {
	return k == SiteKindAgency || k == SiteKindClinicalSite
}

// CapacitySite is a placement site with a configured daily student cap.
type CapacitySite struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Kind              SiteKind  `db:"kind" json:"kind"`
	MaxStudentsPerDay *int      `db:"max_students_per_day" json:"max_students_per_day,omitempty"`
	Active            bool      `db:"active" json:"active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// PlacementStatus tracks the lifecycle of a scheduled placement.
type PlacementStatus string

const (
	PlacementStatusScheduled PlacementStatus = "scheduled"
	PlacementStatusConfirmed PlacementStatus = "confirmed"
	PlacementStatusCompleted PlacementStatus = "completed"
	PlacementStatusWithdrawn PlacementStatus = "withdrawn"
)

// CapacityProjection is the accountant's verdict for a proposed placement.
type CapacityProjection struct {
	Projected             int    `json:"projected"`
	MaxPerDay             int    `json:"max_per_day"`
	CurrentCommitted      int    `json:"current_committed"`
	Allowed               bool   `json:"allowed"`
	WouldExceed           bool   `json:"would_exceed"`
	UtilizationPercentage int    `json:"utilization_percentage"`
	Message               string `json:"message"`
}
