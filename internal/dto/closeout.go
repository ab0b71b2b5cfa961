package dto

import (
	"time"

	"github.com/medready/paramedic-ops-api/internal/models"
)

// CloseoutChecklistResponse returns the rebuilt checklist for an internship.
type CloseoutChecklistResponse struct {
	InternshipID  string                 `json:"internship_id"`
	StudentID     string                 `json:"student_id"`
	RequiredHours float64                `json:"required_hours"`
	Completed     bool                   `json:"completed"`
	CompletedAt   *time.Time             `json:"completed_at,omitempty"`
	CompletedBy   *string                `json:"completed_by,omitempty"`
	Checklist     []models.ChecklistItem `json:"checklist"`
}

// ChecklistItemInput is a caller-submitted checklist entry; only the manual
// override is trusted, everything else is rebuilt server-side.
type ChecklistItemInput struct {
	Key            string `json:"key" validate:"required"`
	ManualOverride bool   `json:"manual_override"`
}

// CloseoutFinalizeRequest is the finalize body.
type CloseoutFinalizeRequest struct {
	Checklist []ChecklistItemInput `json:"checklist" validate:"required,min=1,dive"`
}

// CloseoutFinalizeResponse reports the stamped completion.
type CloseoutFinalizeResponse struct {
	InternshipID string    `json:"internship_id"`
	CompletedAt  time.Time `json:"completed_at"`
	CompletedBy  string    `json:"completed_by"`
}
