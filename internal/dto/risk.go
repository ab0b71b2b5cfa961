package dto

import (
	"time"

	"github.com/medready/paramedic-ops-api/internal/models"
)

// AttendanceSweepResponse summarises one cron sweep across all active cohorts.
type AttendanceSweepResponse struct {
	AtRiskCount    int                         `json:"at_risk_count"`
	CriticalCount  int                         `json:"critical_count"`
	WarningCount   int                         `json:"warning_count"`
	AtRiskStudents []models.StudentRiskSummary `json:"at_risk_students"`
	CohortsScanned int                         `json:"cohorts_scanned"`
	StudentsFailed int                         `json:"students_failed"`
	GeneratedAt    time.Time                   `json:"generated_at"`
}

// StudentRiskReportResponse returns a single student's marked history and derived summary.
type StudentRiskReportResponse struct {
	History []models.AttendanceHistoryRow `json:"history"`
	Summary *models.StudentRiskSummary    `json:"summary,omitempty"`
}
