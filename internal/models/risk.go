package models

import "time"

// RiskLevel is the coarse attendance risk tier for a student.
type RiskLevel string

const (
	RiskLevelNone     RiskLevel = "none"
	RiskLevelWarning  RiskLevel = "warning"
	RiskLevelCritical RiskLevel = "critical"
)

// rank orders risk tiers for sorting and monotonicity checks.
func (r RiskLevel) rank() int {
	switch r {
	case RiskLevelCritical:
		return 2
	case RiskLevelWarning:
		return 1
	default:
		return 0
	}
}

// MoreSevereThan reports whether r outranks other.
func (r RiskLevel) MoreSevereThan(other RiskLevel) bool {
	return r.rank() > other.rank()
}

// StudentRiskSummary is derived fresh from attendance rows on every run; never persisted.
type StudentRiskSummary struct {
	StudentID           string     `json:"student_id"`
	StudentName         string     `json:"student_name"`
	CohortID            string     `json:"cohort_id"`
	TotalSessionsMarked int        `json:"total_sessions_marked"`
	TotalAbsences       int        `json:"total_absences"`
	ConsecutiveMisses   int        `json:"consecutive_misses"`
	AttendancePct       int        `json:"attendance_pct"`
	LastAttendedDate    *time.Time `json:"last_attended_date,omitempty"`
	RiskLevel           RiskLevel  `json:"risk_level"`
}
