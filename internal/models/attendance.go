package models

import "time"

// AttendanceStatus represents the status for lab attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusExcused AttendanceStatus = "EXCUSED"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusAbsent, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Attended reports whether the status counts toward attendance percentage.
func (s AttendanceStatus) Attended() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusLate
}

// BulkOperationMode controls how bulk writes behave on errors.
type BulkOperationMode string

const (
	BulkModeAtomic         BulkOperationMode = "atomic"
	BulkModePartialOnError BulkOperationMode = "partialOnError"
)

// AttendanceRecord is one marked attendance row for a (student, session) pair.
type AttendanceRecord struct {
	ID          string           `db:"id" json:"id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	SessionID   string           `db:"session_id" json:"session_id"`
	SessionDate time.Time        `db:"session_date" json:"session_date"`
	Status      AttendanceStatus `db:"status" json:"status"`
	Notes       *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceHistoryRow captures one entry of a student's marked history.
type AttendanceHistoryRow struct {
	SessionID   string           `db:"session_id" json:"session_id"`
	SessionDate time.Time        `db:"session_date" json:"session_date"`
	Status      AttendanceStatus `db:"status" json:"status"`
	Notes       *string          `db:"notes" json:"notes,omitempty"`
}

// AttendanceBulkConflict captures failed bulk operations.
type AttendanceBulkConflict struct {
	StudentID string    `json:"student_id"`
	SessionID string    `json:"session_id"`
	Date      time.Time `json:"date"`
	Reason    string    `json:"reason"`
}
