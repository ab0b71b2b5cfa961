package models

import "time"

// Internship is a student's field internship record and its closeout state.
type Internship struct {
	ID                     string     `db:"id" json:"id"`
	StudentID              string     `db:"student_id" json:"student_id"`
	SiteID                 *string    `db:"site_id" json:"site_id,omitempty"`
	TotalVerifiedHours     float64    `db:"total_verified_hours" json:"total_verified_hours"`
	FinalEvalSubmittedAt   *time.Time `db:"final_eval_submitted_at" json:"final_eval_submitted_at,omitempty"`
	PreceptorSignoffAt     *time.Time `db:"preceptor_signoff_at" json:"preceptor_signoff_at,omitempty"`
	FieldDocSubmittedAt    *time.Time `db:"field_doc_submitted_at" json:"field_doc_submitted_at,omitempty"`
	StateDocSubmittedAt    *time.Time `db:"state_doc_submitted_at" json:"state_doc_submitted_at,omitempty"`
	WrittenExamPassed      bool       `db:"written_exam_passed" json:"written_exam_passed"`
	WrittenExamDate        *time.Time `db:"written_exam_date" json:"written_exam_date,omitempty"`
	PsychomotorExamPassed  bool       `db:"psychomotor_exam_passed" json:"psychomotor_exam_passed"`
	PsychomotorExamDate    *time.Time `db:"psychomotor_exam_date" json:"psychomotor_exam_date,omitempty"`
	CloseoutCompletedAt    *time.Time `db:"closeout_completed_at" json:"closeout_completed_at,omitempty"`
	CloseoutCompletedBy    *string    `db:"closeout_completed_by" json:"closeout_completed_by,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

// Completed reports whether the closeout has already been stamped.
func (i *Internship) Completed() bool {
	return i.CloseoutCompletedAt != nil
}

// ChecklistKey identifies one of the eight fixed closeout gates.
type ChecklistKey string

const (
	ChecklistKeyShiftsCompleted   ChecklistKey = "shifts_completed"
	ChecklistKeyFinalEvaluation   ChecklistKey = "final_evaluation_submitted"
	ChecklistKeyPreceptorSignoff  ChecklistKey = "preceptor_signoff"
	ChecklistKeyHoursVerified     ChecklistKey = "hours_verified"
	ChecklistKeyFieldDocSubmitted ChecklistKey = "field_internship_doc_submitted"
	ChecklistKeyStateDocSubmitted ChecklistKey = "state_summary_doc_submitted"
	ChecklistKeyWrittenExam       ChecklistKey = "written_exam_passed"
	ChecklistKeyPsychomotorExam   ChecklistKey = "psychomotor_exam_passed"
)

// ChecklistItem is one closeout gate; the list is rebuilt per request and never persisted.
type ChecklistItem struct {
	Key            ChecklistKey `json:"key"`
	Label          string       `json:"label"`
	AutoChecked    bool         `json:"auto_checked"`
	ManualOverride bool         `json:"manual_override"`
	Details        string       `json:"details"`
}

// Satisfied reports whether the gate passes, either automatically or by override.
func (i ChecklistItem) Satisfied() bool {
	return i.AutoChecked || i.ManualOverride
}
