package models

import "time"

// Cohort is a group of students progressing through the program together.
type Cohort struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	Active    bool      `db:"active" json:"active"`
}

// Student is a program participant enrolled in a cohort.
type Student struct {
	ID       string  `db:"id" json:"id"`
	FullName string  `db:"full_name" json:"full_name"`
	Email    string  `db:"email" json:"email"`
	CohortID *string `db:"cohort_id" json:"cohort_id,omitempty"`
	Active   bool    `db:"active" json:"active"`
}
