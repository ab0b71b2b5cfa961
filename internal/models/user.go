package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent        UserRole = "STUDENT"
	RolePreceptor      UserRole = "PRECEPTOR"
	RoleInstructor     UserRole = "INSTRUCTOR"
	RoleLeadInstructor UserRole = "LEAD_INSTRUCTOR"
	RoleAdmin          UserRole = "ADMIN"
	RoleSuperAdmin     UserRole = "SUPERADMIN"
)

// roleRank orders roles from least to most privileged.
var roleRank = map[UserRole]int{
	RoleStudent:        1,
	RolePreceptor:      2,
	RoleInstructor:     3,
	RoleLeadInstructor: 4,
	RoleAdmin:          5,
	RoleSuperAdmin:     6,
}

// Valid reports whether the role is part of the hierarchy.
func (r UserRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role sits at or above the given role in the hierarchy.
func (r UserRole) AtLeast(min UserRole) bool {
	return roleRank[r] >= roleRank[min] && roleRank[r] > 0
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
