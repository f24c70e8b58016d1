package user

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleOfficer Role = "officer"
	RoleViewer  Role = "viewer"
)

type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusInactive  AccountStatus = "inactive"
	StatusSuspended AccountStatus = "suspended"
)

type User struct {
	ID             string        `json:"id"`
	Username       string        `json:"username"`
	Email          string        `json:"email"`
	HashedPassword string        `json:"-"`
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	PhoneNumber    *string       `json:"phone_number,omitempty"`
	Role           Role          `json:"role"`
	Status         AccountStatus `json:"status"`
	DepartmentID   string        `json:"department_id"`
	BranchID       string        `json:"branch_id"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	LastLoginAt    *time.Time    `json:"last_login_at,omitempty"`
}

// CanProcessLoans reports whether the user may be assigned loan applications.
func (u *User) CanProcessLoans() bool {
	switch u.Role {
	case RoleOfficer, RoleManager, RoleAdmin:
		return true
	}
	return false
}
