package dto

import (
	"fmt"
	"strings"

	"loan-origination/internal/domain/user"
)

type CreateUserRequest struct {
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
	Role         string  `json:"role,omitempty"`
	DepartmentID string  `json:"department_id"`
	BranchID     string  `json:"branch_id"`
}

func (r *CreateUserRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if r.FirstName == "" || r.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	return nil
}

func (r *CreateUserRequest) ToInput() user.CreateInput {
	return user.CreateInput{
		Username:     r.Username,
		Email:        r.Email,
		Password:     r.Password,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PhoneNumber:  r.PhoneNumber,
		Role:         user.Role(r.Role),
		DepartmentID: r.DepartmentID,
		BranchID:     r.BranchID,
	}
}
