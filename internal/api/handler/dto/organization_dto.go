package dto

import (
	"fmt"

	"loan-origination/internal/domain/organization"
)

type CreateBranchRequest struct {
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Address     string   `json:"address"`
	PhoneNumber *string  `json:"phone_number,omitempty"`
	Email       *string  `json:"email,omitempty"`
	ManagerID   *string  `json:"manager_id,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

func (r *CreateBranchRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Code == "" {
		return fmt.Errorf("code is required")
	}
	if r.Address == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}

func (r *CreateBranchRequest) ToDomain() *organization.Branch {
	return &organization.Branch{
		Name:        r.Name,
		Code:        r.Code,
		Address:     r.Address,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		ManagerID:   r.ManagerID,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		IsActive:    true,
	}
}

type CreateDepartmentRequest struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
	ManagerID   *string `json:"manager_id,omitempty"`
}

func (r *CreateDepartmentRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Code == "" {
		return fmt.Errorf("code is required")
	}
	return nil
}

func (r *CreateDepartmentRequest) ToDomain() *organization.Department {
	return &organization.Department{
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
		ManagerID:   r.ManagerID,
		IsActive:    true,
	}
}
