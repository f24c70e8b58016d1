package dto

import (
	"fmt"
	"time"

	"loan-origination/internal/domain/customer"
)

type CreateCustomerRequest struct {
	FullNameLatin        string  `json:"full_name_latin"`
	FullNameKhmer        *string `json:"full_name_khmer,omitempty"`
	DateOfBirth          *string `json:"date_of_birth,omitempty"`
	IDCardType           string  `json:"id_card_type"`
	IDNumber             *string `json:"id_number,omitempty"`
	PortfolioOfficerName *string `json:"portfolio_officer_name,omitempty"`
}

func (r *CreateCustomerRequest) Validate() error {
	if r.FullNameLatin == "" {
		return fmt.Errorf("full_name_latin is required")
	}
	if r.IDCardType == "" {
		return fmt.Errorf("id_card_type is required")
	}
	if r.DateOfBirth != nil {
		if _, err := time.Parse("2006-01-02", *r.DateOfBirth); err != nil {
			return fmt.Errorf("invalid date_of_birth format (use YYYY-MM-DD): %w", err)
		}
	}
	return nil
}

func (r *CreateCustomerRequest) ToDomain() *customer.Customer {
	c := &customer.Customer{
		FullNameLatin:        r.FullNameLatin,
		FullNameKhmer:        r.FullNameKhmer,
		IDCardType:           customer.IDCardType(r.IDCardType),
		IDNumber:             r.IDNumber,
		PortfolioOfficerName: r.PortfolioOfficerName,
	}
	if r.DateOfBirth != nil {
		dob, _ := time.Parse("2006-01-02", *r.DateOfBirth)
		c.DateOfBirth = &dob
	}
	return c
}
