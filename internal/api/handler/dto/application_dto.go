package dto

import (
	"fmt"
	"time"

	"loan-origination/internal/domain/application"
)

type CreateApplicationRequest struct {
	CustomerID            string   `json:"customer_id"`
	LoanType              string   `json:"loan_type"`
	LoanAmount            float64  `json:"loan_amount"`
	LoanPurpose           string   `json:"loan_purpose"`
	LoanTenureMonths      int      `json:"loan_tenure_months"`
	MonthlyIncome         float64  `json:"monthly_income"`
	EmploymentType        string   `json:"employment_type"`
	EmployerName          *string  `json:"employer_name,omitempty"`
	WorkExperienceYears   *int     `json:"work_experience_years,omitempty"`
	CollateralType        string   `json:"collateral_type,omitempty"`
	CollateralValue       *float64 `json:"collateral_value,omitempty"`
	CollateralDescription *string  `json:"collateral_description,omitempty"`
	BranchID              string   `json:"branch_id"`
	DepartmentID          string   `json:"department_id"`
}

func (r *CreateApplicationRequest) Validate() error {
	if r.CustomerID == "" {
		return fmt.Errorf("customer_id is required")
	}
	if r.LoanType == "" {
		return fmt.Errorf("loan_type is required")
	}
	if r.LoanAmount <= 0 {
		return fmt.Errorf("loan_amount must be greater than zero")
	}
	if r.LoanPurpose == "" {
		return fmt.Errorf("loan_purpose is required")
	}
	if r.LoanTenureMonths < application.MinTenureMonths || r.LoanTenureMonths > application.MaxTenureMonths {
		return fmt.Errorf("loan_tenure_months must be between %d and %d", application.MinTenureMonths, application.MaxTenureMonths)
	}
	if r.MonthlyIncome <= 0 {
		return fmt.Errorf("monthly_income must be greater than zero")
	}
	if r.BranchID == "" {
		return fmt.Errorf("branch_id is required")
	}
	if r.DepartmentID == "" {
		return fmt.Errorf("department_id is required")
	}
	return nil
}

func (r *CreateApplicationRequest) ToDomain() *application.Application {
	collateralType := application.CollateralNone
	if r.CollateralType != "" {
		collateralType = application.CollateralType(r.CollateralType)
	}
	return &application.Application{
		CustomerID:            r.CustomerID,
		LoanType:              application.LoanType(r.LoanType),
		LoanAmount:            r.LoanAmount,
		LoanPurpose:           r.LoanPurpose,
		LoanTenureMonths:      r.LoanTenureMonths,
		MonthlyIncome:         r.MonthlyIncome,
		EmploymentType:        r.EmploymentType,
		EmployerName:          r.EmployerName,
		WorkExperienceYears:   r.WorkExperienceYears,
		CollateralType:        collateralType,
		CollateralValue:       r.CollateralValue,
		CollateralDescription: r.CollateralDescription,
		BranchID:              r.BranchID,
		DepartmentID:          r.DepartmentID,
	}
}

// UpdateApplicationRequest is a partial update; absent fields stay unchanged.
// Version is mandatory and must match the stored record.
type UpdateApplicationRequest struct {
	LoanType              *string  `json:"loan_type,omitempty"`
	LoanAmount            *float64 `json:"loan_amount,omitempty"`
	LoanPurpose           *string  `json:"loan_purpose,omitempty"`
	LoanTenureMonths      *int     `json:"loan_tenure_months,omitempty"`
	MonthlyIncome         *float64 `json:"monthly_income,omitempty"`
	EmploymentType        *string  `json:"employment_type,omitempty"`
	EmployerName          *string  `json:"employer_name,omitempty"`
	WorkExperienceYears   *int     `json:"work_experience_years,omitempty"`
	CollateralType        *string  `json:"collateral_type,omitempty"`
	CollateralValue       *float64 `json:"collateral_value,omitempty"`
	CollateralDescription *string  `json:"collateral_description,omitempty"`
	OfficerNotes          *string  `json:"officer_notes,omitempty"`
	DocumentsSubmitted    *bool    `json:"documents_submitted,omitempty"`
	DocumentsVerified     *bool    `json:"documents_verified,omitempty"`
	CreditCheckCompleted  *bool    `json:"credit_check_completed,omitempty"`
	CreditScore           *int     `json:"credit_score,omitempty"`
	RiskCategory          *string  `json:"risk_category,omitempty"`
	Version               int      `json:"version"`
}

func (r *UpdateApplicationRequest) Validate() error {
	if r.Version <= 0 {
		return fmt.Errorf("version is required and must be positive")
	}
	if r.LoanAmount != nil && *r.LoanAmount <= 0 {
		return fmt.Errorf("loan_amount must be greater than zero")
	}
	if r.LoanTenureMonths != nil && (*r.LoanTenureMonths < application.MinTenureMonths || *r.LoanTenureMonths > application.MaxTenureMonths) {
		return fmt.Errorf("loan_tenure_months must be between %d and %d", application.MinTenureMonths, application.MaxTenureMonths)
	}
	if r.MonthlyIncome != nil && *r.MonthlyIncome <= 0 {
		return fmt.Errorf("monthly_income must be greater than zero")
	}
	return nil
}

func (r *UpdateApplicationRequest) ToPatch() application.UpdatePatch {
	patch := application.UpdatePatch{
		LoanAmount:            r.LoanAmount,
		LoanPurpose:           r.LoanPurpose,
		LoanTenureMonths:      r.LoanTenureMonths,
		MonthlyIncome:         r.MonthlyIncome,
		EmploymentType:        r.EmploymentType,
		EmployerName:          r.EmployerName,
		WorkExperienceYears:   r.WorkExperienceYears,
		CollateralValue:       r.CollateralValue,
		CollateralDescription: r.CollateralDescription,
		OfficerNotes:          r.OfficerNotes,
		DocumentsSubmitted:    r.DocumentsSubmitted,
		DocumentsVerified:     r.DocumentsVerified,
		CreditCheckCompleted:  r.CreditCheckCompleted,
		CreditScore:           r.CreditScore,
	}
	if r.LoanType != nil {
		lt := application.LoanType(*r.LoanType)
		patch.LoanType = &lt
	}
	if r.CollateralType != nil {
		ct := application.CollateralType(*r.CollateralType)
		patch.CollateralType = &ct
	}
	if r.RiskCategory != nil {
		rc := application.RiskCategory(*r.RiskCategory)
		patch.RiskCategory = &rc
	}
	return patch
}

type StatusUpdateRequest struct {
	NewStatus       string   `json:"new_status"`
	Comments        *string  `json:"comments,omitempty"`
	InterestRate    *float64 `json:"interest_rate,omitempty"`
	RejectionReason *string  `json:"rejection_reason,omitempty"`
	Version         int      `json:"version"`
}

func (r *StatusUpdateRequest) Validate() error {
	if r.NewStatus == "" {
		return fmt.Errorf("new_status is required")
	}
	if r.Version <= 0 {
		return fmt.Errorf("version is required and must be positive")
	}
	if r.InterestRate != nil && (*r.InterestRate <= 0 || *r.InterestRate > 50) {
		return fmt.Errorf("interest_rate must be between 0 and 50")
	}
	return nil
}

func (r *StatusUpdateRequest) ToTransitionInput() application.TransitionInput {
	return application.TransitionInput{
		Comments:        r.Comments,
		InterestRate:    r.InterestRate,
		RejectionReason: r.RejectionReason,
	}
}

type AssignOfficerRequest struct {
	OfficerID string `json:"officer_id"`
}

func (r *AssignOfficerRequest) Validate() error {
	if r.OfficerID == "" {
		return fmt.Errorf("officer_id is required")
	}
	return nil
}

type ApplicationResponse struct {
	ID                string `json:"id"`
	ApplicationNumber string `json:"application_number"`
	CustomerID        string `json:"customer_id"`

	LoanType         string   `json:"loan_type"`
	LoanAmount       float64  `json:"loan_amount"`
	LoanPurpose      string   `json:"loan_purpose"`
	LoanTenureMonths int      `json:"loan_tenure_months"`
	InterestRate     *float64 `json:"interest_rate,omitempty"`
	MonthlyIncome    float64  `json:"monthly_income"`

	EmploymentType      string  `json:"employment_type"`
	EmployerName        *string `json:"employer_name,omitempty"`
	WorkExperienceYears *int    `json:"work_experience_years,omitempty"`

	CollateralType        string   `json:"collateral_type"`
	CollateralValue       *float64 `json:"collateral_value,omitempty"`
	CollateralDescription *string  `json:"collateral_description,omitempty"`

	Status      string     `json:"status"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	DisbursedAt *time.Time `json:"disbursed_at,omitempty"`

	AssignedOfficerID *string `json:"assigned_officer_id,omitempty"`
	ReviewedByID      *string `json:"reviewed_by_id,omitempty"`
	ApprovedByID      *string `json:"approved_by_id,omitempty"`

	OfficerNotes     *string `json:"officer_notes,omitempty"`
	ReviewerComments *string `json:"reviewer_comments,omitempty"`
	RejectionReason  *string `json:"rejection_reason,omitempty"`

	DocumentsSubmitted   bool `json:"documents_submitted"`
	DocumentsVerified    bool `json:"documents_verified"`
	CreditCheckCompleted bool `json:"credit_check_completed"`

	DebtToIncomeRatio *float64 `json:"debt_to_income_ratio,omitempty"`
	CreditScore       *int     `json:"credit_score,omitempty"`
	RiskCategory      *string  `json:"risk_category,omitempty"`

	BranchID     string `json:"branch_id"`
	DepartmentID string `json:"department_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

func NewApplicationResponse(app *application.Application) ApplicationResponse {
	var riskCategory *string
	if app.RiskCategory != nil {
		s := string(*app.RiskCategory)
		riskCategory = &s
	}
	return ApplicationResponse{
		ID:                    app.ID,
		ApplicationNumber:     app.ApplicationNumber,
		CustomerID:            app.CustomerID,
		LoanType:              string(app.LoanType),
		LoanAmount:            app.LoanAmount,
		LoanPurpose:           app.LoanPurpose,
		LoanTenureMonths:      app.LoanTenureMonths,
		InterestRate:          app.InterestRate,
		MonthlyIncome:         app.MonthlyIncome,
		EmploymentType:        app.EmploymentType,
		EmployerName:          app.EmployerName,
		WorkExperienceYears:   app.WorkExperienceYears,
		CollateralType:        string(app.CollateralType),
		CollateralValue:       app.CollateralValue,
		CollateralDescription: app.CollateralDescription,
		Status:                string(app.Status),
		SubmittedAt:           app.SubmittedAt,
		ReviewedAt:            app.ReviewedAt,
		ApprovedAt:            app.ApprovedAt,
		RejectedAt:            app.RejectedAt,
		DisbursedAt:           app.DisbursedAt,
		AssignedOfficerID:     app.AssignedOfficerID,
		ReviewedByID:          app.ReviewedByID,
		ApprovedByID:          app.ApprovedByID,
		OfficerNotes:          app.OfficerNotes,
		ReviewerComments:      app.ReviewerComments,
		RejectionReason:       app.RejectionReason,
		DocumentsSubmitted:    app.DocumentsSubmitted,
		DocumentsVerified:     app.DocumentsVerified,
		CreditCheckCompleted:  app.CreditCheckCompleted,
		DebtToIncomeRatio:     app.DebtToIncomeRatio,
		CreditScore:           app.CreditScore,
		RiskCategory:          riskCategory,
		BranchID:              app.BranchID,
		DepartmentID:          app.DepartmentID,
		CreatedAt:             app.CreatedAt,
		UpdatedAt:             app.UpdatedAt,
		Version:               app.Version,
	}
}

func NewApplicationListResponse(apps []*application.Application) []ApplicationResponse {
	responses := make([]ApplicationResponse, len(apps))
	for i, app := range apps {
		responses[i] = NewApplicationResponse(app)
	}
	return responses
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
