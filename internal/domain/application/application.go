package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"loan-origination/internal/pkg/apperrors"
)

type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusDisbursed   Status = "disbursed"
	StatusClosed      Status = "closed"
	StatusDefaulted   Status = "defaulted"
)

type LoanType string

const (
	LoanTypePersonal    LoanType = "personal"
	LoanTypeHome        LoanType = "home"
	LoanTypeAuto        LoanType = "auto"
	LoanTypeBusiness    LoanType = "business"
	LoanTypeEducation   LoanType = "education"
	LoanTypeAgriculture LoanType = "agriculture"
)

type CollateralType string

const (
	CollateralProperty     CollateralType = "property"
	CollateralVehicle      CollateralType = "vehicle"
	CollateralGold         CollateralType = "gold"
	CollateralFixedDeposit CollateralType = "fixed_deposit"
	CollateralShares       CollateralType = "shares"
	CollateralNone         CollateralType = "none"
)

type RiskCategory string

const (
	RiskLow    RiskCategory = "low"
	RiskMedium RiskCategory = "medium"
	RiskHigh   RiskCategory = "high"
)

const (
	MinTenureMonths = 6
	MaxTenureMonths = 360
)

// applicationNumberPrefix + creation timestamp + random suffix form the
// human-readable application number; generated once, immutable afterwards.
const applicationNumberPrefix = "LA"

// Application is the loan-application aggregate. The persistence store owns
// the record; services only ever hold a transient per-request copy.
type Application struct {
	ID                string
	ApplicationNumber string
	CustomerID        string

	LoanType         LoanType
	LoanAmount       float64
	LoanPurpose      string
	LoanTenureMonths int
	InterestRate     *float64
	MonthlyIncome    float64

	EmploymentType      string
	EmployerName        *string
	WorkExperienceYears *int

	CollateralType        CollateralType
	CollateralValue       *float64
	CollateralDescription *string

	Status      Status
	SubmittedAt *time.Time
	ReviewedAt  *time.Time
	ApprovedAt  *time.Time
	RejectedAt  *time.Time
	DisbursedAt *time.Time

	AssignedOfficerID *string
	ReviewedByID      *string
	ApprovedByID      *string

	OfficerNotes     *string
	ReviewerComments *string
	RejectionReason  *string

	DocumentsSubmitted   bool
	DocumentsVerified    bool
	CreditCheckCompleted bool

	DebtToIncomeRatio *float64
	CreditScore       *int
	RiskCategory      *RiskCategory

	BranchID     string
	DepartmentID string

	CreatedAt time.Time
	UpdatedAt time.Time
	// Version is the optimistic-lock token: starts at 1, incremented by
	// exactly 1 per accepted mutation.
	Version int
}

// validTransitions is the whole workflow: any (current, next) pair not listed
// here is illegal. Terminal statuses (rejected, closed, defaulted) have no
// outgoing edges.
var validTransitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusDisbursed},
	StatusDisbursed:   {StatusClosed},
}

// CanTransition reports whether moving from current to next is allowed.
func CanTransition(current, next Status) bool {
	for _, allowed := range validTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether free-field updates are permitted in the current
// status. Only draft and submitted applications can be edited.
func (a *Application) Editable() bool {
	return a.Status == StatusDraft || a.Status == StatusSubmitted
}

// TransitionInput carries the transition-specific data accompanying a status
// change.
type TransitionInput struct {
	Comments        *string
	InterestRate    *float64
	RejectionReason *string
}

// ApplyTransition validates the status change against the transition table
// and its required fields, then applies the per-transition side effects.
// Timestamps are set on first entry only. The caller persists the result.
func (a *Application) ApplyTransition(next Status, actorID string, input TransitionInput, now time.Time) error {
	if !CanTransition(a.Status, next) {
		return fmt.Errorf("%w: from %s to %s", apperrors.ErrInvalidTransition, a.Status, next)
	}

	switch next {
	case StatusSubmitted:
		if a.SubmittedAt == nil {
			a.SubmittedAt = &now
		}
	case StatusUnderReview:
		if a.ReviewedAt == nil {
			a.ReviewedAt = &now
		}
		a.ReviewedByID = &actorID
		if input.Comments != nil {
			a.ReviewerComments = input.Comments
		}
	case StatusApproved:
		if input.InterestRate == nil {
			return fmt.Errorf("%w: interest rate is required for loan approval", apperrors.ErrMissingField)
		}
		if a.ApprovedAt == nil {
			a.ApprovedAt = &now
		}
		a.ApprovedByID = &actorID
		a.InterestRate = input.InterestRate
		if input.Comments != nil {
			a.ReviewerComments = input.Comments
		}
	case StatusRejected:
		if input.RejectionReason == nil {
			return fmt.Errorf("%w: rejection reason is required for loan rejection", apperrors.ErrMissingField)
		}
		if a.RejectedAt == nil {
			a.RejectedAt = &now
		}
		a.ReviewedByID = &actorID
		a.RejectionReason = input.RejectionReason
		if input.Comments != nil {
			a.ReviewerComments = input.Comments
		}
	case StatusDisbursed:
		if a.DisbursedAt == nil {
			a.DisbursedAt = &now
		}
	}

	a.Status = next
	a.UpdatedAt = now
	return nil
}

// DebtToIncome returns the ratio of the average monthly repayment burden to
// monthly income, as a percentage.
func DebtToIncome(loanAmount float64, tenureMonths int, monthlyIncome float64) float64 {
	return (loanAmount / float64(tenureMonths)) / monthlyIncome * 100
}

// NewApplicationNumber generates the immutable human-readable identifier:
// fixed prefix, creation timestamp, 8-character random suffix.
func NewApplicationNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return applicationNumberPrefix + now.Format("20060102150405") + suffix
}

// SummaryStats aggregates applications for reporting. Empty inputs produce a
// well-defined zero aggregate.
type SummaryStats struct {
	TotalApplications    int            `json:"total_applications"`
	PendingReview        int            `json:"pending_review"`
	ApprovedApplications int            `json:"approved_applications"`
	RejectedApplications int            `json:"rejected_applications"`
	DisbursedLoans       int            `json:"disbursed_loans"`
	TotalLoanAmount      float64        `json:"total_loan_amount"`
	AverageLoanAmount    float64        `json:"average_loan_amount"`
	ByStatus             map[string]int `json:"by_status"`
	ByLoanType           map[string]int `json:"by_loan_type"`
	ByRiskCategory       map[string]int `json:"by_risk_category"`
}
