package application

import (
	"context"
)

// ListFilter narrows List results; zero values mean "no filter".
type ListFilter struct {
	Status            Status
	LoanType          LoanType
	CustomerID        string
	AssignedOfficerID string
	BranchID          string
	Skip              int
	Limit             int
}

type Repository interface {
	Create(ctx context.Context, app *Application) (*Application, error)

	GetByID(ctx context.Context, id string) (*Application, error)

	List(ctx context.Context, filter ListFilter) ([]*Application, error)

	// Update persists the mutated aggregate with a conditional write on the
	// version column: the row is updated only where version == expectedVersion.
	// A stale expectedVersion yields apperrors.ErrVersionConflict; a missing
	// row yields apperrors.ErrNotFound. This compare-and-swap is the sole
	// arbiter between concurrent writers.
	Update(ctx context.Context, app *Application, expectedVersion int) (*Application, error)

	// UpdateOfficer reassigns the officer without the optimistic-lock
	// precondition; officer assignment is a lower-stakes field.
	UpdateOfficer(ctx context.Context, id string, officerID string) (*Application, error)

	Delete(ctx context.Context, id string) error

	// ListForSummary returns the (status, loan type, risk category, amount)
	// projection used by summary statistics, optionally scoped to a branch.
	ListForSummary(ctx context.Context, branchID string) ([]SummaryRow, error)
}

// SummaryRow is the projection consumed by SummaryStats aggregation.
type SummaryRow struct {
	Status       Status
	LoanType     LoanType
	RiskCategory *RiskCategory
	LoanAmount   float64
}
