package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/organization"
	"loan-origination/internal/domain/user"
	"loan-origination/internal/event"
	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/pkg/apperrors"
)

// UpdatePatch carries the editable fields of an application; nil pointers
// leave the stored value untouched.
type UpdatePatch struct {
	LoanType              *LoanType
	LoanAmount            *float64
	LoanPurpose           *string
	LoanTenureMonths      *int
	MonthlyIncome         *float64
	EmploymentType        *string
	EmployerName          *string
	WorkExperienceYears   *int
	CollateralType        *CollateralType
	CollateralValue       *float64
	CollateralDescription *string
	OfficerNotes          *string
	DocumentsSubmitted    *bool
	DocumentsVerified     *bool
	CreditCheckCompleted  *bool
	CreditScore           *int
	RiskCategory          *RiskCategory
}

type Service interface {
	// CreateApplication registers a new draft application. Customer, branch
	// and department references are verified before anything is stored; the
	// creator becomes the assigned officer.
	CreateApplication(ctx context.Context, app *Application, creatorID string) (*Application, error)

	GetApplication(ctx context.Context, id string) (*Application, error)

	ListApplications(ctx context.Context, filter ListFilter) ([]*Application, error)

	// UpdateApplication applies the patch to an editable application. The
	// supplied version must match the stored one or the update is refused
	// with apperrors.ErrVersionConflict.
	UpdateApplication(ctx context.Context, id string, patch UpdatePatch, expectedVersion int) (*Application, error)

	// TransitionStatus moves the application through the workflow. The actor
	// must exist; review-side transitions additionally require a role that
	// can process loans.
	TransitionStatus(ctx context.Context, id string, next Status, actorID string, input TransitionInput, expectedVersion int) (*Application, error)

	AssignOfficer(ctx context.Context, id string, officerID string) (*Application, error)

	// DeleteApplication removes a draft application. Anything past draft is
	// part of the audit trail and cannot be deleted.
	DeleteApplication(ctx context.Context, id string) error

	Summary(ctx context.Context, branchID string) (*SummaryStats, error)
}

type applicationServiceImpl struct {
	repo      Repository
	customers customer.Service
	users     user.Service
	org       organization.Service
	publisher event.EventPublisher
	logger    *slog.Logger
}

// NewService wires the workflow service. publisher may be nil, in which case
// events are silently skipped.
func NewService(repo Repository, customers customer.Service, users user.Service, org organization.Service, publisher event.EventPublisher, logger *slog.Logger) Service {
	if repo == nil {
		panic("application repository cannot be nil")
	}
	if customers == nil {
		panic("customer service cannot be nil")
	}
	if users == nil {
		panic("user service cannot be nil")
	}
	if org == nil {
		panic("organization service cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &applicationServiceImpl{
		repo:      repo,
		customers: customers,
		users:     users,
		org:       org,
		publisher: publisher,
		logger:    logger.With("component", "ApplicationService"),
	}
}

func (s *applicationServiceImpl) CreateApplication(ctx context.Context, app *Application, creatorID string) (*Application, error) {
	s.logger.InfoContext(ctx, "Creating loan application", "customerID", app.CustomerID)

	if err := validateApplicationFields(app); err != nil {
		return nil, err
	}

	if _, err := s.customers.GetCustomer(ctx, app.CustomerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %s not found", apperrors.ErrValidation, app.CustomerID)
		}
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}
	if _, err := s.org.GetBranch(ctx, app.BranchID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: branch %s not found", apperrors.ErrValidation, app.BranchID)
		}
		return nil, fmt.Errorf("failed to verify branch: %w", err)
	}
	if _, err := s.org.GetDepartment(ctx, app.DepartmentID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: department %s not found", apperrors.ErrValidation, app.DepartmentID)
		}
		return nil, fmt.Errorf("failed to verify department: %w", err)
	}

	now := time.Now()
	app.ID = uuid.NewString()
	app.ApplicationNumber = NewApplicationNumber(now)
	app.Status = StatusDraft
	app.Version = 1
	if creatorID != "" {
		app.AssignedOfficerID = &creatorID
	}
	dti := DebtToIncome(app.LoanAmount, app.LoanTenureMonths, app.MonthlyIncome)
	app.DebtToIncomeRatio = &dti
	app.CreatedAt = now
	app.UpdatedAt = now

	created, err := s.repo.Create(ctx, app)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save loan application", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	s.publishCreated(ctx, created)
	s.logger.InfoContext(ctx, "Loan application created", "applicationID", created.ID, "applicationNumber", created.ApplicationNumber)
	return created, nil
}

func (s *applicationServiceImpl) GetApplication(ctx context.Context, id string) (*Application, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: application %s not found", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get application %s: %w", id, err)
	}
	return app, nil
}

func (s *applicationServiceImpl) ListApplications(ctx context.Context, filter ListFilter) ([]*Application, error) {
	if filter.Limit <= 0 || filter.Limit > 1000 {
		filter.Limit = 100
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	apps, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

func (s *applicationServiceImpl) UpdateApplication(ctx context.Context, id string, patch UpdatePatch, expectedVersion int) (*Application, error) {
	s.logger.InfoContext(ctx, "Updating loan application", "applicationID", id)

	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.Editable() {
		return nil, fmt.Errorf("%w: application in status %s cannot be edited", apperrors.ErrInvalidState, app.Status)
	}
	if app.Version != expectedVersion {
		monitoring.RecordVersionConflict()
		return nil, fmt.Errorf("%w: expected version %d, found %d", apperrors.ErrVersionConflict, expectedVersion, app.Version)
	}

	applyPatch(app, patch)
	if err := validateApplicationFields(app); err != nil {
		return nil, err
	}
	dti := DebtToIncome(app.LoanAmount, app.LoanTenureMonths, app.MonthlyIncome)
	app.DebtToIncomeRatio = &dti
	app.UpdatedAt = time.Now()

	updated, err := s.repo.Update(ctx, app, expectedVersion)
	if err != nil {
		if errors.Is(err, apperrors.ErrVersionConflict) {
			monitoring.RecordVersionConflict()
		}
		return nil, fmt.Errorf("failed to update application %s: %w", id, err)
	}
	return updated, nil
}

func (s *applicationServiceImpl) TransitionStatus(ctx context.Context, id string, next Status, actorID string, input TransitionInput, expectedVersion int) (*Application, error) {
	logCtx := s.logger.With("applicationID", id, "newStatus", string(next), "actorID", actorID)
	logCtx.InfoContext(ctx, "Processing status transition")

	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Version != expectedVersion {
		monitoring.RecordVersionConflict()
		monitoring.RecordStatusTransition(string(next), "conflict")
		return nil, fmt.Errorf("%w: expected version %d, found %d", apperrors.ErrVersionConflict, expectedVersion, app.Version)
	}

	actor, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperrors.ErrInvalidActor, actorID)
		}
		return nil, fmt.Errorf("failed to verify actor %s: %w", actorID, err)
	}
	if next != StatusSubmitted && !actor.CanProcessLoans() {
		return nil, fmt.Errorf("%w: role %s cannot process loan applications", apperrors.ErrForbidden, actor.Role)
	}

	oldStatus := app.Status
	if err := app.ApplyTransition(next, actorID, input, time.Now()); err != nil {
		monitoring.RecordStatusTransition(string(next), "invalid")
		logCtx.WarnContext(ctx, "Status transition refused", slog.Any("error", err))
		return nil, err
	}

	updated, err := s.repo.Update(ctx, app, expectedVersion)
	if err != nil {
		if errors.Is(err, apperrors.ErrVersionConflict) {
			monitoring.RecordVersionConflict()
			monitoring.RecordStatusTransition(string(next), "conflict")
		}
		return nil, fmt.Errorf("failed to persist status transition for %s: %w", id, err)
	}

	monitoring.RecordStatusTransition(string(next), "success")
	s.publishStatusChanged(ctx, updated, oldStatus, actorID)
	logCtx.InfoContext(ctx, "Status transition applied", "oldStatus", string(oldStatus), "version", updated.Version)
	return updated, nil
}

func (s *applicationServiceImpl) AssignOfficer(ctx context.Context, id string, officerID string) (*Application, error) {
	s.logger.InfoContext(ctx, "Assigning officer to application", "applicationID", id, "officerID", officerID)

	officer, err := s.users.GetUser(ctx, officerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperrors.ErrInvalidActor, officerID)
		}
		return nil, fmt.Errorf("failed to verify officer %s: %w", officerID, err)
	}
	if !officer.CanProcessLoans() {
		return nil, fmt.Errorf("%w: role %s cannot be assigned loan applications", apperrors.ErrForbidden, officer.Role)
	}

	updated, err := s.repo.UpdateOfficer(ctx, id, officerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: application %s not found", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to assign officer to application %s: %w", id, err)
	}
	return updated, nil
}

func (s *applicationServiceImpl) DeleteApplication(ctx context.Context, id string) error {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return err
	}
	if app.Status != StatusDraft {
		return fmt.Errorf("%w: only draft applications can be deleted, status is %s", apperrors.ErrInvalidState, app.Status)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete application %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Loan application deleted", "applicationID", id)
	return nil
}

func (s *applicationServiceImpl) Summary(ctx context.Context, branchID string) (*SummaryStats, error) {
	rows, err := s.repo.ListForSummary(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary rows: %w", err)
	}

	stats := &SummaryStats{
		ByStatus:       make(map[string]int),
		ByLoanType:     make(map[string]int),
		ByRiskCategory: make(map[string]int),
	}
	for _, row := range rows {
		stats.TotalApplications++
		stats.TotalLoanAmount += row.LoanAmount
		stats.ByStatus[string(row.Status)]++
		stats.ByLoanType[string(row.LoanType)]++
		if row.RiskCategory != nil {
			stats.ByRiskCategory[string(*row.RiskCategory)]++
		}

		switch row.Status {
		case StatusSubmitted, StatusUnderReview:
			stats.PendingReview++
		case StatusApproved:
			stats.ApprovedApplications++
		case StatusRejected:
			stats.RejectedApplications++
		case StatusDisbursed:
			stats.DisbursedLoans++
		}
	}
	if stats.TotalApplications > 0 {
		stats.AverageLoanAmount = stats.TotalLoanAmount / float64(stats.TotalApplications)
	}
	return stats, nil
}

func (s *applicationServiceImpl) publishCreated(ctx context.Context, app *Application) {
	if s.publisher == nil {
		return
	}
	evt := event.ApplicationCreatedEvent{
		Timestamp: time.Now(),
		Payload:   eventPayload(app),
	}
	if err := s.publisher.PublishApplicationCreated(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish application created event", "applicationID", app.ID, slog.Any("error", err))
	}
}

func (s *applicationServiceImpl) publishStatusChanged(ctx context.Context, app *Application, oldStatus Status, actorID string) {
	if s.publisher == nil {
		return
	}
	evt := event.ApplicationStatusChangedEvent{
		Timestamp: time.Now(),
		OldStatus: string(oldStatus),
		NewStatus: string(app.Status),
		ActorID:   actorID,
		Payload:   eventPayload(app),
	}
	if err := s.publisher.PublishApplicationStatusChanged(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish status changed event", "applicationID", app.ID, slog.Any("error", err))
	}
}

func eventPayload(app *Application) event.ApplicationEventPayload {
	return event.ApplicationEventPayload{
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		CustomerID:        app.CustomerID,
		BranchID:          app.BranchID,
		LoanType:          string(app.LoanType),
		LoanAmount:        app.LoanAmount,
		Status:            string(app.Status),
		Version:           app.Version,
	}
}

func validateApplicationFields(app *Application) error {
	if app.CustomerID == "" {
		return apperrors.NewValidationError("customer_id", "customer id is required")
	}
	if app.BranchID == "" {
		return apperrors.NewValidationError("branch_id", "branch id is required")
	}
	if app.DepartmentID == "" {
		return apperrors.NewValidationError("department_id", "department id is required")
	}
	if app.LoanType == "" {
		return apperrors.NewValidationError("loan_type", "loan type is required")
	}
	if app.LoanAmount <= 0 {
		return apperrors.NewValidationError("loan_amount", "loan amount must be positive")
	}
	if app.LoanTenureMonths < MinTenureMonths || app.LoanTenureMonths > MaxTenureMonths {
		return apperrors.NewValidationError("loan_tenure_months",
			fmt.Sprintf("loan tenure must be between %d and %d months", MinTenureMonths, MaxTenureMonths))
	}
	if app.MonthlyIncome <= 0 {
		return apperrors.NewValidationError("monthly_income", "monthly income must be positive")
	}
	if app.LoanPurpose == "" {
		return apperrors.NewValidationError("loan_purpose", "loan purpose is required")
	}
	return nil
}

func applyPatch(app *Application, patch UpdatePatch) {
	if patch.LoanType != nil {
		app.LoanType = *patch.LoanType
	}
	if patch.LoanAmount != nil {
		app.LoanAmount = *patch.LoanAmount
	}
	if patch.LoanPurpose != nil {
		app.LoanPurpose = *patch.LoanPurpose
	}
	if patch.LoanTenureMonths != nil {
		app.LoanTenureMonths = *patch.LoanTenureMonths
	}
	if patch.MonthlyIncome != nil {
		app.MonthlyIncome = *patch.MonthlyIncome
	}
	if patch.EmploymentType != nil {
		app.EmploymentType = *patch.EmploymentType
	}
	if patch.EmployerName != nil {
		app.EmployerName = patch.EmployerName
	}
	if patch.WorkExperienceYears != nil {
		app.WorkExperienceYears = patch.WorkExperienceYears
	}
	if patch.CollateralType != nil {
		app.CollateralType = *patch.CollateralType
	}
	if patch.CollateralValue != nil {
		app.CollateralValue = patch.CollateralValue
	}
	if patch.CollateralDescription != nil {
		app.CollateralDescription = patch.CollateralDescription
	}
	if patch.OfficerNotes != nil {
		app.OfficerNotes = patch.OfficerNotes
	}
	if patch.DocumentsSubmitted != nil {
		app.DocumentsSubmitted = *patch.DocumentsSubmitted
	}
	if patch.DocumentsVerified != nil {
		app.DocumentsVerified = *patch.DocumentsVerified
	}
	if patch.CreditCheckCompleted != nil {
		app.CreditCheckCompleted = *patch.CreditCheckCompleted
	}
	if patch.CreditScore != nil {
		app.CreditScore = patch.CreditScore
	}
	if patch.RiskCategory != nil {
		app.RiskCategory = patch.RiskCategory
	}
}
