package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"

	"loan-origination/internal/domain/application"
	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/pkg/apperrors"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

const applicationColumns = `id, application_number, customer_id, loan_type, loan_amount, loan_purpose,
	loan_tenure_months, interest_rate, monthly_income, employment_type, employer_name,
	work_experience_years, collateral_type, collateral_value, collateral_description,
	status, submitted_at, reviewed_at, approved_at, rejected_at, disbursed_at,
	assigned_officer_id, reviewed_by_id, approved_by_id, officer_notes, reviewer_comments,
	rejection_reason, documents_submitted, documents_verified, credit_check_completed,
	debt_to_income_ratio, credit_score, risk_category, branch_id, department_id,
	created_at, updated_at, version`

type ApplicationRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewApplicationRepository(db DBPool, logger *slog.Logger) *ApplicationRepository {
	return &ApplicationRepository{db: db, logger: logger.With("component", "ApplicationRepository")}
}

var _ application.Repository = (*ApplicationRepository)(nil)

func scanApplication(row pgx.Row) (*application.Application, error) {
	var app application.Application
	var riskCategory *string

	err := row.Scan(
		&app.ID, &app.ApplicationNumber, &app.CustomerID, &app.LoanType, &app.LoanAmount, &app.LoanPurpose,
		&app.LoanTenureMonths, &app.InterestRate, &app.MonthlyIncome, &app.EmploymentType, &app.EmployerName,
		&app.WorkExperienceYears, &app.CollateralType, &app.CollateralValue, &app.CollateralDescription,
		&app.Status, &app.SubmittedAt, &app.ReviewedAt, &app.ApprovedAt, &app.RejectedAt, &app.DisbursedAt,
		&app.AssignedOfficerID, &app.ReviewedByID, &app.ApprovedByID, &app.OfficerNotes, &app.ReviewerComments,
		&app.RejectionReason, &app.DocumentsSubmitted, &app.DocumentsVerified, &app.CreditCheckCompleted,
		&app.DebtToIncomeRatio, &app.CreditScore, &riskCategory, &app.BranchID, &app.DepartmentID,
		&app.CreatedAt, &app.UpdatedAt, &app.Version,
	)
	if err != nil {
		return nil, err
	}
	if riskCategory != nil {
		rc := application.RiskCategory(*riskCategory)
		app.RiskCategory = &rc
	}
	return &app, nil
}

func riskCategoryArg(app *application.Application) *string {
	if app.RiskCategory == nil {
		return nil
	}
	s := string(*app.RiskCategory)
	return &s
}

func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application) (*application.Application, error) {
	query := `
        INSERT INTO loan_applications (
            id, application_number, customer_id, loan_type, loan_amount, loan_purpose,
            loan_tenure_months, interest_rate, monthly_income, employment_type, employer_name,
            work_experience_years, collateral_type, collateral_value, collateral_description,
            status, assigned_officer_id, officer_notes, documents_submitted, documents_verified,
            credit_check_completed, debt_to_income_ratio, credit_score, risk_category,
            branch_id, department_id, created_at, updated_at, version
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
                $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
        RETURNING ` + applicationColumns

	status := "success"
	startTime := time.Now()

	created, err := scanApplication(r.db.QueryRow(ctx, query,
		app.ID, app.ApplicationNumber, app.CustomerID, app.LoanType, app.LoanAmount, app.LoanPurpose,
		app.LoanTenureMonths, app.InterestRate, app.MonthlyIncome, app.EmploymentType, app.EmployerName,
		app.WorkExperienceYears, app.CollateralType, app.CollateralValue, app.CollateralDescription,
		app.Status, app.AssignedOfficerID, app.OfficerNotes, app.DocumentsSubmitted, app.DocumentsVerified,
		app.CreditCheckCompleted, app.DebtToIncomeRatio, app.CreditScore, riskCategoryArg(app),
		app.BranchID, app.DepartmentID, app.CreatedAt, app.UpdatedAt, app.Version,
	))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("CreateApplication", status, time.Since(startTime))

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.WarnContext(ctx, "Duplicate application number", "application_number", app.ApplicationNumber)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrAlreadyExists, err)
		}
		r.logger.ErrorContext(ctx, "Failed to insert loan application", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Loan application created in DB", "application_id", created.ID)
	return created, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = $1`
	status := "success"
	startTime := time.Now()

	app, err := scanApplication(r.db.QueryRow(ctx, query, id))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetApplicationByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan application not found", "application_id", id)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan application", "application_id", id, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return app, nil
}

func (r *ApplicationRepository) List(ctx context.Context, filter application.ListFilter) ([]*application.Application, error) {
	var conditions []string
	var args []any

	addCondition := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.Status != "" {
		addCondition("status", filter.Status)
	}
	if filter.LoanType != "" {
		addCondition("loan_type", filter.LoanType)
	}
	if filter.CustomerID != "" {
		addCondition("customer_id", filter.CustomerID)
	}
	if filter.AssignedOfficerID != "" {
		addCondition("assigned_officer_id", filter.AssignedOfficerID)
	}
	if filter.BranchID != "" {
		addCondition("branch_id", filter.BranchID)
	}

	query := `SELECT ` + applicationColumns + ` FROM loan_applications`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loan applications", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	apps := make([]*application.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan application row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		apps = append(apps, app)
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan application rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return apps, nil
}

// Update writes the aggregate back with a conditional version check. The
// WHERE clause is the compare-and-swap: a concurrent writer that already
// bumped the version leaves this statement matching zero rows.
func (r *ApplicationRepository) Update(ctx context.Context, app *application.Application, expectedVersion int) (*application.Application, error) {
	query := `
        UPDATE loan_applications SET
            loan_type = $1, loan_amount = $2, loan_purpose = $3, loan_tenure_months = $4,
            interest_rate = $5, monthly_income = $6, employment_type = $7, employer_name = $8,
            work_experience_years = $9, collateral_type = $10, collateral_value = $11,
            collateral_description = $12, status = $13, submitted_at = $14, reviewed_at = $15,
            approved_at = $16, rejected_at = $17, disbursed_at = $18, assigned_officer_id = $19,
            reviewed_by_id = $20, approved_by_id = $21, officer_notes = $22, reviewer_comments = $23,
            rejection_reason = $24, documents_submitted = $25, documents_verified = $26,
            credit_check_completed = $27, debt_to_income_ratio = $28, credit_score = $29,
            risk_category = $30, updated_at = $31, version = version + 1
        WHERE id = $32 AND version = $33
        RETURNING ` + applicationColumns

	status := "success"
	startTime := time.Now()

	updated, err := scanApplication(r.db.QueryRow(ctx, query,
		app.LoanType, app.LoanAmount, app.LoanPurpose, app.LoanTenureMonths,
		app.InterestRate, app.MonthlyIncome, app.EmploymentType, app.EmployerName,
		app.WorkExperienceYears, app.CollateralType, app.CollateralValue,
		app.CollateralDescription, app.Status, app.SubmittedAt, app.ReviewedAt,
		app.ApprovedAt, app.RejectedAt, app.DisbursedAt, app.AssignedOfficerID,
		app.ReviewedByID, app.ApprovedByID, app.OfficerNotes, app.ReviewerComments,
		app.RejectionReason, app.DocumentsSubmitted, app.DocumentsVerified,
		app.CreditCheckCompleted, app.DebtToIncomeRatio, app.CreditScore,
		riskCategoryArg(app), app.UpdatedAt,
		app.ID, expectedVersion,
	))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("UpdateApplication", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissedUpdate(ctx, app.ID, expectedVersion)
		}
		r.logger.ErrorContext(ctx, "Failed to update loan application", "application_id", app.ID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return updated, nil
}

// classifyMissedUpdate distinguishes a deleted row from a stale version after
// a conditional update matched nothing.
func (r *ApplicationRepository) classifyMissedUpdate(ctx context.Context, id string, expectedVersion int) error {
	var currentVersion int
	err := r.db.QueryRow(ctx, `SELECT version FROM loan_applications WHERE id = $1`, id).Scan(&currentVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan application not found during update", "application_id", id)
			return apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to check application version", "application_id", id, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	r.logger.WarnContext(ctx, "Optimistic lock conflict on loan application",
		"application_id", id, "expected_version", expectedVersion, "current_version", currentVersion)
	return fmt.Errorf("%w: expected version %d, current version %d", apperrors.ErrVersionConflict, expectedVersion, currentVersion)
}

func (r *ApplicationRepository) UpdateOfficer(ctx context.Context, id string, officerID string) (*application.Application, error) {
	query := `
        UPDATE loan_applications
        SET assigned_officer_id = $1, updated_at = NOW(), version = version + 1
        WHERE id = $2
        RETURNING ` + applicationColumns

	status := "success"
	startTime := time.Now()

	updated, err := scanApplication(r.db.QueryRow(ctx, query, officerID, id))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("UpdateApplicationOfficer", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan application not found for officer assignment", "application_id", id)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to assign officer", "application_id", id, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return updated, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	status := "success"
	startTime := time.Now()

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM loan_applications WHERE id = $1`, id)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("DeleteApplication", status, time.Since(startTime))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete loan application", "application_id", id, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Loan application not found for delete", "application_id", id)
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *ApplicationRepository) ListForSummary(ctx context.Context, branchID string) ([]application.SummaryRow, error) {
	query := `SELECT status, loan_type, risk_category, loan_amount FROM loan_applications`
	var args []any
	if branchID != "" {
		query += ` WHERE branch_id = $1`
		args = append(args, branchID)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query summary rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	summary := make([]application.SummaryRow, 0)
	for rows.Next() {
		var row application.SummaryRow
		var riskCategory *string
		if err := rows.Scan(&row.Status, &row.LoanType, &riskCategory, &row.LoanAmount); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan summary row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		if riskCategory != nil {
			rc := application.RiskCategory(*riskCategory)
			row.RiskCategory = &rc
		}
		summary = append(summary, row)
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating summary rows", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return summary, nil
}
