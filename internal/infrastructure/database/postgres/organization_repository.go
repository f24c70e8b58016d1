package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"loan-origination/internal/domain/organization"
	"loan-origination/internal/pkg/apperrors"
)

const branchColumns = `id, name, code, address, phone_number, email, manager_id,
	latitude, longitude, is_active, created_at, updated_at`

const departmentColumns = `id, name, code, description, manager_id, is_active, created_at, updated_at`

type OrganizationRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewOrganizationRepository(db DBPool, logger *slog.Logger) *OrganizationRepository {
	return &OrganizationRepository{db: db, logger: logger.With("component", "OrganizationRepository")}
}

var _ organization.Repository = (*OrganizationRepository)(nil)

func scanBranch(row pgx.Row) (*organization.Branch, error) {
	var b organization.Branch
	err := row.Scan(
		&b.ID, &b.Name, &b.Code, &b.Address, &b.PhoneNumber, &b.Email, &b.ManagerID,
		&b.Latitude, &b.Longitude, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanDepartment(row pgx.Row) (*organization.Department, error) {
	var d organization.Department
	err := row.Scan(
		&d.ID, &d.Name, &d.Code, &d.Description, &d.ManagerID, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *OrganizationRepository) SaveBranch(ctx context.Context, b *organization.Branch) (*organization.Branch, error) {
	query := `
        INSERT INTO branches (id, name, code, address, phone_number, email, manager_id,
                              latitude, longitude, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING ` + branchColumns

	created, err := scanBranch(r.db.QueryRow(ctx, query,
		b.ID, b.Name, b.Code, b.Address, b.PhoneNumber, b.Email, b.ManagerID,
		b.Latitude, b.Longitude, b.IsActive, b.CreatedAt, b.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrAlreadyExists, err)
		}
		r.logger.ErrorContext(ctx, "Failed to insert branch", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return created, nil
}

func (r *OrganizationRepository) FindBranchByID(ctx context.Context, id string) (*organization.Branch, error) {
	b, err := scanBranch(r.db.QueryRow(ctx, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get branch", "branch_id", id, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return b, nil
}

func (r *OrganizationRepository) FindAllBranches(ctx context.Context, activeOnly bool) ([]*organization.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query branches", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	branches := make([]*organization.Branch, 0)
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		branches = append(branches, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return branches, nil
}

func (r *OrganizationRepository) SaveDepartment(ctx context.Context, d *organization.Department) (*organization.Department, error) {
	query := `
        INSERT INTO departments (id, name, code, description, manager_id, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + departmentColumns

	created, err := scanDepartment(r.db.QueryRow(ctx, query,
		d.ID, d.Name, d.Code, d.Description, d.ManagerID, d.IsActive, d.CreatedAt, d.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrAlreadyExists, err)
		}
		r.logger.ErrorContext(ctx, "Failed to insert department", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return created, nil
}

func (r *OrganizationRepository) FindDepartmentByID(ctx context.Context, id string) (*organization.Department, error) {
	d, err := scanDepartment(r.db.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get department", "department_id", id, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return d, nil
}

func (r *OrganizationRepository) FindAllDepartments(ctx context.Context, activeOnly bool) ([]*organization.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query departments", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	departments := make([]*organization.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		departments = append(departments, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return departments, nil
}
