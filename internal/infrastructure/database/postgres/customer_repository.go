package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/pkg/apperrors"
)

const customerColumns = `id, full_name_latin, full_name_khmer, date_of_birth, id_card_type,
	id_number, portfolio_officer_name, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger.With("component", "CustomerRepository")}
}

var _ customer.Repository = (*CustomerRepository)(nil)

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.FullNameLatin, &c.FullNameKhmer, &c.DateOfBirth, &c.IDCardType,
		&c.IDNumber, &c.PortfolioOfficerName, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) Save(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	query := `
        INSERT INTO customers (id, full_name_latin, full_name_khmer, date_of_birth, id_card_type,
                               id_number, portfolio_officer_name, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + customerColumns

	status := "success"
	startTime := time.Now()

	created, err := scanCustomer(r.db.QueryRow(ctx, query,
		c.ID, c.FullNameLatin, c.FullNameKhmer, c.DateOfBirth, c.IDCardType,
		c.IDNumber, c.PortfolioOfficerName, c.CreatedAt, c.UpdatedAt,
	))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("SaveCustomer", status, time.Since(startTime))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert customer", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return created, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	status := "success"
	startTime := time.Now()

	c, err := scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("FindCustomerByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", "customer_id", id)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get customer", "customer_id", id, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return c, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, skip, limit int) ([]*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, skip)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		customers = append(customers, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return customers, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	query := `
        UPDATE customers
        SET full_name_latin = $1, full_name_khmer = $2, date_of_birth = $3, id_card_type = $4,
            id_number = $5, portfolio_officer_name = $6, updated_at = NOW()
        WHERE id = $7
        RETURNING ` + customerColumns

	updated, err := scanCustomer(r.db.QueryRow(ctx, query,
		c.FullNameLatin, c.FullNameKhmer, c.DateOfBirth, c.IDCardType,
		c.IDNumber, c.PortfolioOfficerName, c.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to update customer", "customer_id", c.ID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return updated, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete customer", "customer_id", id, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
