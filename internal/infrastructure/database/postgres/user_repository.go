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

	"loan-origination/internal/domain/user"
	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/pkg/apperrors"
)

const userColumns = `id, username, email, hashed_password, first_name, last_name, phone_number,
	role, status, department_id, branch_id, created_at, updated_at, last_login_at`

type UserRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewUserRepository(db DBPool, logger *slog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger.With("component", "UserRepository")}
}

var _ user.Repository = (*UserRepository)(nil)

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName, &u.PhoneNumber,
		&u.Role, &u.Status, &u.DepartmentID, &u.BranchID, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
        INSERT INTO users (id, username, email, hashed_password, first_name, last_name, phone_number,
                           role, status, department_id, branch_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING ` + userColumns

	status := "success"
	startTime := time.Now()

	created, err := scanUser(r.db.QueryRow(ctx, query,
		u.ID, u.Username, u.Email, u.HashedPassword, u.FirstName, u.LastName, u.PhoneNumber,
		u.Role, u.Status, u.DepartmentID, u.BranchID, u.CreatedAt, u.UpdatedAt,
	))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("SaveUser", status, time.Since(startTime))

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrAlreadyExists, err)
		}
		r.logger.ErrorContext(ctx, "Failed to insert user", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return r.findOne(ctx, "FindUserByID", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, "FindUserByUsername", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "FindUserByEmail", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) findOne(ctx context.Context, queryName, query string, arg any) (*user.User, error) {
	status := "success"
	startTime := time.Now()

	u, err := scanUser(r.db.QueryRow(ctx, query, arg))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery(queryName, status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query user", "query", queryName, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return u, nil
}

func (r *UserRepository) FindAll(ctx context.Context, role user.Role, accountStatus user.AccountStatus) ([]*user.User, error) {
	var conditions []string
	var args []any
	if role != "" {
		args = append(args, role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if accountStatus != "" {
		args = append(args, accountStatus)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY username ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query users", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan user row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
        UPDATE users
        SET email = $1, first_name = $2, last_name = $3, phone_number = $4, role = $5,
            status = $6, department_id = $7, branch_id = $8, updated_at = NOW()
        WHERE id = $9
        RETURNING ` + userColumns

	updated, err := scanUser(r.db.QueryRow(ctx, query,
		u.Email, u.FirstName, u.LastName, u.PhoneNumber, u.Role,
		u.Status, u.DepartmentID, u.BranchID, u.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to update user", "user_id", u.ID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return updated, nil
}

func (r *UserRepository) RecordLogin(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to record login", "user_id", id, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
