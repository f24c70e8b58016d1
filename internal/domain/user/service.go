package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"loan-origination/internal/pkg/apperrors"
)

type CreateInput struct {
	Username     string
	Email        string
	Password     string
	FirstName    string
	LastName     string
	PhoneNumber  *string
	Role         Role
	DepartmentID string
	BranchID     string
}

type Service interface {
	CreateUser(ctx context.Context, input CreateInput) (*User, error)

	GetUser(ctx context.Context, id string) (*User, error)

	ListUsers(ctx context.Context, role Role, status AccountStatus) ([]*User, error)

	// Authenticate verifies the credentials and records the login time.
	// Inactive and suspended accounts fail with ErrUnauthorized.
	Authenticate(ctx context.Context, username, password string) (*User, error)
}

type userService struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	if repo == nil {
		panic("user repository cannot be nil")
	}
	return &userService{
		repo:   repo,
		logger: logger.With(slog.String("component", "userService")),
	}
}

func (s *userService) CreateUser(ctx context.Context, input CreateInput) (*User, error) {
	s.logger.InfoContext(ctx, "Creating new user", "username", input.Username)

	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		return nil, apperrors.NewValidationError("username", "cannot be empty")
	}
	if input.Email == "" {
		return nil, apperrors.NewValidationError("email", "cannot be empty")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password", "must be at least 8 characters")
	}

	if existing, err := s.repo.FindByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: username %s already registered", apperrors.ErrAlreadyExists, input.Username)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}

	if existing, err := s.repo.FindByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email %s already registered", apperrors.ErrAlreadyExists, input.Email)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password: %v", apperrors.ErrInternalServer, err)
	}

	role := input.Role
	if role == "" {
		role = RoleOfficer
	}

	now := time.Now().UTC()
	created, err := s.repo.Save(ctx, &User{
		ID:             uuid.NewString(),
		Username:       input.Username,
		Email:          input.Email,
		HashedPassword: string(hashed),
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		PhoneNumber:    input.PhoneNumber,
		Role:           role,
		Status:         StatusActive,
		DepartmentID:   input.DepartmentID,
		BranchID:       input.BranchID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save user", "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "User created", "user_id", created.ID)
	return created, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s not found", apperrors.ErrNotFound, id)
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) ListUsers(ctx context.Context, role Role, status AccountStatus) ([]*User, error) {
	return s.repo.FindAll(ctx, role, status)
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Login attempt for unknown username", "username", username)
			return nil, fmt.Errorf("%w: incorrect username or password", apperrors.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Login attempt with incorrect password", "username", username)
		return nil, fmt.Errorf("%w: incorrect username or password", apperrors.ErrUnauthorized)
	}

	if u.Status != StatusActive {
		s.logger.WarnContext(ctx, "Login attempt on non-active account", "username", username, "status", u.Status)
		return nil, fmt.Errorf("%w: account is %s", apperrors.ErrUnauthorized, u.Status)
	}

	if err := s.repo.RecordLogin(ctx, u.ID); err != nil {
		// Login bookkeeping must not block authentication.
		s.logger.WarnContext(ctx, "Failed to record login time", "user_id", u.ID, "error", err)
	}

	return u, nil
}
