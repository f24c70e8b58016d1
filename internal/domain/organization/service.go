package organization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"loan-origination/internal/pkg/apperrors"
)

type Service interface {
	CreateBranch(ctx context.Context, b *Branch) (*Branch, error)

	GetBranch(ctx context.Context, id string) (*Branch, error)

	ListBranches(ctx context.Context, activeOnly bool) ([]*Branch, error)

	CreateDepartment(ctx context.Context, d *Department) (*Department, error)

	GetDepartment(ctx context.Context, id string) (*Department, error)

	ListDepartments(ctx context.Context, activeOnly bool) ([]*Department, error)
}

type organizationService struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	if repo == nil {
		panic("organization repository cannot be nil")
	}
	return &organizationService{
		repo:   repo,
		logger: logger.With(slog.String("component", "organizationService")),
	}
}

func (s *organizationService) CreateBranch(ctx context.Context, b *Branch) (*Branch, error) {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return nil, apperrors.NewValidationError("name", "cannot be empty")
	}
	if b.Code == "" {
		return nil, apperrors.NewValidationError("code", "cannot be empty")
	}
	if b.Address == "" {
		return nil, apperrors.NewValidationError("address", "cannot be empty")
	}

	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.IsActive = true
	b.CreatedAt = now
	b.UpdatedAt = now

	created, err := s.repo.SaveBranch(ctx, b)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save branch", "error", err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "Branch created", "branch_id", created.ID)
	return created, nil
}

func (s *organizationService) GetBranch(ctx context.Context, id string) (*Branch, error) {
	b, err := s.repo.FindBranchByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: branch %s not found", apperrors.ErrNotFound, id)
		}
		return nil, err
	}
	return b, nil
}

func (s *organizationService) ListBranches(ctx context.Context, activeOnly bool) ([]*Branch, error) {
	return s.repo.FindAllBranches(ctx, activeOnly)
}

func (s *organizationService) CreateDepartment(ctx context.Context, d *Department) (*Department, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return nil, apperrors.NewValidationError("name", "cannot be empty")
	}
	if d.Code == "" {
		return nil, apperrors.NewValidationError("code", "cannot be empty")
	}

	now := time.Now().UTC()
	d.ID = uuid.NewString()
	d.IsActive = true
	d.CreatedAt = now
	d.UpdatedAt = now

	created, err := s.repo.SaveDepartment(ctx, d)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save department", "error", err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "Department created", "department_id", created.ID)
	return created, nil
}

func (s *organizationService) GetDepartment(ctx context.Context, id string) (*Department, error) {
	d, err := s.repo.FindDepartmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: department %s not found", apperrors.ErrNotFound, id)
		}
		return nil, err
	}
	return d, nil
}

func (s *organizationService) ListDepartments(ctx context.Context, activeOnly bool) ([]*Department, error) {
	return s.repo.FindAllDepartments(ctx, activeOnly)
}
