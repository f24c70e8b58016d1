package customer

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
	CreateCustomer(ctx context.Context, c *Customer) (*Customer, error)

	GetCustomer(ctx context.Context, id string) (*Customer, error)

	ListCustomers(ctx context.Context, skip, limit int) ([]*Customer, error)

	UpdateCustomer(ctx context.Context, c *Customer) (*Customer, error)

	DeleteCustomer(ctx context.Context, id string) error
}

type customerService struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	return &customerService{
		repo:   repo,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, c *Customer) (*Customer, error) {
	s.logger.InfoContext(ctx, "Creating new customer")

	c.FullNameLatin = strings.TrimSpace(c.FullNameLatin)
	if c.FullNameLatin == "" {
		return nil, apperrors.NewValidationError("full_name_latin", "cannot be empty")
	}
	if c.IDCardType == "" {
		c.IDCardType = IDCardNone
	}

	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now

	created, err := s.repo.Save(ctx, c)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save customer", "error", err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "Customer created", "customer_id", created.ID)
	return created, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %s not found", apperrors.ErrNotFound, id)
		}
		return nil, err
	}
	return c, nil
}

func (s *customerService) ListCustomers(ctx context.Context, skip, limit int) ([]*Customer, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	return s.repo.FindAll(ctx, skip, limit)
}

func (s *customerService) UpdateCustomer(ctx context.Context, c *Customer) (*Customer, error) {
	existing, err := s.GetCustomer(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, c)
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
