package customer

import "context"

type Repository interface {
	Save(ctx context.Context, c *Customer) (*Customer, error)

	FindByID(ctx context.Context, id string) (*Customer, error)

	FindAll(ctx context.Context, skip, limit int) ([]*Customer, error)

	Update(ctx context.Context, c *Customer) (*Customer, error)

	Delete(ctx context.Context, id string) error
}
