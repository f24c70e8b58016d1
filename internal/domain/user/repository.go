package user

import "context"

type Repository interface {
	Save(ctx context.Context, u *User) (*User, error)

	FindByID(ctx context.Context, id string) (*User, error)

	FindByUsername(ctx context.Context, username string) (*User, error)

	FindByEmail(ctx context.Context, email string) (*User, error)

	FindAll(ctx context.Context, role Role, status AccountStatus) ([]*User, error)

	Update(ctx context.Context, u *User) (*User, error)

	RecordLogin(ctx context.Context, id string) error
}
