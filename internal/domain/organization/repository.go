package organization

import "context"

type Repository interface {
	SaveBranch(ctx context.Context, b *Branch) (*Branch, error)

	FindBranchByID(ctx context.Context, id string) (*Branch, error)

	FindAllBranches(ctx context.Context, activeOnly bool) ([]*Branch, error)

	SaveDepartment(ctx context.Context, d *Department) (*Department, error)

	FindDepartmentByID(ctx context.Context, id string) (*Department, error)

	FindAllDepartments(ctx context.Context, activeOnly bool) ([]*Department, error)
}
