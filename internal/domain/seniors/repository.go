package seniors

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, senior *Senior) error
	List(ctx context.Context, filter ListFilter) ([]Senior, int64, error)
	GetByID(ctx context.Context, id string) (*Senior, error)
	Update(ctx context.Context, senior *Senior) error
	SoftDelete(ctx context.Context, id string) (bool, error)
}
