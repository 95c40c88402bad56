package benefits

import "context"

type Repository interface {
	Create(ctx context.Context, application *Application) error
	List(ctx context.Context, filter ListFilter) ([]Application, int64, error)
	GetByID(ctx context.Context, id string) (*Application, error)
	Update(ctx context.Context, application *Application) error
}
