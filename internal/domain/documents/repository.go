package documents

import "context"

type Repository interface {
	Create(ctx context.Context, request *Request) error
	List(ctx context.Context, filter ListFilter) ([]Request, int64, error)
	GetByID(ctx context.Context, id string) (*Request, error)
	Update(ctx context.Context, request *Request) error
}
