package appointments

import "context"

type Repository interface {
	Create(ctx context.Context, appointment *Appointment) error
	List(ctx context.Context, filter ListFilter) ([]Appointment, int64, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	Update(ctx context.Context, appointment *Appointment) error
	SoftDelete(ctx context.Context, id string) (bool, error)
}
