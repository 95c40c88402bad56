package appointments

import (
	"context"
	"errors"

	appointmentsdomain "osca-hub-go/internal/domain/appointments"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, appointment *appointmentsdomain.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *PostgresRepository) List(ctx context.Context, filter appointmentsdomain.ListFilter) ([]appointmentsdomain.Appointment, int64, error) {
	query := r.db.WithContext(ctx).Model(&appointmentsdomain.Appointment{})
	if filter.BarangayCode != "" {
		query = query.Where("barangay_code = ?", filter.BarangayCode)
	}
	if filter.SeniorID != "" {
		query = query.Where("senior_id = ?", filter.SeniorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("scheduled_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("scheduled_at < ?", *filter.To)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("scheduled_at asc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var appointments []appointmentsdomain.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*appointmentsdomain.Appointment, error) {
	var appointment appointmentsdomain.Appointment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointmentsdomain.ErrAppointmentNotFound
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *PostgresRepository) Update(ctx context.Context, appointment *appointmentsdomain.Appointment) error {
	return r.db.WithContext(ctx).
		Model(&appointmentsdomain.Appointment{}).
		Where("id = ?", appointment.ID).
		Updates(map[string]interface{}{
			"scheduled_at": appointment.ScheduledAt,
			"location":     appointment.Location,
			"notes":        appointment.Notes,
			"status":       appointment.Status,
		}).Error
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&appointmentsdomain.Appointment{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}
