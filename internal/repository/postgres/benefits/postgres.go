package benefits

import (
	"context"
	"errors"

	benefitsdomain "osca-hub-go/internal/domain/benefits"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, application *benefitsdomain.Application) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *PostgresRepository) List(ctx context.Context, filter benefitsdomain.ListFilter) ([]benefitsdomain.Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&benefitsdomain.Application{})
	if filter.BarangayCode != "" {
		query = query.Where("barangay_code = ?", filter.BarangayCode)
	}
	if filter.SeniorID != "" {
		query = query.Where("senior_id = ?", filter.SeniorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var applications []benefitsdomain.Application
	if err := query.Find(&applications).Error; err != nil {
		return nil, 0, err
	}

	return applications, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*benefitsdomain.Application, error) {
	var application benefitsdomain.Application
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, benefitsdomain.ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *PostgresRepository) Update(ctx context.Context, application *benefitsdomain.Application) error {
	return r.db.WithContext(ctx).
		Model(&benefitsdomain.Application{}).
		Where("id = ?", application.ID).
		Updates(map[string]interface{}{
			"status":      application.Status,
			"remarks":     application.Remarks,
			"reviewed_by": application.ReviewedBy,
			"reviewed_at": application.ReviewedAt,
		}).Error
}
