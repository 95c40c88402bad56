package documents

import (
	"context"
	"errors"

	documentsdomain "osca-hub-go/internal/domain/documents"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, request *documentsdomain.Request) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *PostgresRepository) List(ctx context.Context, filter documentsdomain.ListFilter) ([]documentsdomain.Request, int64, error) {
	query := r.db.WithContext(ctx).Model(&documentsdomain.Request{})
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

	var requests []documentsdomain.Request
	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*documentsdomain.Request, error) {
	var request documentsdomain.Request
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, documentsdomain.ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *PostgresRepository) Update(ctx context.Context, request *documentsdomain.Request) error {
	return r.db.WithContext(ctx).
		Model(&documentsdomain.Request{}).
		Where("id = ?", request.ID).
		Updates(map[string]interface{}{
			"status":  request.Status,
			"purpose": request.Purpose,
		}).Error
}
