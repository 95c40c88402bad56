package seniors

import (
	"context"
	"errors"
	"strings"

	seniorsdomain "osca-hub-go/internal/domain/seniors"

	"gorm.io/gorm"
)

// listColumns keeps inline-encoded media out of list queries.
var listColumns = []string{
	"id", "first_name", "last_name", "date_of_birth", "gender",
	"barangay_code", "barangay_name", "address", "address_detail",
	"contact_person", "contact_phone", "contact_relationship",
	"emergency_name", "emergency_phone", "emergency_relationship",
	"conditions", "medications",
	"housing_condition", "health_condition", "living_condition",
	"monthly_income", "monthly_pension",
	"registration_date", "created_by", "updated_by", "created_at", "updated_at",
}

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(seniorsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, senior *seniorsdomain.Senior) error {
	return r.db.WithContext(ctx).Create(senior).Error
}

func (r *PostgresRepository) List(ctx context.Context, filter seniorsdomain.ListFilter) ([]seniorsdomain.Senior, int64, error) {
	query := r.db.WithContext(ctx).Model(&seniorsdomain.Senior{})
	if filter.BarangayCode != "" {
		query = query.Where("barangay_code = ?", filter.BarangayCode)
	}
	search := strings.TrimSpace(filter.Query)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ?", pattern, pattern)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Select(listColumns).Order("last_name asc, first_name asc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var seniors []seniorsdomain.Senior
	if err := query.Find(&seniors).Error; err != nil {
		return nil, 0, err
	}

	return seniors, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*seniorsdomain.Senior, error) {
	var senior seniorsdomain.Senior
	if err := r.db.WithContext(ctx).
		Preload("Beneficiaries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Where("id = ?", id).
		First(&senior).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, seniorsdomain.ErrSeniorNotFound
		}
		return nil, err
	}
	return &senior, nil
}

func (r *PostgresRepository) Update(ctx context.Context, senior *seniorsdomain.Senior) error {
	return r.db.WithContext(ctx).
		Omit("Beneficiaries", "created_at", "created_by").
		Save(senior).Error
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&seniorsdomain.Senior{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	err := r.db.WithContext(ctx).Delete(&seniorsdomain.Beneficiary{}, "senior_id = ?", id).Error
	return true, err
}
