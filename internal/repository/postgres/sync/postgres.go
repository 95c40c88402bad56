package sync

import (
	"context"
	"errors"

	syncdomain "osca-hub-go/internal/domain/sync"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) BeginBatch(ctx context.Context, batch *syncdomain.BatchRecord) (bool, *syncdomain.BatchRecord, error) {
	err := r.db.WithContext(ctx).Create(batch).Error
	if err == nil {
		return true, nil, nil
	}
	if !isUniqueViolation(err) {
		return false, nil, err
	}
	if batch.IdempotencyKey == nil {
		return false, nil, nil
	}

	var existing syncdomain.BatchRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", batch.UserID, *batch.IdempotencyKey).
		First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}

	return false, &existing, nil
}

func (r *PostgresRepository) CompleteBatch(ctx context.Context, batchID string, status syncdomain.BatchState, responseJSON []byte) error {
	return r.db.WithContext(ctx).
		Model(&syncdomain.BatchRecord{}).
		Where("id = ?", batchID).
		Updates(map[string]interface{}{
			"status":        status,
			"response_json": responseJSON,
		}).Error
}

func (r *PostgresRepository) ReserveOperation(ctx context.Context, operation *syncdomain.OperationRecord) (bool, *syncdomain.OperationRecord, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "operation_id"},
			},
			DoNothing: true,
		}).
		Create(operation)
	if result.Error != nil {
		return false, nil, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil, nil
	}

	var existing syncdomain.OperationRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND operation_id = ?", operation.UserID, operation.OperationID).
		First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}

	return false, &existing, nil
}

func (r *PostgresRepository) UpdateOperation(ctx context.Context, operation *syncdomain.OperationRecord) error {
	return r.db.WithContext(ctx).
		Model(&syncdomain.OperationRecord{}).
		Where("id = ?", operation.ID).
		Updates(map[string]interface{}{
			"status":        operation.Status,
			"entity":        operation.Entity,
			"server_id":     operation.ServerID,
			"local_id":      operation.LocalID,
			"error_code":    operation.ErrorCode,
			"error_message": operation.ErrorMessage,
			"retryable":     operation.Retryable,
		}).Error
}

func (r *PostgresRepository) FindServerIDByLocalID(ctx context.Context, userID string, entity syncdomain.Entity, localID string) (string, bool, error) {
	var record syncdomain.OperationRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND entity = ? AND local_id = ? AND status = ? AND server_id IS NOT NULL",
			userID, entity, localID, syncdomain.OperationStateApplied).
		Order("updated_at desc").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if record.ServerID == nil {
		return "", false, nil
	}
	return *record.ServerID, true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
