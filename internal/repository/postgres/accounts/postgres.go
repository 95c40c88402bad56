package accounts

import (
	"context"
	"errors"

	accountsdomain "osca-hub-go/internal/domain/accounts"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *accountsdomain.Account) error {
	err := r.db.WithContext(ctx).Create(account).Error
	if err != nil && isUniqueViolation(err) {
		return accountsdomain.ErrEmailTaken
	}
	return err
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*accountsdomain.Account, error) {
	var account accountsdomain.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, accountsdomain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*accountsdomain.Account, error) {
	var account accountsdomain.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, accountsdomain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
