package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/types"
)

type GuestUserRepo interface {
	GetByMobile(ctx context.Context, tx *gorm.DB, mobile string) (*types.GuestUser, error)
	Create(ctx context.Context, tx *gorm.DB, guest *types.GuestUser) (*types.GuestUser, error)
	Update(ctx context.Context, tx *gorm.DB, guest *types.GuestUser) (*types.GuestUser, error)
}

type guestUserRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGuestUserRepo(db *gorm.DB, baseLog *logger.Logger) GuestUserRepo {
	return &guestUserRepo{db: db, log: baseLog.With("repo", "GuestUserRepo")}
}

func (r *guestUserRepo) GetByMobile(ctx context.Context, tx *gorm.DB, mobile string) (*types.GuestUser, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.GuestUser
	if err := transaction.WithContext(ctx).
		Where("mobile = ?", mobile).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *guestUserRepo) Create(ctx context.Context, tx *gorm.DB, guest *types.GuestUser) (*types.GuestUser, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(guest).Error; err != nil {
		return nil, err
	}
	return guest, nil
}

func (r *guestUserRepo) Update(ctx context.Context, tx *gorm.DB, guest *types.GuestUser) (*types.GuestUser, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Save(guest).Error; err != nil {
		return nil, err
	}
	return guest, nil
}
