package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/types"
)

type BoothRepo interface {
	GetPublished(ctx context.Context, tx *gorm.DB) ([]*types.Booth, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Booth, error)
}

type boothRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBoothRepo(db *gorm.DB, baseLog *logger.Logger) BoothRepo {
	return &boothRepo{db: db, log: baseLog.With("repo", "BoothRepo")}
}

func (r *boothRepo) GetPublished(ctx context.Context, tx *gorm.DB) ([]*types.Booth, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Booth
	if err := transaction.WithContext(ctx).
		Where("is_published = ?", true).
		Order("display_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *boothRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Booth, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Booth
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
