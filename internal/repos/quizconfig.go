package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/types"
)

type QuizConfigRepo interface {
	GetActive(ctx context.Context, tx *gorm.DB) (*types.QuizConfig, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuizConfig, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.QuizConfig, error)
	Create(ctx context.Context, tx *gorm.DB, config *types.QuizConfig) (*types.QuizConfig, error)
	Update(ctx context.Context, tx *gorm.DB, config *types.QuizConfig) (*types.QuizConfig, error)
	DeactivateAllExcept(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type quizConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizConfigRepo(db *gorm.DB, baseLog *logger.Logger) QuizConfigRepo {
	return &quizConfigRepo{db: db, log: baseLog.With("repo", "QuizConfigRepo")}
}

func (r *quizConfigRepo) GetActive(ctx context.Context, tx *gorm.DB) (*types.QuizConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.QuizConfig
	if err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *quizConfigRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuizConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.QuizConfig
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *quizConfigRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.QuizConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuizConfig
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizConfigRepo) Create(ctx context.Context, tx *gorm.DB, config *types.QuizConfig) (*types.QuizConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(config).Error; err != nil {
		return nil, err
	}
	return config, nil
}

func (r *quizConfigRepo) Update(ctx context.Context, tx *gorm.DB, config *types.QuizConfig) (*types.QuizConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Save(config).Error; err != nil {
		return nil, err
	}
	return config, nil
}

// DeactivateAllExcept flips is_active off for every other config. Run inside
// the same transaction as the activating write to keep the single-active
// invariant.
func (r *quizConfigRepo) DeactivateAllExcept(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.QuizConfig{}).
		Where("id <> ?", id).
		Update("is_active", false).Error
}

func (r *quizConfigRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.QuizConfig{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
