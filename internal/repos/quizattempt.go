package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/types"
)

// AttemptFilter narrows the admin attempt listing. Zero values mean "no
// filter".
type AttemptFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	UserType  string
	Mobile    string
	Page      int
	Limit     int
}

type AttemptStats struct {
	TotalAttempts      int64   `json:"total_attempts"`
	GuestAttempts      int64   `json:"guest_attempts"`
	RegisteredAttempts int64   `json:"registered_attempts"`
	AvgScore           float64 `json:"avg_score"`
	AvgTime            float64 `json:"avg_time"`
}

type QuizAttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *types.QuizAttempt) (*types.QuizAttempt, error)
	GetByMobileAndDay(ctx context.Context, tx *gorm.DB, mobile, day string) (*types.QuizAttempt, error)
	GetLeaderboard(ctx context.Context, tx *gorm.DB, day string, limit int) ([]*types.QuizAttempt, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.QuizAttempt, error)
	List(ctx context.Context, tx *gorm.DB, filter AttemptFilter) ([]*types.QuizAttempt, int64, error)
	Stats(ctx context.Context, tx *gorm.DB, filter AttemptFilter) (*AttemptStats, error)
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return &quizAttemptRepo{db: db, log: baseLog.With("repo", "QuizAttemptRepo")}
}

func (r *quizAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.QuizAttempt) (*types.QuizAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *quizAttemptRepo) GetByMobileAndDay(ctx context.Context, tx *gorm.DB, mobile, day string) (*types.QuizAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.QuizAttempt
	if err := transaction.WithContext(ctx).
		Where("mobile = ? AND attempt_day = ?", mobile, day).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLeaderboard returns the day's attempts best-first: score desc, then
// total_time asc (faster wins ties). Dedup per participant happens in the
// service.
func (r *quizAttemptRepo) GetLeaderboard(ctx context.Context, tx *gorm.DB, day string, limit int) ([]*types.QuizAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuizAttempt
	if err := transaction.WithContext(ctx).
		Where("attempt_day = ?", day).
		Order("score DESC").
		Order("total_time ASC").
		Limit(limit).
		Preload("User").
		Preload("GuestUser").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizAttemptRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.QuizAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuizAttempt
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("attempt_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func applyAttemptFilter(query *gorm.DB, filter AttemptFilter) *gorm.DB {
	if filter.StartDate != nil {
		query = query.Where("attempt_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("attempt_date <= ?", *filter.EndDate)
	}
	if filter.UserType != "" {
		query = query.Where("user_type = ?", filter.UserType)
	}
	if filter.Mobile != "" {
		query = query.Where("mobile LIKE ?", "%"+filter.Mobile+"%")
	}
	return query
}

func (r *quizAttemptRepo) List(ctx context.Context, tx *gorm.DB, filter AttemptFilter) ([]*types.QuizAttempt, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var total int64
	if err := applyAttemptFilter(transaction.WithContext(ctx).Model(&types.QuizAttempt{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []*types.QuizAttempt
	if err := applyAttemptFilter(transaction.WithContext(ctx), filter).
		Order("attempt_date DESC").
		Order("score DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Preload("User").
		Preload("GuestUser").
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *quizAttemptRepo) Stats(ctx context.Context, tx *gorm.DB, filter AttemptFilter) (*AttemptStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	stats := &AttemptStats{}
	base := func() *gorm.DB {
		return applyAttemptFilter(transaction.WithContext(ctx).Model(&types.QuizAttempt{}), filter)
	}

	if err := base().Count(&stats.TotalAttempts).Error; err != nil {
		return nil, err
	}
	if stats.TotalAttempts == 0 {
		return stats, nil
	}
	if err := base().Where("user_type = ?", types.UserTypeGuest).
		Count(&stats.GuestAttempts).Error; err != nil {
		return nil, err
	}
	if err := base().Where("user_type = ?", types.UserTypeRegistered).
		Count(&stats.RegisteredAttempts).Error; err != nil {
		return nil, err
	}

	var avgs struct {
		AvgScore float64
		AvgTime  float64
	}
	if err := base().
		Select("AVG(score) AS avg_score, AVG(total_time) AS avg_time").
		Scan(&avgs).Error; err != nil {
		return nil, err
	}
	stats.AvgScore = avgs.AvgScore
	stats.AvgTime = avgs.AvgTime
	return stats, nil
}
