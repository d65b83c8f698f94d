package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expoverse/expoverse-backend/internal/platform/apierr"
	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/repos"
	"github.com/expoverse/expoverse-backend/internal/types"
)

type ConfigService interface {
	GetActive(ctx context.Context) (*types.QuizConfig, error)
	List(ctx context.Context) ([]*types.QuizConfig, error)
	// Create stores a config; when it is active the others are deactivated in
	// the same transaction, keeping the single-active invariant.
	Create(ctx context.Context, cfg *types.QuizConfig) (*types.QuizConfig, error)
	Update(ctx context.Context, id uuid.UUID, cfg *types.QuizConfig) (*types.QuizConfig, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type configService struct {
	db         *gorm.DB
	log        *logger.Logger
	configRepo repos.QuizConfigRepo
}

func NewConfigService(db *gorm.DB, log *logger.Logger, configRepo repos.QuizConfigRepo) ConfigService {
	return &configService{
		db:         db,
		log:        log.With("service", "ConfigService"),
		configRepo: configRepo,
	}
}

func (s *configService) GetActive(ctx context.Context) (*types.QuizConfig, error) {
	cfg, err := s.configRepo.GetActive(ctx, nil)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.New(http.StatusNotFound, "no_active_config",
			errors.New("No active quiz available at the moment"))
	}
	return cfg, err
}

func (s *configService) List(ctx context.Context) ([]*types.QuizConfig, error) {
	return s.configRepo.GetAll(ctx, nil)
}

// applyDefaults mirrors the model's BeforeSave defaulting so validation errors
// surface as 400s instead of failed saves.
func applyDefaults(cfg *types.QuizConfig) error {
	if cfg.DailyStartTime == "" {
		cfg.DailyStartTime = types.DefaultDailyStartTime
	}
	if cfg.DailyEndTime == "" {
		cfg.DailyEndTime = types.DefaultDailyEndTime
	}
	if cfg.Timezone == "" {
		cfg.Timezone = types.DefaultTimezone
	}
	if cfg.TopCount == 0 {
		cfg.TopCount = types.DefaultTopCount
	}
	if err := cfg.Validate(); err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_config", err)
	}
	return nil
}

func (s *configService) Create(ctx context.Context, cfg *types.QuizConfig) (*types.QuizConfig, error) {
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.configRepo.Create(ctx, tx, cfg)
		if err != nil {
			return err
		}
		if created.IsActive {
			return s.configRepo.DeactivateAllExcept(ctx, tx, created.ID)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	s.log.Info("quiz config created", "config_id", cfg.ID.String(), "active", cfg.IsActive)
	return cfg, nil
}

func (s *configService) Update(ctx context.Context, id uuid.UUID, cfg *types.QuizConfig) (*types.QuizConfig, error) {
	existing, err := s.configRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	cfg.ID = existing.ID
	cfg.CreatedAt = existing.CreatedAt
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := s.configRepo.Update(ctx, tx, cfg)
		if err != nil {
			return err
		}
		if updated.IsActive {
			return s.configRepo.DeactivateAllExcept(ctx, tx, updated.ID)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	s.log.Info("quiz config updated", "config_id", id.String(), "active", cfg.IsActive)
	return cfg, nil
}

func (s *configService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.configRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.log.Info("quiz config deleted", "config_id", id.String())
	return nil
}
