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

// QuestionService is the admin-facing question bank. Option invariants live on
// the model; this layer adds booth existence checks and logging.
type QuestionService interface {
	Create(ctx context.Context, question *types.Question) (*types.Question, error)
	List(ctx context.Context, boothID *uuid.UUID) ([]*types.Question, error)
	Update(ctx context.Context, id uuid.UUID, question *types.Question) (*types.Question, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type questionService struct {
	db           *gorm.DB
	log          *logger.Logger
	boothRepo    repos.BoothRepo
	questionRepo repos.QuestionRepo
}

func NewQuestionService(
	db *gorm.DB,
	log *logger.Logger,
	boothRepo repos.BoothRepo,
	questionRepo repos.QuestionRepo,
) QuestionService {
	return &questionService{
		db:           db,
		log:          log.With("service", "QuestionService"),
		boothRepo:    boothRepo,
		questionRepo: questionRepo,
	}
}

func (s *questionService) Create(ctx context.Context, question *types.Question) (*types.Question, error) {
	if _, err := s.boothRepo.GetByID(ctx, nil, question.BoothID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusBadRequest, "booth_not_found",
				errors.New("Booth not found"))
		}
		return nil, err
	}
	if err := question.Validate(); err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_question", err)
	}

	created, err := s.questionRepo.Create(ctx, nil, question)
	if err != nil {
		return nil, err
	}
	s.log.Info("question created", "question_id", created.ID.String(), "booth_id", created.BoothID.String())
	return created, nil
}

func (s *questionService) List(ctx context.Context, boothID *uuid.UUID) ([]*types.Question, error) {
	return s.questionRepo.GetAll(ctx, nil, boothID)
}

func (s *questionService) Update(ctx context.Context, id uuid.UUID, question *types.Question) (*types.Question, error) {
	existing, err := s.questionRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	question.ID = existing.ID
	question.CreatedAt = existing.CreatedAt
	if question.BoothID == uuid.Nil {
		question.BoothID = existing.BoothID
	}
	if err := question.Validate(); err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_question", err)
	}

	updated, err := s.questionRepo.Update(ctx, nil, question)
	if err != nil {
		return nil, err
	}
	s.log.Info("question updated", "question_id", id.String())
	return updated, nil
}

func (s *questionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.questionRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.log.Info("question deleted", "question_id", id.String())
	return nil
}
