package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/repos"
	"github.com/expoverse/expoverse-backend/internal/types"
)

// DuplicateAttemptError denies a same-day resubmission and carries the prior
// result so clients can display it instead of failing silently.
type DuplicateAttemptError struct {
	Message         string    `json:"message"`
	NextAttemptAt   time.Time `json:"next_attempt_at"`
	PreviousScore   int       `json:"previous_score"`
	PreviousCorrect int       `json:"previous_correct"`
}

func (e *DuplicateAttemptError) Error() string { return e.Message }

type LedgerService interface {
	// CheckDailyAttempt is the guest-flow pre-check for the one-attempt-per-day
	// rule. It is advisory only: the (mobile, attempt_day) unique index is the
	// authoritative guard, and a duplicate insert maps to the same denial.
	CheckDailyAttempt(ctx context.Context, cfg *types.QuizConfig, mobile string) (*DuplicateAttemptError, error)
}

type ledgerService struct {
	db          *gorm.DB
	log         *logger.Logger
	attemptRepo repos.QuizAttemptRepo
	now         func() time.Time
}

func NewLedgerService(db *gorm.DB, log *logger.Logger, attemptRepo repos.QuizAttemptRepo) LedgerService {
	return &ledgerService{
		db:          db,
		log:         log.With("service", "LedgerService"),
		attemptRepo: attemptRepo,
		now:         time.Now,
	}
}

func (s *ledgerService) CheckDailyAttempt(ctx context.Context, cfg *types.QuizConfig, mobile string) (*DuplicateAttemptError, error) {
	if mobile == "" {
		return nil, nil
	}

	now := s.now()
	day, err := DayBucket(cfg, now)
	if err != nil {
		return nil, err
	}

	existing, err := s.attemptRepo.GetByMobileAndDay(ctx, nil, mobile, day)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	denial, err := duplicateDenial(cfg, existing, now)
	if err != nil {
		return nil, err
	}
	s.log.Info("duplicate daily attempt denied", "mobile", mobile, "day", day)
	return denial, nil
}

func duplicateDenial(cfg *types.QuizConfig, previous *types.QuizAttempt, now time.Time) (*DuplicateAttemptError, error) {
	next, err := nextDailyStart(cfg, now)
	if err != nil {
		return nil, err
	}
	return &DuplicateAttemptError{
		Message:         "You have already completed today's quiz. Please try again tomorrow!",
		NextAttemptAt:   next,
		PreviousScore:   previous.Score,
		PreviousCorrect: previous.CorrectAnswers,
	}, nil
}
