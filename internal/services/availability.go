package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/repos"
	"github.com/expoverse/expoverse-backend/internal/types"
)

// AvailabilityError reports why the quiz is closed right now. The timestamps
// are machine-usable so clients can schedule a retry.
type AvailabilityError struct {
	Message     string     `json:"message"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	AvailableAt *time.Time `json:"available_at,omitempty"`
}

func (e *AvailabilityError) Error() string { return e.Message }

type AvailabilityService interface {
	// CheckAvailability resolves the active config and evaluates the date range
	// and today's time window in the config timezone. On success the config is
	// returned for downstream use (selection, ledger, day bucketing).
	CheckAvailability(ctx context.Context) (*types.QuizConfig, *AvailabilityError, error)
}

type availabilityService struct {
	db         *gorm.DB
	log        *logger.Logger
	configRepo repos.QuizConfigRepo
	now        func() time.Time
}

func NewAvailabilityService(db *gorm.DB, log *logger.Logger, configRepo repos.QuizConfigRepo) AvailabilityService {
	return &availabilityService{
		db:         db,
		log:        log.With("service", "AvailabilityService"),
		configRepo: configRepo,
		now:        time.Now,
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context) (*types.QuizConfig, *AvailabilityError, error) {
	cfg, err := s.configRepo.GetActive(ctx, nil)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &AvailabilityError{Message: "No active quiz available at the moment"}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	now := s.now().In(loc)

	periodStart := startOfDay(cfg.StartDate.In(loc))
	periodEnd := endOfDay(cfg.EndDate.In(loc))

	if now.Before(periodStart) {
		at := periodStart
		return nil, &AvailabilityError{
			Message:  fmt.Sprintf("Quiz starts on %s", periodStart.Format("January 2, 2006")),
			StartsAt: &at,
		}, nil
	}
	if now.After(periodEnd) {
		at := periodEnd
		return nil, &AvailabilityError{
			Message: "Quiz period has ended",
			EndedAt: &at,
		}, nil
	}

	dailyStart, dailyEnd, err := dailyWindow(cfg, now)
	if err != nil {
		return nil, nil, err
	}

	if now.Before(dailyStart) {
		at := dailyStart
		return nil, &AvailabilityError{
			Message: fmt.Sprintf("Quiz is available from %s to %s %s",
				cfg.DailyStartTime, cfg.DailyEndTime, now.Format("MST")),
			AvailableAt: &at,
		}, nil
	}
	if now.After(dailyEnd) {
		at := dailyStart.AddDate(0, 0, 1)
		return nil, &AvailabilityError{
			Message: fmt.Sprintf("Today's quiz time has ended. Come back tomorrow at %s %s",
				cfg.DailyStartTime, now.Format("MST")),
			AvailableAt: &at,
		}, nil
	}

	return cfg, nil, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// dailyWindow computes today's [start, end] acceptance window around the given
// instant. The window end lands on second 59 of the configured minute.
func dailyWindow(cfg *types.QuizConfig, now time.Time) (time.Time, time.Time, error) {
	sh, sm, err := types.ParseClock(cfg.DailyStartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	eh, em, err := types.ParseClock(cfg.DailyEndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	loc := now.Location()
	start := time.Date(now.Year(), now.Month(), now.Day(), sh, sm, 0, 0, loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), eh, em, 59, 0, loc)
	return start, end, nil
}

// DayBucket renders the calendar day of t in the config's timezone. Every
// day-scoped rule (attempt ledger, leaderboard) uses this bucket so the
// timezone policy stays consistent across the subsystem.
func DayBucket(cfg *types.QuizConfig, t time.Time) (string, error) {
	loc, err := cfg.Location()
	if err != nil {
		return "", err
	}
	return t.In(loc).Format(types.AttemptDayLayout), nil
}

// nextDailyStart is the next day's window opening after now, used for
// "come back tomorrow" hints.
func nextDailyStart(cfg *types.QuizConfig, now time.Time) (time.Time, error) {
	loc, err := cfg.Location()
	if err != nil {
		return time.Time{}, err
	}
	local := now.In(loc)
	sh, sm, err := types.ParseClock(cfg.DailyStartTime)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(local.Year(), local.Month(), local.Day()+1, sh, sm, 0, 0, loc), nil
}
