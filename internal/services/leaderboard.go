package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	redisclient "github.com/expoverse/expoverse-backend/internal/clients/redis"
	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/repos"
	"github.com/expoverse/expoverse-backend/internal/types"
)

// leaderboardFetchLimit bounds the database read; dedup can only shrink the
// result, so 50 rows cover any configured top count up to 50.
const leaderboardFetchLimit = 50

type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	UserType       string    `json:"user_type"`
	Name           string    `json:"name"`
	Place          string    `json:"place,omitempty"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalTime      int       `json:"total_time"`
	Percentage     float64   `json:"percentage"`
	AttemptDate    time.Time `json:"attempt_date"`
}

type LeaderboardService interface {
	// GetLeaderboard ranks a day's attempts: best attempt per participant,
	// score desc then time asc, capped at the active config's top count
	// (50 without one). date is an optional "YYYY-MM-DD" day bucket; empty
	// means today in the config timezone.
	GetLeaderboard(ctx context.Context, date string) ([]*LeaderboardEntry, error)
	// InvalidateDay drops the cached leaderboard for a day bucket. Best effort.
	InvalidateDay(ctx context.Context, day string)
}

type leaderboardService struct {
	db          *gorm.DB
	log         *logger.Logger
	configRepo  repos.QuizConfigRepo
	attemptRepo repos.QuizAttemptRepo
	cache       redisclient.LeaderboardCache
	now         func() time.Time
}

// NewLeaderboardService builds the ranker. cache may be nil (no redis
// configured); lookups then always hit Postgres.
func NewLeaderboardService(
	db *gorm.DB,
	log *logger.Logger,
	configRepo repos.QuizConfigRepo,
	attemptRepo repos.QuizAttemptRepo,
	cache redisclient.LeaderboardCache,
) LeaderboardService {
	return &leaderboardService{
		db:          db,
		log:         log.With("service", "LeaderboardService"),
		configRepo:  configRepo,
		attemptRepo: attemptRepo,
		cache:       cache,
		now:         time.Now,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, date string) ([]*LeaderboardEntry, error) {
	cfg, err := s.configRepo.GetActive(ctx, nil)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	day, topCount, err := s.resolveDay(cfg, date)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached []*LeaderboardEntry
		hit, cacheErr := s.cache.GetInto(ctx, day, &cached)
		if cacheErr != nil {
			s.log.Warn("leaderboard cache read failed", "day", day, "error", cacheErr)
		} else if hit {
			return cached, nil
		}
	}

	attempts, err := s.attemptRepo.GetLeaderboard(ctx, nil, day, leaderboardFetchLimit)
	if err != nil {
		return nil, err
	}

	entries := rankAttempts(attempts, topCount)

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, day, entries); cacheErr != nil {
			s.log.Warn("leaderboard cache write failed", "day", day, "error", cacheErr)
		}
	}
	return entries, nil
}

func (s *leaderboardService) InvalidateDay(ctx context.Context, day string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, day); err != nil {
		s.log.Warn("leaderboard cache invalidation failed", "day", day, "error", err)
	}
}

// resolveDay picks the day bucket and result cap. Day boundaries always follow
// the active config's timezone; with no config the platform default applies.
func (s *leaderboardService) resolveDay(cfg *types.QuizConfig, date string) (string, int, error) {
	topCount := leaderboardFetchLimit
	if cfg != nil && cfg.TopCount > 0 {
		topCount = cfg.TopCount
	}

	if date != "" {
		if _, err := time.Parse(types.AttemptDayLayout, date); err != nil {
			return "", 0, errInvalidLeaderboardDate
		}
		return date, topCount, nil
	}

	if cfg != nil {
		day, err := DayBucket(cfg, s.now())
		if err != nil {
			return "", 0, err
		}
		return day, topCount, nil
	}
	loc, err := time.LoadLocation(types.DefaultTimezone)
	if err != nil {
		return "", 0, err
	}
	return s.now().In(loc).Format(types.AttemptDayLayout), topCount, nil
}

var errInvalidLeaderboardDate = errors.New("date must be in YYYY-MM-DD format")

// IsInvalidDate reports whether err is the malformed leaderboard date error.
func IsInvalidDate(err error) bool {
	return errors.Is(err, errInvalidLeaderboardDate)
}

// rankAttempts keeps each participant's best attempt (the input is already
// best-first) and assigns 1-based ranks. Registered participants key by user
// id, guests by mobile.
func rankAttempts(attempts []*types.QuizAttempt, topCount int) []*LeaderboardEntry {
	entries := make([]*LeaderboardEntry, 0, len(attempts))
	seen := make(map[string]struct{}, len(attempts))
	for _, attempt := range attempts {
		key := identityKey(attempt)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		entry := &LeaderboardEntry{
			Rank:           len(entries) + 1,
			UserType:       attempt.UserType,
			Score:          attempt.Score,
			CorrectAnswers: attempt.CorrectAnswers,
			TotalTime:      attempt.TotalTime,
			Percentage:     attempt.Percentage,
			AttemptDate:    attempt.AttemptDate,
		}
		switch {
		case attempt.User != nil:
			entry.Name = attempt.User.Name
		case attempt.GuestUser != nil:
			entry.Name = attempt.GuestUser.Name
			entry.Place = attempt.GuestUser.Place
		}
		entries = append(entries, entry)

		if len(entries) >= topCount {
			break
		}
	}
	return entries
}

func identityKey(attempt *types.QuizAttempt) string {
	if attempt.UserType == types.UserTypeRegistered && attempt.UserID != nil {
		return "user:" + attempt.UserID.String()
	}
	if attempt.Mobile != nil {
		return "guest:" + *attempt.Mobile
	}
	return ""
}
