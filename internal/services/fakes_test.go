package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/repos"
	"github.com/expoverse/expoverse-backend/internal/types"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type fakeConfigRepo struct {
	repos.QuizConfigRepo
	active *types.QuizConfig
	err    error
}

func (f *fakeConfigRepo) GetActive(ctx context.Context, tx *gorm.DB) (*types.QuizConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.active == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.active, nil
}

type fakeBoothRepo struct {
	repos.BoothRepo
	published []*types.Booth
}

func (f *fakeBoothRepo) GetPublished(ctx context.Context, tx *gorm.DB) ([]*types.Booth, error) {
	return f.published, nil
}

type fakeQuestionRepo struct {
	repos.QuestionRepo
	active []*types.Question
}

func (f *fakeQuestionRepo) GetActiveByBoothIDs(ctx context.Context, tx *gorm.DB, boothIDs []uuid.UUID) ([]*types.Question, error) {
	allowed := make(map[uuid.UUID]struct{}, len(boothIDs))
	for _, id := range boothIDs {
		allowed[id] = struct{}{}
	}
	var out []*types.Question
	for _, q := range f.active {
		if _, ok := allowed[q.BoothID]; ok && q.IsActive {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Question, error) {
	byID := make(map[uuid.UUID]*types.Question, len(f.active))
	for _, q := range f.active {
		byID[q.ID] = q
	}
	var out []*types.Question
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeGuestRepo struct {
	repos.GuestUserRepo
	byMobile map[string]*types.GuestUser
}

func (f *fakeGuestRepo) GetByMobile(ctx context.Context, tx *gorm.DB, mobile string) (*types.GuestUser, error) {
	if g, ok := f.byMobile[mobile]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGuestRepo) Create(ctx context.Context, tx *gorm.DB, guest *types.GuestUser) (*types.GuestUser, error) {
	guest.ID = uuid.New()
	if f.byMobile == nil {
		f.byMobile = make(map[string]*types.GuestUser)
	}
	f.byMobile[guest.Mobile] = guest
	return guest, nil
}

func (f *fakeGuestRepo) Update(ctx context.Context, tx *gorm.DB, guest *types.GuestUser) (*types.GuestUser, error) {
	f.byMobile[guest.Mobile] = guest
	return guest, nil
}

type fakeAttemptRepo struct {
	repos.QuizAttemptRepo
	created     []*types.QuizAttempt
	byMobileDay map[string]*types.QuizAttempt
	lookupHook  func(mobile, day string) (*types.QuizAttempt, bool)
	leaderboard []*types.QuizAttempt
	createErr   error
}

func attemptKey(mobile, day string) string { return mobile + "|" + day }

func (f *fakeAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.QuizAttempt) (*types.QuizAttempt, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	attempt.ID = uuid.New()
	f.created = append(f.created, attempt)
	return attempt, nil
}

func (f *fakeAttemptRepo) GetByMobileAndDay(ctx context.Context, tx *gorm.DB, mobile, day string) (*types.QuizAttempt, error) {
	if f.lookupHook != nil {
		if a, ok := f.lookupHook(mobile, day); ok {
			return a, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	if a, ok := f.byMobileDay[attemptKey(mobile, day)]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttemptRepo) GetLeaderboard(ctx context.Context, tx *gorm.DB, day string, limit int) ([]*types.QuizAttempt, error) {
	if len(f.leaderboard) > limit {
		return f.leaderboard[:limit], nil
	}
	return f.leaderboard, nil
}

func (f *fakeAttemptRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.QuizAttempt, error) {
	var out []*types.QuizAttempt
	for _, a := range f.created {
		if a.UserID != nil && *a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeLeaderboard struct {
	invalidated []string
}

func (f *fakeLeaderboard) GetLeaderboard(ctx context.Context, date string) ([]*LeaderboardEntry, error) {
	return nil, nil
}

func (f *fakeLeaderboard) InvalidateDay(ctx context.Context, day string) {
	f.invalidated = append(f.invalidated, day)
}
