package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/types"
)

// The schema is created by hand because the production models rely on
// Postgres server defaults; sqlite only needs matching columns and the
// unique index under test.
var testSchema = []string{
	`CREATE TABLE quiz_attempt (
		id TEXT PRIMARY KEY,
		user_type TEXT NOT NULL,
		user_id TEXT,
		guest_user_id TEXT,
		mobile TEXT,
		attempt_day TEXT NOT NULL,
		answers TEXT NOT NULL,
		total_questions INTEGER NOT NULL,
		correct_answers INTEGER NOT NULL DEFAULT 0,
		score INTEGER NOT NULL DEFAULT 0,
		total_time INTEGER NOT NULL DEFAULT 0,
		percentage REAL NOT NULL DEFAULT 0,
		attempt_date DATETIME NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX idx_attempt_mobile_day ON quiz_attempt (mobile, attempt_day)`,
	`CREATE TABLE "user" (
		id TEXT PRIMARY KEY,
		name TEXT,
		email TEXT,
		password TEXT,
		role TEXT,
		avatar TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE guest_user (
		id TEXT PRIMARY KEY,
		name TEXT,
		age INTEGER,
		mobile TEXT,
		place TEXT,
		total_attempts INTEGER DEFAULT 0,
		last_attempt_date DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

func attemptTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func attemptRepoForTest(t *testing.T) (QuizAttemptRepo, *gorm.DB) {
	t.Helper()
	db := attemptTestDB(t)
	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
	return NewQuizAttemptRepo(db, log), db
}

func guestAttempt(mobile, day string, score, totalTime int) *types.QuizAttempt {
	m := mobile
	guestID := uuid.New()
	answers := make([]types.AttemptAnswer, types.AttemptTotalQuestions)
	for i := range answers {
		answers[i] = types.AttemptAnswer{QuestionID: uuid.New(), IsCorrect: i < score/10}
	}
	return &types.QuizAttempt{
		ID:             uuid.New(),
		UserType:       types.UserTypeGuest,
		GuestUserID:    &guestID,
		Mobile:         &m,
		AttemptDay:     day,
		Answers:        answers,
		TotalQuestions: types.AttemptTotalQuestions,
		CorrectAnswers: score / 10,
		Score:          score,
		TotalTime:      totalTime,
		AttemptDate:    time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

func registeredAttempt(day string, score int) *types.QuizAttempt {
	userID := uuid.New()
	answers := make([]types.AttemptAnswer, types.AttemptTotalQuestions)
	for i := range answers {
		answers[i] = types.AttemptAnswer{QuestionID: uuid.New()}
	}
	return &types.QuizAttempt{
		ID:             uuid.New(),
		UserType:       types.UserTypeRegistered,
		UserID:         &userID,
		AttemptDay:     day,
		Answers:        answers,
		TotalQuestions: types.AttemptTotalQuestions,
		Score:          score,
		AttemptDate:    time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestQuizAttemptUniqueMobilePerDay(t *testing.T) {
	repo, _ := attemptRepoForTest(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, nil, guestAttempt("9876543210", "2025-01-15", 70, 100)); err != nil {
		t.Fatalf("first create error: %v", err)
	}

	_, err := repo.Create(ctx, nil, guestAttempt("9876543210", "2025-01-15", 90, 80))
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("second same-day create error=%v, want ErrDuplicatedKey", err)
	}

	// A different day is a fresh slot.
	if _, err := repo.Create(ctx, nil, guestAttempt("9876543210", "2025-01-16", 60, 90)); err != nil {
		t.Fatalf("next-day create error: %v", err)
	}
}

func TestQuizAttemptRegisteredNotDayLimited(t *testing.T) {
	repo, _ := attemptRepoForTest(t)
	ctx := context.Background()

	// Registered attempts store a NULL mobile, which the unique index treats
	// as distinct, so the daily cap only binds guests.
	if _, err := repo.Create(ctx, nil, registeredAttempt("2025-01-15", 50)); err != nil {
		t.Fatalf("first registered create error: %v", err)
	}
	if _, err := repo.Create(ctx, nil, registeredAttempt("2025-01-15", 80)); err != nil {
		t.Fatalf("second registered create error: %v", err)
	}
}

func TestQuizAttemptGetByMobileAndDay(t *testing.T) {
	repo, _ := attemptRepoForTest(t)
	ctx := context.Background()

	created := guestAttempt("9876543210", "2025-01-15", 70, 100)
	if _, err := repo.Create(ctx, nil, created); err != nil {
		t.Fatalf("create error: %v", err)
	}

	found, err := repo.GetByMobileAndDay(ctx, nil, "9876543210", "2025-01-15")
	if err != nil {
		t.Fatalf("GetByMobileAndDay error: %v", err)
	}
	if found.ID != created.ID || found.Score != 70 {
		t.Fatalf("found wrong attempt: %+v", found)
	}

	_, err = repo.GetByMobileAndDay(ctx, nil, "9876543210", "2025-01-16")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("lookup for empty day error=%v, want ErrRecordNotFound", err)
	}
}

func TestQuizAttemptLeaderboardOrdering(t *testing.T) {
	repo, _ := attemptRepoForTest(t)
	ctx := context.Background()

	attempts := []*types.QuizAttempt{
		guestAttempt("9000000001", "2025-01-15", 80, 120),
		guestAttempt("9000000002", "2025-01-15", 80, 90),
		guestAttempt("9000000003", "2025-01-15", 100, 200),
		guestAttempt("9000000004", "2025-01-15", 60, 30),
		guestAttempt("9000000005", "2025-01-16", 100, 10),
	}
	for _, a := range attempts {
		if _, err := repo.Create(ctx, nil, a); err != nil {
			t.Fatalf("create error: %v", err)
		}
	}

	results, err := repo.GetLeaderboard(ctx, nil, "2025-01-15", 50)
	if err != nil {
		t.Fatalf("GetLeaderboard error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4 (other day excluded)", len(results))
	}

	wantScores := []int{100, 80, 80, 60}
	for i, want := range wantScores {
		if results[i].Score != want {
			t.Fatalf("position %d score %d, want %d", i, results[i].Score, want)
		}
	}
	// The 80/80 tie is broken by time: 90s before 120s.
	if results[1].TotalTime != 90 || results[2].TotalTime != 120 {
		t.Fatalf("tie order (%d, %d), want (90, 120)", results[1].TotalTime, results[2].TotalTime)
	}
}

func TestQuizAttemptStats(t *testing.T) {
	repo, _ := attemptRepoForTest(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, nil, guestAttempt("9000000001", "2025-01-15", 60, 100)); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if _, err := repo.Create(ctx, nil, guestAttempt("9000000002", "2025-01-15", 80, 140)); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if _, err := repo.Create(ctx, nil, registeredAttempt("2025-01-15", 100)); err != nil {
		t.Fatalf("create error: %v", err)
	}

	stats, err := repo.Stats(ctx, nil, AttemptFilter{})
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.TotalAttempts != 3 || stats.GuestAttempts != 2 || stats.RegisteredAttempts != 1 {
		t.Fatalf("counts %d/%d/%d, want 3/2/1",
			stats.TotalAttempts, stats.GuestAttempts, stats.RegisteredAttempts)
	}
	if stats.AvgScore != 80 {
		t.Fatalf("avg score %v, want 80", stats.AvgScore)
	}

	guestOnly, err := repo.Stats(ctx, nil, AttemptFilter{UserType: types.UserTypeGuest})
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if guestOnly.TotalAttempts != 2 || guestOnly.AvgScore != 70 {
		t.Fatalf("guest stats %d/%v, want 2/70", guestOnly.TotalAttempts, guestOnly.AvgScore)
	}
}

func TestQuizAttemptListPagination(t *testing.T) {
	repo, _ := attemptRepoForTest(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		mobile := "900000000" + string(rune('0'+i))
		if _, err := repo.Create(ctx, nil, guestAttempt(mobile, "2025-01-15", 50+i*10, 100)); err != nil {
			t.Fatalf("create error: %v", err)
		}
	}

	page1, total, err := repo.List(ctx, nil, AttemptFilter{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if total != 5 {
		t.Fatalf("total %d, want 5", total)
	}
	if len(page1) != 2 {
		t.Fatalf("page size %d, want 2", len(page1))
	}

	page3, _, err := repo.List(ctx, nil, AttemptFilter{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(page3) != 1 {
		t.Fatalf("last page size %d, want 1", len(page3))
	}
}
