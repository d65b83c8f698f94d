package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/expoverse/expoverse-backend/internal/platform/apierr"
	"github.com/expoverse/expoverse-backend/internal/requestdata"
	"github.com/expoverse/expoverse-backend/internal/types"
)

// testDB opens a throwaway database so service transactions have something to
// begin and commit against. Persistence itself goes through fake repos.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return db
}

type quizFixture struct {
	booths    []*types.Booth
	questions []*types.Question
	boothRepo *fakeBoothRepo
	questRepo *fakeQuestionRepo
	guestRepo *fakeGuestRepo
	attempts  *fakeAttemptRepo
	ranker    *fakeLeaderboard
	svc       *quizService
}

func newQuizFixture(t *testing.T, boothCount, questionsPerBooth int) *quizFixture {
	t.Helper()
	f := &quizFixture{
		guestRepo: &fakeGuestRepo{},
		attempts:  &fakeAttemptRepo{},
		ranker:    &fakeLeaderboard{},
	}
	for b := 0; b < boothCount; b++ {
		booth := &types.Booth{
			ID:          uuid.New(),
			Name:        fmt.Sprintf("Booth %d", b+1),
			IsPublished: true,
		}
		f.booths = append(f.booths, booth)
		for q := 0; q < questionsPerBooth; q++ {
			f.questions = append(f.questions, &types.Question{
				ID:       uuid.New(),
				BoothID:  booth.ID,
				Question: fmt.Sprintf("Question %d for %s", q+1, booth.Name),
				Options: []types.QuestionOption{
					{Text: "Right", IsCorrect: true},
					{Text: "Wrong A"},
					{Text: "Wrong B"},
					{Text: "Wrong C"},
				},
				Points:   types.DefaultQuestionPoints,
				IsActive: true,
			})
		}
	}
	f.boothRepo = &fakeBoothRepo{published: f.booths}
	f.questRepo = &fakeQuestionRepo{active: f.questions}

	f.svc = &quizService{
		db:           testDB(t),
		log:          testLogger(),
		boothRepo:    f.boothRepo,
		questionRepo: f.questRepo,
		guestRepo:    f.guestRepo,
		attemptRepo:  f.attempts,
		ledger: &ledgerService{
			log:         testLogger(),
			attemptRepo: f.attempts,
			now:         func() time.Time { return istTime(t, 2025, 1, 15, 12, 0, 0) },
		},
		leaderboard: f.ranker,
		now:         func() time.Time { return istTime(t, 2025, 1, 15, 12, 0, 0) },
		randIntn:    func(n int) int { return 0 },
		randShuffle: func(n int, swap func(i, j int)) {},
	}
	return f
}

func TestGetQuizQuestionsOnePerBooth(t *testing.T) {
	f := newQuizFixture(t, 3, 5)

	questions, err := f.svc.GetQuizQuestions(context.Background())
	if err != nil {
		t.Fatalf("GetQuizQuestions error: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want one per booth (3)", len(questions))
	}

	seenBooths := make(map[uuid.UUID]bool)
	for _, q := range questions {
		if seenBooths[q.BoothID] {
			t.Fatalf("booth %s contributed more than one question", q.BoothID)
		}
		seenBooths[q.BoothID] = true
		if len(q.Options) != 4 {
			t.Fatalf("question has %d options, want 4", len(q.Options))
		}
		if q.BoothName == "" {
			t.Fatalf("question missing booth name")
		}
		for i, opt := range q.Options {
			if opt.Index != i {
				t.Fatalf("option index %d, want %d", opt.Index, i)
			}
		}
	}
}

func TestGetQuizQuestionsCapped(t *testing.T) {
	f := newQuizFixture(t, 12, 2)

	questions, err := f.svc.GetQuizQuestions(context.Background())
	if err != nil {
		t.Fatalf("GetQuizQuestions error: %v", err)
	}
	if len(questions) != MaxQuizQuestions {
		t.Fatalf("got %d questions, want capped at %d", len(questions), MaxQuizQuestions)
	}
}

func TestGetQuizQuestionsNoBooths(t *testing.T) {
	f := newQuizFixture(t, 0, 0)

	_, err := f.svc.GetQuizQuestions(context.Background())
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 apierr, got %v", err)
	}
	if apiErr.Error() != "No published booths available for quiz" {
		t.Fatalf("unexpected message %q", apiErr.Error())
	}
}

func TestGetQuizQuestionsNoActiveQuestions(t *testing.T) {
	f := newQuizFixture(t, 3, 1)
	for _, q := range f.questions {
		q.IsActive = false
	}

	_, err := f.svc.GetQuizQuestions(context.Background())
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 apierr, got %v", err)
	}
	if apiErr.Error() != "No active questions available for quiz" {
		t.Fatalf("unexpected message %q", apiErr.Error())
	}
}

func guestSubmission(f *quizFixture, correct int) *SubmitQuizRequest {
	answers := make([]SubmitAnswer, 0, types.AttemptTotalQuestions)
	for i := 0; i < types.AttemptTotalQuestions; i++ {
		selected := 0
		if i >= correct {
			selected = 1
		}
		answers = append(answers, SubmitAnswer{
			QuestionID:     f.questions[i].ID,
			SelectedOption: selected,
			TimeTaken:      12,
		})
	}
	return &SubmitQuizRequest{
		Answers:   answers,
		TotalTime: 120,
		GuestData: &GuestData{Name: "Asha", Age: 28, Mobile: "9876543210", Place: "Kochi"},
	}
}

func TestSubmitQuizGuestScoring(t *testing.T) {
	f := newQuizFixture(t, 10, 1)
	req := guestSubmission(f, 7)

	result, err := f.svc.SubmitQuiz(context.Background(), istConfig(t), req)
	if err != nil {
		t.Fatalf("SubmitQuiz error: %v", err)
	}

	if result.Score != 70 || result.CorrectAnswers != 7 {
		t.Fatalf("scored %d with %d correct, want 70 with 7", result.Score, result.CorrectAnswers)
	}
	if result.UserType != types.UserTypeGuest {
		t.Fatalf("user type %q, want guest", result.UserType)
	}
	if result.AttemptDay != "2025-01-15" {
		t.Fatalf("attempt day %q, want 2025-01-15", result.AttemptDay)
	}
	if result.Mobile == nil || *result.Mobile != "9876543210" {
		t.Fatalf("attempt mobile not recorded: %+v", result.Mobile)
	}
	if result.GuestUserID == nil {
		t.Fatalf("guest user not linked to attempt")
	}
	if len(result.AnswerDetails) != types.AttemptTotalQuestions {
		t.Fatalf("got %d answer details, want %d", len(result.AnswerDetails), types.AttemptTotalQuestions)
	}

	guest := f.guestRepo.byMobile["9876543210"]
	if guest == nil || guest.TotalAttempts != 1 {
		t.Fatalf("guest attempt counter not incremented: %+v", guest)
	}
	if len(f.ranker.invalidated) != 1 || f.ranker.invalidated[0] != "2025-01-15" {
		t.Fatalf("leaderboard cache not invalidated for day: %v", f.ranker.invalidated)
	}
}

func TestSubmitQuizPerfectScore(t *testing.T) {
	f := newQuizFixture(t, 10, 1)

	result, err := f.svc.SubmitQuiz(context.Background(), istConfig(t), guestSubmission(f, 10))
	if err != nil {
		t.Fatalf("SubmitQuiz error: %v", err)
	}
	if result.Score != 100 || result.CorrectAnswers != 10 {
		t.Fatalf("scored %d with %d correct, want 100 with 10", result.Score, result.CorrectAnswers)
	}
}

func TestSubmitQuizOutOfRangeSelectionIsIncorrect(t *testing.T) {
	f := newQuizFixture(t, 10, 1)
	req := guestSubmission(f, 10)
	req.Answers[0].SelectedOption = -1
	req.Answers[1].SelectedOption = 9

	result, err := f.svc.SubmitQuiz(context.Background(), istConfig(t), req)
	if err != nil {
		t.Fatalf("SubmitQuiz error: %v", err)
	}
	if result.CorrectAnswers != 8 {
		t.Fatalf("got %d correct, want 8 (out-of-range answers graded wrong)", result.CorrectAnswers)
	}
}

func TestSubmitQuizWrongAnswerCount(t *testing.T) {
	f := newQuizFixture(t, 10, 1)
	req := guestSubmission(f, 10)
	req.Answers = req.Answers[:9]

	_, err := f.svc.SubmitQuiz(context.Background(), istConfig(t), req)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 apierr, got %v", err)
	}
	if apiErr.Error() != "Invalid quiz submission. 10 answers required" {
		t.Fatalf("unexpected message %q", apiErr.Error())
	}
}

func TestSubmitQuizIncompleteGuestData(t *testing.T) {
	f := newQuizFixture(t, 10, 1)
	req := guestSubmission(f, 10)
	req.GuestData.Place = ""

	_, err := f.svc.SubmitQuiz(context.Background(), istConfig(t), req)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 apierr, got %v", err)
	}
	if apiErr.Error() != "Guest data incomplete. Name, age, mobile, and place are required" {
		t.Fatalf("unexpected message %q", apiErr.Error())
	}
}

func TestSubmitQuizMalformedGuestData(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(g *GuestData)
	}{
		{
			name:   "short_mobile",
			mutate: func(g *GuestData) { g.Mobile = "12345" },
		},
		{
			name:   "non_numeric_mobile",
			mutate: func(g *GuestData) { g.Mobile = "98765abcde" },
		},
		{
			name:   "age_out_of_range",
			mutate: func(g *GuestData) { g.Age = 151 },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newQuizFixture(t, 10, 1)
			req := guestSubmission(f, 10)
			tc.mutate(req.GuestData)

			_, err := f.svc.SubmitQuiz(context.Background(), istConfig(t), req)
			var apiErr *apierr.Error
			if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
				t.Fatalf("expected 400 apierr, got %v", err)
			}
			if len(f.attempts.created) != 0 {
				t.Fatalf("malformed guest data must not persist an attempt")
			}
		})
	}
}

func TestSubmitQuizNoParticipant(t *testing.T) {
	f := newQuizFixture(t, 10, 1)
	req := guestSubmission(f, 10)
	req.GuestData = nil

	_, err := f.svc.SubmitQuiz(context.Background(), istConfig(t), req)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 apierr, got %v", err)
	}
	if apiErr.Error() != "User authentication or guest data required" {
		t.Fatalf("unexpected message %q", apiErr.Error())
	}
}

func TestSubmitQuizRegisteredUserIgnoresGuestLedger(t *testing.T) {
	f := newQuizFixture(t, 10, 1)
	userID := uuid.New()
	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: userID,
	})

	req := guestSubmission(f, 6)
	req.GuestData = nil

	result, err := f.svc.SubmitQuiz(ctx, istConfig(t), req)
	if err != nil {
		t.Fatalf("SubmitQuiz error: %v", err)
	}
	if result.UserType != types.UserTypeRegistered {
		t.Fatalf("user type %q, want registered", result.UserType)
	}
	if result.UserID == nil || *result.UserID != userID {
		t.Fatalf("attempt not linked to user")
	}
	if result.Mobile != nil {
		t.Fatalf("registered attempt must not carry a mobile")
	}

	// A second same-day submission is allowed for registered users.
	if _, err := f.svc.SubmitQuiz(ctx, istConfig(t), req); err != nil {
		t.Fatalf("second registered submission rejected: %v", err)
	}
}

func TestSubmitQuizDuplicateGuestDenied(t *testing.T) {
	f := newQuizFixture(t, 10, 1)
	req := guestSubmission(f, 7)

	first, err := f.svc.SubmitQuiz(context.Background(), istConfig(t), req)
	if err != nil {
		t.Fatalf("first SubmitQuiz error: %v", err)
	}
	f.attempts.byMobileDay = map[string]*types.QuizAttempt{
		attemptKey("9876543210", "2025-01-15"): first.QuizAttempt,
	}

	_, err = f.svc.SubmitQuiz(context.Background(), istConfig(t), req)
	var denial *DuplicateAttemptError
	if !errors.As(err, &denial) {
		t.Fatalf("expected duplicate denial, got %v", err)
	}
	if denial.PreviousScore != 70 || denial.PreviousCorrect != 7 {
		t.Fatalf("previous result %d/%d, want 70/7", denial.PreviousScore, denial.PreviousCorrect)
	}
}

func TestSubmitQuizDuplicateKeyRace(t *testing.T) {
	f := newQuizFixture(t, 10, 1)
	req := guestSubmission(f, 5)

	// Pre-check passes but the insert hits the unique index, as when two
	// submissions race.
	f.attempts.createErr = gorm.ErrDuplicatedKey
	committed := &types.QuizAttempt{Score: 50, CorrectAnswers: 5}
	lookups := 0
	f.attempts.lookupHook = func(mobile, day string) (*types.QuizAttempt, bool) {
		lookups++
		if lookups == 1 {
			// The ledger pre-check sees nothing yet.
			return nil, false
		}
		return committed, true
	}

	_, err := f.svc.SubmitQuiz(context.Background(), istConfig(t), req)
	var denial *DuplicateAttemptError
	if !errors.As(err, &denial) {
		t.Fatalf("expected duplicate denial after key conflict, got %v", err)
	}
	if denial.PreviousScore != 50 {
		t.Fatalf("previous score %d, want 50", denial.PreviousScore)
	}
}

func TestSubmitQuizUnknownQuestion(t *testing.T) {
	f := newQuizFixture(t, 10, 1)
	req := guestSubmission(f, 10)
	rogue := uuid.New()
	req.Answers[4].QuestionID = rogue

	_, err := f.svc.SubmitQuiz(context.Background(), istConfig(t), req)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 apierr, got %v", err)
	}
	want := fmt.Sprintf("Question %s not found", rogue)
	if apiErr.Error() != want {
		t.Fatalf("message %q, want %q", apiErr.Error(), want)
	}
}

func TestGetHistoryPopulatesQuestions(t *testing.T) {
	f := newQuizFixture(t, 10, 1)
	userID := uuid.New()
	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: userID,
	})
	req := guestSubmission(f, 8)
	req.GuestData = nil

	if _, err := f.svc.SubmitQuiz(ctx, istConfig(t), req); err != nil {
		t.Fatalf("SubmitQuiz error: %v", err)
	}

	history, err := f.svc.GetHistory(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetHistory error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d history entries, want 1", len(history))
	}
	for _, detail := range history[0].AnswerDetails {
		if detail.Question == nil {
			t.Fatalf("history answer missing question")
		}
	}
}
