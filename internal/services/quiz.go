package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expoverse/expoverse-backend/internal/platform/apierr"
	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/repos"
	"github.com/expoverse/expoverse-backend/internal/requestdata"
	"github.com/expoverse/expoverse-backend/internal/types"
)

// MaxQuizQuestions caps a quiz instance. With more than this many published
// booths, only the first 10 after shuffling are surfaced.
const MaxQuizQuestions = 10

// QuizOption is a sanitized option: the answer key never leaves the server.
type QuizOption struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type QuizQuestion struct {
	ID        uuid.UUID    `json:"id"`
	BoothID   uuid.UUID    `json:"booth_id"`
	BoothName string       `json:"booth_name"`
	Question  string       `json:"question"`
	Options   []QuizOption `json:"options"`
	Points    int          `json:"points"`
}

type SubmitAnswer struct {
	QuestionID     uuid.UUID `json:"question_id" binding:"required"`
	SelectedOption int       `json:"selected_option"`
	TimeTaken      int       `json:"time_taken"`
}

type GuestData struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Mobile string `json:"mobile"`
	Place  string `json:"place"`
}

type SubmitQuizRequest struct {
	Answers   []SubmitAnswer `json:"answers"`
	TotalTime int            `json:"total_time"`
	GuestData *GuestData     `json:"guest_data,omitempty"`
}

// AnswerDetail is an attempt answer with its question populated for display.
type AnswerDetail struct {
	Question       *types.Question `json:"question"`
	SelectedOption int             `json:"selected_option"`
	IsCorrect      bool            `json:"is_correct"`
	TimeTaken      int             `json:"time_taken"`
}

type GradedAttempt struct {
	*types.QuizAttempt
	AnswerDetails []AnswerDetail `json:"answer_details"`
}

type QuizService interface {
	// GetQuizQuestions builds a quiz instance: one random active question per
	// published booth, sanitized, shuffled, capped at MaxQuizQuestions.
	GetQuizQuestions(ctx context.Context) ([]*QuizQuestion, error)
	// SubmitQuiz grades and persists one attempt. cfg is the availability-gated
	// active config. Returns *DuplicateAttemptError for same-day guest repeats.
	SubmitQuiz(ctx context.Context, cfg *types.QuizConfig, req *SubmitQuizRequest) (*GradedAttempt, error)
	// GetHistory lists a registered participant's attempts, newest first.
	GetHistory(ctx context.Context, userID uuid.UUID) ([]*GradedAttempt, error)
}

type quizService struct {
	db           *gorm.DB
	log          *logger.Logger
	boothRepo    repos.BoothRepo
	questionRepo repos.QuestionRepo
	guestRepo    repos.GuestUserRepo
	attemptRepo  repos.QuizAttemptRepo
	ledger       LedgerService
	leaderboard  LeaderboardService
	now          func() time.Time
	randIntn     func(n int) int
	randShuffle  func(n int, swap func(i, j int))
}

func NewQuizService(
	db *gorm.DB,
	log *logger.Logger,
	boothRepo repos.BoothRepo,
	questionRepo repos.QuestionRepo,
	guestRepo repos.GuestUserRepo,
	attemptRepo repos.QuizAttemptRepo,
	ledger LedgerService,
	leaderboard LeaderboardService,
) QuizService {
	return &quizService{
		db:           db,
		log:          log.With("service", "QuizService"),
		boothRepo:    boothRepo,
		questionRepo: questionRepo,
		guestRepo:    guestRepo,
		attemptRepo:  attemptRepo,
		ledger:       ledger,
		leaderboard:  leaderboard,
		now:          time.Now,
		randIntn:     rand.Intn,
		randShuffle:  rand.Shuffle,
	}
}

func (s *quizService) GetQuizQuestions(ctx context.Context) ([]*QuizQuestion, error) {
	booths, err := s.boothRepo.GetPublished(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(booths) == 0 {
		return nil, apierr.New(http.StatusBadRequest, "no_booths",
			errors.New("No published booths available for quiz"))
	}

	boothNames := make(map[uuid.UUID]string, len(booths))
	boothIDs := make([]uuid.UUID, 0, len(booths))
	for _, booth := range booths {
		boothNames[booth.ID] = booth.Name
		boothIDs = append(boothIDs, booth.ID)
	}

	active, err := s.questionRepo.GetActiveByBoothIDs(ctx, nil, boothIDs)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, apierr.New(http.StatusBadRequest, "no_questions",
			errors.New("No active questions available for quiz"))
	}

	byBooth := make(map[uuid.UUID][]*types.Question)
	for _, q := range active {
		byBooth[q.BoothID] = append(byBooth[q.BoothID], q)
	}

	// One uniform-random pick per booth. Iterate booths (not the map) so the
	// pre-shuffle order is deterministic for a given booth ordering.
	questions := make([]*QuizQuestion, 0, len(byBooth))
	for _, boothID := range boothIDs {
		pool := byBooth[boothID]
		if len(pool) == 0 {
			continue
		}
		picked := pool[s.randIntn(len(pool))]
		questions = append(questions, sanitizeQuestion(picked, boothNames[picked.BoothID]))
	}

	s.randShuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	if len(questions) > MaxQuizQuestions {
		questions = questions[:MaxQuizQuestions]
	}
	return questions, nil
}

func sanitizeQuestion(q *types.Question, boothName string) *QuizQuestion {
	opts := make([]QuizOption, 0, len(q.Options))
	for i, opt := range q.Options {
		opts = append(opts, QuizOption{Index: i, Text: opt.Text})
	}
	return &QuizQuestion{
		ID:        q.ID,
		BoothID:   q.BoothID,
		BoothName: boothName,
		Question:  q.Question,
		Options:   opts,
		Points:    q.Points,
	}
}

func (s *quizService) SubmitQuiz(ctx context.Context, cfg *types.QuizConfig, req *SubmitQuizRequest) (*GradedAttempt, error) {
	if req == nil || len(req.Answers) != types.AttemptTotalQuestions {
		return nil, apierr.New(http.StatusBadRequest, "bad_answer_count",
			errors.New("Invalid quiz submission. 10 answers required"))
	}

	userType, userID, guest, err := s.resolveParticipant(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	day, err := DayBucket(cfg, now)
	if err != nil {
		return nil, err
	}

	// Guest pre-check. The unique index below still backstops the race where
	// two submissions pass this concurrently.
	if userType == types.UserTypeGuest {
		denial, err := s.ledger.CheckDailyAttempt(ctx, cfg, guest.Mobile)
		if err != nil {
			return nil, err
		}
		if denial != nil {
			return nil, denial
		}
	}

	questionsByID, err := s.loadQuestions(ctx, req.Answers)
	if err != nil {
		return nil, err
	}

	correctCount := 0
	totalScore := 0
	processed := make([]types.AttemptAnswer, 0, len(req.Answers))
	details := make([]AnswerDetail, 0, len(req.Answers))
	for _, answer := range req.Answers {
		question := questionsByID[answer.QuestionID]
		isCorrect := false
		// Out-of-range or missing selection grades as incorrect, not an error.
		if answer.SelectedOption >= 0 && answer.SelectedOption < len(question.Options) {
			isCorrect = question.Options[answer.SelectedOption].IsCorrect
		}
		if isCorrect {
			correctCount++
			totalScore += question.Points
		}
		processed = append(processed, types.AttemptAnswer{
			QuestionID:     answer.QuestionID,
			SelectedOption: answer.SelectedOption,
			IsCorrect:      isCorrect,
			TimeTaken:      answer.TimeTaken,
		})
		details = append(details, AnswerDetail{
			Question:       question,
			SelectedOption: answer.SelectedOption,
			IsCorrect:      isCorrect,
			TimeTaken:      answer.TimeTaken,
		})
	}

	attempt := &types.QuizAttempt{
		UserType:       userType,
		UserID:         userID,
		Answers:        processed,
		TotalQuestions: types.AttemptTotalQuestions,
		CorrectAnswers: correctCount,
		Score:          totalScore,
		TotalTime:      req.TotalTime,
		AttemptDay:     day,
		AttemptDate:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if userType == types.UserTypeGuest {
			guestUser, err := s.upsertGuest(ctx, tx, guest, now)
			if err != nil {
				return err
			}
			attempt.GuestUserID = &guestUser.ID
			attempt.Mobile = &guestUser.Mobile
		}
		_, err := s.attemptRepo.Create(ctx, tx, attempt)
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) && guest != nil {
		// Lost the race against a concurrent same-day submission; surface the
		// committed attempt as the previous result.
		previous, prevErr := s.attemptRepo.GetByMobileAndDay(ctx, nil, guest.Mobile, day)
		if prevErr != nil {
			return nil, prevErr
		}
		return nil, mustDuplicateDenial(cfg, previous, now)
	}
	if err != nil {
		return nil, err
	}

	if s.leaderboard != nil {
		s.leaderboard.InvalidateDay(ctx, day)
	}

	s.log.Info("quiz attempt recorded",
		"user_type", userType, "score", totalScore, "correct", correctCount, "day", day)
	return &GradedAttempt{QuizAttempt: attempt, AnswerDetails: details}, nil
}

func mustDuplicateDenial(cfg *types.QuizConfig, previous *types.QuizAttempt, now time.Time) error {
	denial, err := duplicateDenial(cfg, previous, now)
	if err != nil {
		return err
	}
	return denial
}

func (s *quizService) resolveParticipant(ctx context.Context, req *SubmitQuizRequest) (string, *uuid.UUID, *GuestData, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd != nil && rd.UserID != uuid.Nil {
		id := rd.UserID
		return types.UserTypeRegistered, &id, nil, nil
	}
	if req.GuestData != nil {
		g := req.GuestData
		if strings.TrimSpace(g.Name) == "" || g.Age == 0 ||
			strings.TrimSpace(g.Mobile) == "" || strings.TrimSpace(g.Place) == "" {
			return "", nil, nil, apierr.New(http.StatusBadRequest, "guest_data_incomplete",
				errors.New("Guest data incomplete. Name, age, mobile, and place are required"))
		}
		// Reject malformed guest fields here so they surface as a 400 instead
		// of failing inside the persistence transaction.
		candidate := types.GuestUser{Name: g.Name, Age: g.Age, Mobile: g.Mobile, Place: g.Place}
		if err := candidate.Validate(); err != nil {
			return "", nil, nil, apierr.New(http.StatusBadRequest, "invalid_guest_data", err)
		}
		return types.UserTypeGuest, nil, g, nil
	}
	return "", nil, nil, apierr.New(http.StatusBadRequest, "no_participant",
		errors.New("User authentication or guest data required"))
}

func (s *quizService) loadQuestions(ctx context.Context, answers []SubmitAnswer) (map[uuid.UUID]*types.Question, error) {
	ids := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	questions, err := s.questionRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	// Whole request is rejected on the first missing question; no partial
	// grading.
	for _, a := range answers {
		if _, ok := byID[a.QuestionID]; !ok {
			return nil, apierr.New(http.StatusNotFound, "question_not_found",
				fmt.Errorf("Question %s not found", a.QuestionID))
		}
	}
	return byID, nil
}

func (s *quizService) upsertGuest(ctx context.Context, tx *gorm.DB, guest *GuestData, now time.Time) (*types.GuestUser, error) {
	guestUser, err := s.guestRepo.GetByMobile(ctx, tx, guest.Mobile)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		guestUser, err = s.guestRepo.Create(ctx, tx, &types.GuestUser{
			Name:   guest.Name,
			Age:    guest.Age,
			Mobile: guest.Mobile,
			Place:  guest.Place,
		})
	}
	if err != nil {
		return nil, err
	}

	guestUser.TotalAttempts++
	guestUser.LastAttemptDate = &now
	return s.guestRepo.Update(ctx, tx, guestUser)
}

func (s *quizService) GetHistory(ctx context.Context, userID uuid.UUID) ([]*GradedAttempt, error) {
	attempts, err := s.attemptRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	idSet := make(map[uuid.UUID]struct{})
	for _, attempt := range attempts {
		for _, answer := range attempt.Answers {
			idSet[answer.QuestionID] = struct{}{}
		}
	}
	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	questions, err := s.questionRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	results := make([]*GradedAttempt, 0, len(attempts))
	for _, attempt := range attempts {
		details := make([]AnswerDetail, 0, len(attempt.Answers))
		for _, answer := range attempt.Answers {
			details = append(details, AnswerDetail{
				Question:       byID[answer.QuestionID],
				SelectedOption: answer.SelectedOption,
				IsCorrect:      answer.IsCorrect,
				TimeTaken:      answer.TimeTaken,
			})
		}
		results = append(results, &GradedAttempt{QuizAttempt: attempt, AnswerDetails: details})
	}
	return results, nil
}
