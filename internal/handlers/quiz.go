package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/expoverse/expoverse-backend/internal/middleware"
	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/repos"
	"github.com/expoverse/expoverse-backend/internal/requestdata"
	"github.com/expoverse/expoverse-backend/internal/services"
	"github.com/expoverse/expoverse-backend/internal/types"
)

type QuizHandler struct {
	log            *logger.Logger
	quizService    services.QuizService
	leaderboardSvc services.LeaderboardService
	attemptRepo    repos.QuizAttemptRepo
}

func NewQuizHandler(
	log *logger.Logger,
	quizService services.QuizService,
	leaderboardSvc services.LeaderboardService,
	attemptRepo repos.QuizAttemptRepo,
) *QuizHandler {
	return &QuizHandler{
		log:            log.With("handler", "QuizHandler"),
		quizService:    quizService,
		leaderboardSvc: leaderboardSvc,
		attemptRepo:    attemptRepo,
	}
}

// GET /api/quiz/questions
// Runs behind the availability gate; one sanitized question per booth.
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	questions, err := h.quizService.GetQuizQuestions(c.Request.Context())
	if err != nil {
		h.log.Warn("quiz question selection failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOKCount(c, questions, len(questions))
}

// POST /api/quiz/submit
// Runs behind the availability gate, which stashes the active config.
func (h *QuizHandler) Submit(c *gin.Context) {
	cfgValue, exists := c.Get(middleware.QuizConfigKey)
	cfg, ok := cfgValue.(*types.QuizConfig)
	if !exists || !ok {
		h.log.Error("active config missing from gated request")
		RespondError(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	var req services.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid quiz submission. 10 answers required", nil)
		return
	}

	result, err := h.quizService.SubmitQuiz(c.Request.Context(), cfg, &req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/quiz/leaderboard?date=YYYY-MM-DD
func (h *QuizHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.leaderboardSvc.GetLeaderboard(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.log.Warn("leaderboard lookup failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOKCount(c, entries, len(entries))
}

// GET /api/quiz/history
func (h *QuizHandler) GetHistory(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	attempts, err := h.quizService.GetHistory(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Warn("history lookup failed", "user_id", rd.UserID.String(), "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOKCount(c, attempts, len(attempts))
}

// GET /api/quiz/attempts
// Admin listing with filters, pagination and aggregate stats.
func (h *QuizHandler) ListAttempts(c *gin.Context) {
	filter, err := parseAttemptFilter(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	attempts, total, err := h.attemptRepo.List(c.Request.Context(), nil, filter)
	if err != nil {
		h.log.Warn("attempt listing failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	stats, err := h.attemptRepo.Stats(c.Request.Context(), nil, filter)
	if err != nil {
		h.log.Warn("attempt stats failed", "error", err)
		RespondServiceError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"attempts": attempts,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
		"stats":    stats,
	})
}

var errInvalidFilterDate = errors.New("Dates must be in YYYY-MM-DD format")

func parseAttemptFilter(c *gin.Context) (repos.AttemptFilter, error) {
	filter := repos.AttemptFilter{
		UserType: c.Query("userType"),
		Mobile:   c.Query("mobile"),
		Page:     1,
		Limit:    50,
	}
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if raw := c.Query("startDate"); raw != "" {
		start, err := time.Parse(types.AttemptDayLayout, raw)
		if err != nil {
			return filter, errInvalidFilterDate
		}
		filter.StartDate = &start
	}
	if raw := c.Query("endDate"); raw != "" {
		end, err := time.Parse(types.AttemptDayLayout, raw)
		if err != nil {
			return filter, errInvalidFilterDate
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}
	return filter, nil
}
