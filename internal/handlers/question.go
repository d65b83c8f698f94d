package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/services"
	"github.com/expoverse/expoverse-backend/internal/types"
)

type QuestionHandler struct {
	log             *logger.Logger
	questionService services.QuestionService
}

func NewQuestionHandler(log *logger.Logger, questionService services.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		log:             log.With("handler", "QuestionHandler"),
		questionService: questionService,
	}
}

// POST /api/quiz/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	var question types.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid question payload", nil)
		return
	}

	created, err := h.questionService.Create(c.Request.Context(), &question)
	if err != nil {
		h.log.Warn("question create failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, created)
}

// GET /api/quiz/admin/questions?boothId=
func (h *QuestionHandler) List(c *gin.Context) {
	var boothID *uuid.UUID
	if raw := c.Query("boothId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "Invalid booth id", nil)
			return
		}
		boothID = &id
	}

	questions, err := h.questionService.List(c.Request.Context(), boothID)
	if err != nil {
		h.log.Warn("question listing failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOKCount(c, questions, len(questions))
}

// GET /api/quiz/booth/:boothId/questions
func (h *QuestionHandler) ListByBooth(c *gin.Context) {
	id, err := uuid.Parse(c.Param("boothId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid booth id", nil)
		return
	}

	questions, err := h.questionService.List(c.Request.Context(), &id)
	if err != nil {
		h.log.Warn("booth question listing failed", "booth_id", id.String(), "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOKCount(c, questions, len(questions))
}

// PUT /api/quiz/questions/:id
func (h *QuestionHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid question id", nil)
		return
	}

	var question types.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid question payload", nil)
		return
	}

	updated, err := h.questionService.Update(c.Request.Context(), id, &question)
	if err != nil {
		h.log.Warn("question update failed", "question_id", id.String(), "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, updated)
}

// DELETE /api/quiz/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid question id", nil)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		h.log.Warn("question delete failed", "question_id", id.String(), "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}
