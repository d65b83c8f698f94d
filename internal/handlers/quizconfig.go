package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/services"
	"github.com/expoverse/expoverse-backend/internal/types"
)

type QuizConfigHandler struct {
	log           *logger.Logger
	configService services.ConfigService
}

func NewQuizConfigHandler(log *logger.Logger, configService services.ConfigService) *QuizConfigHandler {
	return &QuizConfigHandler{
		log:           log.With("handler", "QuizConfigHandler"),
		configService: configService,
	}
}

// GET /api/quiz-config/active
func (h *QuizConfigHandler) GetActive(c *gin.Context) {
	cfg, err := h.configService.GetActive(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, cfg)
}

// GET /api/quiz-config
func (h *QuizConfigHandler) List(c *gin.Context) {
	configs, err := h.configService.List(c.Request.Context())
	if err != nil {
		h.log.Warn("config listing failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOKCount(c, configs, len(configs))
}

// POST /api/quiz-config
func (h *QuizConfigHandler) Create(c *gin.Context) {
	var cfg types.QuizConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid config payload", nil)
		return
	}
	created, err := h.configService.Create(c.Request.Context(), &cfg)
	if err != nil {
		h.log.Warn("config create failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, created)
}

// PUT /api/quiz-config/:id
func (h *QuizConfigHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid config id", nil)
		return
	}

	var cfg types.QuizConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid config payload", nil)
		return
	}
	updated, err := h.configService.Update(c.Request.Context(), id, &cfg)
	if err != nil {
		h.log.Warn("config update failed", "config_id", id.String(), "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, updated)
}

// DELETE /api/quiz-config/:id
func (h *QuizConfigHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid config id", nil)
		return
	}

	if err := h.configService.Delete(c.Request.Context(), id); err != nil {
		h.log.Warn("config delete failed", "config_id", id.String(), "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}
