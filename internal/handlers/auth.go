package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		log:         log.With("handler", "AuthHandler"),
		authService: authService,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	token, user, err := h.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Warn("login failed", "email", req.Email, "error", err)
		RespondServiceError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}
