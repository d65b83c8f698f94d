package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/expoverse/expoverse-backend/internal/platform/apierr"
	"github.com/expoverse/expoverse-backend/internal/services"
)

func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func RespondOKCount(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
		"data":    data,
	})
}

func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

func RespondError(c *gin.Context, status int, message string, extra gin.H) {
	payload := gin.H{
		"success": false,
		"message": message,
	}
	for k, v := range extra {
		payload[k] = v
	}
	c.JSON(status, payload)
}

// RespondServiceError maps service-layer errors onto the response envelope.
// Unknown errors come back as an opaque 500; the handler logs the detail.
func RespondServiceError(c *gin.Context, err error) {
	var dup *services.DuplicateAttemptError
	if errors.As(err, &dup) {
		RespondError(c, http.StatusBadRequest, dup.Message, gin.H{
			"nextAttemptAt":   dup.NextAttemptAt,
			"previousScore":   dup.PreviousScore,
			"previousCorrect": dup.PreviousCorrect,
		})
		return
	}

	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		RespondError(c, apiErr.Status, apiErr.Error(), nil)
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		RespondError(c, http.StatusNotFound, "Resource not found", nil)
		return
	}
	if services.IsInvalidDate(err) {
		RespondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	RespondError(c, http.StatusInternalServerError, "Internal server error", nil)
}
