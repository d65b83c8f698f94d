package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/services"
)

// QuizConfigKey is where the availability gate stores the resolved active
// config for downstream handlers.
const QuizConfigKey = "quizConfig"

type AvailabilityMiddleware struct {
	log          *logger.Logger
	availability services.AvailabilityService
}

func NewAvailabilityMiddleware(log *logger.Logger, availability services.AvailabilityService) *AvailabilityMiddleware {
	middlewareLogger := log.With("Middleware", "AvailabilityMiddleware")
	return &AvailabilityMiddleware{log: middlewareLogger, availability: availability}
}

// RequireOpenQuiz gates play endpoints on the active config's date range and
// daily time window. Both questions and submit re-validate independently, so a
// window closing mid-quiz blocks the submission.
func (m *AvailabilityMiddleware) RequireOpenQuiz() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, denial, err := m.availability.CheckAvailability(c.Request.Context())
		if err != nil {
			m.log.Error("availability check failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to check quiz availability",
			})
			return
		}
		if denial != nil {
			payload := gin.H{
				"success": false,
				"message": denial.Message,
			}
			if denial.StartsAt != nil {
				payload["startsAt"] = denial.StartsAt
			}
			if denial.EndedAt != nil {
				payload["endedAt"] = denial.EndedAt
			}
			if denial.AvailableAt != nil {
				payload["availableAt"] = denial.AvailableAt
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, payload)
			return
		}
		c.Set(QuizConfigKey, cfg)
		c.Next()
	}
}
