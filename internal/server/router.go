package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/expoverse/expoverse-backend/internal/handlers"
	"github.com/expoverse/expoverse-backend/internal/middleware"
	"github.com/expoverse/expoverse-backend/internal/platform/envutil"
)

type RouterConfig struct {
	ServiceName            string
	AuthHandler            *handlers.AuthHandler
	QuizHandler            *handlers.QuizHandler
	QuestionHandler        *handlers.QuestionHandler
	QuizConfigHandler      *handlers.QuizConfigHandler
	AuthMiddleware         *middleware.AuthMiddleware
	AvailabilityMiddleware *middleware.AvailabilityMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	// Cors
	origins := strings.Split(envutil.Str("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.POST("/auth/login", cfg.AuthHandler.Login)

	quiz := api.Group("/quiz")
	{
		// Play endpoints: open to guests, gated on the active config's window.
		play := quiz.Group("/")
		play.Use(cfg.AuthMiddleware.OptionalAuth())
		play.Use(cfg.AvailabilityMiddleware.RequireOpenQuiz())
		play.GET("/questions", cfg.QuizHandler.GetQuestions)
		play.POST("/submit", cfg.QuizHandler.Submit)

		quiz.GET("/leaderboard", cfg.QuizHandler.GetLeaderboard)
	}

	configs := api.Group("/quiz-config")
	configs.GET("/active", cfg.QuizConfigHandler.GetActive)

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.GET("/quiz/history", cfg.QuizHandler.GetHistory)

	admin := protected.Group("/")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	{
		admin.GET("/quiz/admin/questions", cfg.QuestionHandler.List)
		admin.POST("/quiz/questions", cfg.QuestionHandler.Create)
		admin.GET("/quiz/booth/:boothId/questions", cfg.QuestionHandler.ListByBooth)
		admin.PUT("/quiz/questions/:id", cfg.QuestionHandler.Update)
		admin.DELETE("/quiz/questions/:id", cfg.QuestionHandler.Delete)
		admin.GET("/quiz/attempts", cfg.QuizHandler.ListAttempts)

		admin.GET("/quiz-config", cfg.QuizConfigHandler.List)
		admin.POST("/quiz-config", cfg.QuizConfigHandler.Create)
		admin.PUT("/quiz-config/:id", cfg.QuizConfigHandler.Update)
		admin.DELETE("/quiz-config/:id", cfg.QuizConfigHandler.Delete)
	}

	return router
}
