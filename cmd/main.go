package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/expoverse/expoverse-backend/internal/clients/redis"
	"github.com/expoverse/expoverse-backend/internal/db"
	"github.com/expoverse/expoverse-backend/internal/handlers"
	"github.com/expoverse/expoverse-backend/internal/middleware"
	"github.com/expoverse/expoverse-backend/internal/observability"
	"github.com/expoverse/expoverse-backend/internal/platform/envutil"
	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/repos"
	"github.com/expoverse/expoverse-backend/internal/server"
	"github.com/expoverse/expoverse-backend/internal/services"
)

func main() {
	// Logger
	logMode := envutil.Str("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	serviceName := envutil.Str("SERVICE_NAME", "expoverse-backend")
	jwtSecretKey := envutil.Str("JWT_SECRET_KEY", "defaultsecret")
	accessTokenTTL := envutil.Int("ACCESS_TOKEN_TTL", 3600)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: envutil.Str("ENVIRONMENT", "development"),
		Version:     envutil.Str("SERVICE_VERSION", "dev"),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Redis (optional leaderboard cache)
	leaderboardCache, err := redis.NewLeaderboardCache(log)
	if err != nil {
		log.Warn("Redis init failed, leaderboard served without cache", "error", err)
		leaderboardCache = nil
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	guestUserRepo := repos.NewGuestUserRepo(thePG, log)
	boothRepo := repos.NewBoothRepo(thePG, log)
	questionRepo := repos.NewQuestionRepo(thePG, log)
	quizConfigRepo := repos.NewQuizConfigRepo(thePG, log)
	quizAttemptRepo := repos.NewQuizAttemptRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	availabilityService := services.NewAvailabilityService(thePG, log, quizConfigRepo)
	ledgerService := services.NewLedgerService(thePG, log, quizAttemptRepo)
	leaderboardService := services.NewLeaderboardService(thePG, log, quizConfigRepo, quizAttemptRepo, leaderboardCache)
	quizService := services.NewQuizService(thePG, log, boothRepo, questionRepo, guestUserRepo, quizAttemptRepo, ledgerService, leaderboardService)
	questionService := services.NewQuestionService(thePG, log, boothRepo, questionRepo)
	configService := services.NewConfigService(thePG, log, quizConfigRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	quizHandler := handlers.NewQuizHandler(log, quizService, leaderboardService, quizAttemptRepo)
	questionHandler := handlers.NewQuestionHandler(log, questionService)
	quizConfigHandler := handlers.NewQuizConfigHandler(log, configService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	availabilityMiddleware := middleware.NewAvailabilityMiddleware(log, availabilityService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:            serviceName,
		AuthHandler:            authHandler,
		QuizHandler:            quizHandler,
		QuestionHandler:        questionHandler,
		QuizConfigHandler:      quizConfigHandler,
		AuthMiddleware:         authMiddleware,
		AvailabilityMiddleware: availabilityMiddleware,
	})

	port := envutil.Str("PORT", "8080")
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
