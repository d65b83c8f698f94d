package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/expoverse/expoverse-backend/internal/db"
	"github.com/expoverse/expoverse-backend/internal/platform/envutil"
	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/types"
)

// Seeds a local database: an admin account, sample booths with three questions
// each, and an active quiz config covering the next 30 days.
func main() {
	log, err := logger.New(envutil.Str("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	if err := seedAdmin(thePG, log); err != nil {
		log.Error("Admin seeding failed", "error", err)
		os.Exit(1)
	}
	if err := seedBoothsAndQuestions(thePG, log); err != nil {
		log.Error("Booth seeding failed", "error", err)
		os.Exit(1)
	}
	if err := seedConfig(thePG, log); err != nil {
		log.Error("Config seeding failed", "error", err)
		os.Exit(1)
	}
	log.Info("Seeding complete")
}

func seedAdmin(db *gorm.DB, log *logger.Logger) error {
	email := envutil.Str("ADMIN_EMAIL", "admin@expoverse.local")
	password := envutil.Str("ADMIN_PASSWORD", "changeme")

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var existing types.User
	err = db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		existing.Password = string(hashed)
		existing.Role = types.RoleAdmin
		if err := db.Save(&existing).Error; err != nil {
			return err
		}
		log.Info("Admin password and role updated", "email", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := types.User{
		Name:     "Admin User",
		Email:    email,
		Password: string(hashed),
		Role:     types.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info("Admin user created", "email", email)
	return nil
}

type sampleBooth struct {
	Name        string
	Title       string
	Description string
	Tag         string
}

var sampleBooths = []sampleBooth{
	{"TechCorp Solutions", "Innovation in Technology", "Pioneers in AI, machine learning and cloud computing.", "Technology"},
	{"GreenEarth Initiatives", "Sustainable Living Solutions", "Environmental sustainability and eco-friendly products.", "Environment"},
	{"HealthPlus Medical", "Advanced Healthcare Technology", "Telemedicine, digital health records and AI diagnostics.", "Healthcare"},
	{"EduLearn Platform", "Digital Education Revolution", "Interactive online courses and virtual classrooms.", "Education"},
	{"FinanceWise Solutions", "Smart Financial Management", "Fintech platforms and financial advisory services.", "Finance"},
	{"FoodHub Innovations", "Future of Food Technology", "Food delivery, restaurant management and sustainable farming.", "Food & Beverage"},
	{"TravelEase Services", "Smart Travel Solutions", "Travel planning, booking and destination management.", "Travel & Tourism"},
	{"RetailPro Systems", "Modern Retail Management", "POS systems, inventory management and customer engagement.", "Retail"},
	{"AutoDrive Technologies", "Automotive Innovation", "Electric vehicles and autonomous driving systems.", "Automotive"},
	{"MediaStream Studios", "Digital Media Production", "Video production, live streaming and content distribution.", "Media & Entertainment"},
}

func seedBoothsAndQuestions(db *gorm.DB, log *logger.Logger) error {
	var count int64
	if err := db.Model(&types.Booth{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Booths already present, skipping sample data", "count", count)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i, sample := range sampleBooths {
			booth := types.Booth{
				Name:        sample.Name,
				Title:       sample.Title,
				Description: sample.Description,
				IsPublished: true,
				Order:       i,
			}
			if err := tx.Create(&booth).Error; err != nil {
				return err
			}
			for _, question := range questionsForBooth(&booth, sample.Tag) {
				if err := tx.Create(question).Error; err != nil {
					return err
				}
			}
		}
		log.Info("Sample booths and questions created", "booths", len(sampleBooths))
		return nil
	})
}

func questionsForBooth(booth *types.Booth, tag string) []*types.Question {
	return []*types.Question{
		{
			BoothID:  booth.ID,
			Question: fmt.Sprintf("What is the main focus of %s?", booth.Name),
			Options: []types.QuestionOption{
				{Text: tag, IsCorrect: true},
				{Text: "Manufacturing"},
				{Text: "Agriculture"},
				{Text: "Construction"},
			},
			Difficulty:  types.DifficultyEasy,
			Explanation: fmt.Sprintf("%s specializes in %s solutions.", booth.Name, tag),
		},
		{
			BoothID:  booth.ID,
			Question: fmt.Sprintf("Which service does %s provide?", booth.Name),
			Options: []types.QuestionOption{
				{Text: "Digital Solutions", IsCorrect: true},
				{Text: "Physical Products Only"},
				{Text: "Traditional Services"},
				{Text: "None of the above"},
			},
			Difficulty:  types.DifficultyMedium,
			Explanation: fmt.Sprintf("%s provides innovative digital solutions in their field.", booth.Name),
		},
		{
			BoothID:  booth.ID,
			Question: fmt.Sprintf("What makes %s stand out in the industry?", booth.Name),
			Options: []types.QuestionOption{
				{Text: "Innovation and Technology", IsCorrect: true},
				{Text: "Low Prices"},
				{Text: "Large Office Space"},
				{Text: "Traditional Methods"},
			},
			Difficulty:  types.DifficultyHard,
			Explanation: fmt.Sprintf("%s stands out through their innovative approach.", booth.Name),
		},
	}
}

func seedConfig(db *gorm.DB, log *logger.Logger) error {
	var count int64
	if err := db.Model(&types.QuizConfig{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Active quiz config already present, skipping")
		return nil
	}

	now := time.Now()
	cfg := types.QuizConfig{
		StartDate:   now,
		EndDate:     now.AddDate(0, 0, 30),
		IsActive:    true,
		Description: "Seeded default quiz window",
	}
	if err := db.Create(&cfg).Error; err != nil {
		return err
	}
	log.Info("Active quiz config created", "config_id", cfg.ID.String())
	return nil
}
