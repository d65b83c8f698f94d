package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/expoverse/expoverse-backend/internal/platform/envutil"
	"github.com/expoverse/expoverse-backend/internal/platform/logger"
	"github.com/expoverse/expoverse-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := envutil.Str("POSTGRES_HOST", "localhost")
	postgresPort := envutil.Str("POSTGRES_PORT", "5432")
	postgresUser := envutil.Str("POSTGRES_USER", "postgres")
	postgresPassword := envutil.Str("POSTGRES_PASSWORD", "")
	postgresName := envutil.Str("POSTGRES_NAME", "expoverse")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	// TranslateError surfaces unique violations as gorm.ErrDuplicatedKey, which
	// the quiz service relies on for the one-attempt-per-day guarantee.
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.GuestUser{},
		&types.Booth{},
		&types.Question{},
		&types.QuizConfig{},
		&types.QuizAttempt{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	fks := []struct {
		model interface{}
		name  string
		stmt  string
	}{
		{&types.Question{}, "fk_question_booth_id", `
			ALTER TABLE "question"
			ADD CONSTRAINT "fk_question_booth_id"
			FOREIGN KEY ("booth_id") REFERENCES "booth"("id")
			ON DELETE CASCADE`},
		{&types.QuizAttempt{}, "fk_quiz_attempt_user_id", `
			ALTER TABLE "quiz_attempt"
			ADD CONSTRAINT "fk_quiz_attempt_user_id"
			FOREIGN KEY ("user_id") REFERENCES "user"("id")
			ON DELETE CASCADE`},
		{&types.QuizAttempt{}, "fk_quiz_attempt_guest_user_id", `
			ALTER TABLE "quiz_attempt"
			ADD CONSTRAINT "fk_quiz_attempt_guest_user_id"
			FOREIGN KEY ("guest_user_id") REFERENCES "guest_user"("id")
			ON DELETE CASCADE`},
	}
	for _, fk := range fks {
		if s.db.Migrator().HasConstraint(fk.model, fk.name) {
			continue
		}
		if err := s.db.Exec(fk.stmt).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", fk.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
