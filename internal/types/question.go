package types

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const DefaultQuestionPoints = 10

type QuestionOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type Question struct {
	ID          uuid.UUID                           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoothID     uuid.UUID                           `gorm:"type:uuid;not null;index;column:booth_id" json:"booth_id"`
	Booth       *Booth                              `gorm:"constraint:OnDelete:CASCADE;foreignKey:BoothID;references:ID" json:"booth,omitempty"`
	Question    string                              `gorm:"type:text;not null;column:question" json:"question"`
	Options     datatypes.JSONSlice[QuestionOption] `gorm:"type:jsonb;not null;column:options" json:"options"`
	Explanation string                              `gorm:"type:text;column:explanation" json:"explanation"`
	Difficulty  string                              `gorm:"not null;default:'medium';column:difficulty" json:"difficulty"`
	Points      int                                 `gorm:"not null;default:10;column:points" json:"points"`
	IsActive    bool                                `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt   time.Time                           `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time                           `gorm:"not null;default:now()" json:"updated_at"`
}

func (Question) TableName() string {
	return "question"
}

// Validate enforces the option invariants: exactly 4 options with exactly one
// marked correct.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("question text is required")
	}
	if len(q.Options) != 4 {
		return errors.New("each question must have exactly 4 options")
	}
	correct := 0
	for _, opt := range q.Options {
		if strings.TrimSpace(opt.Text) == "" {
			return errors.New("question options must not be empty")
		}
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return errors.New("each question must have exactly one correct answer")
	}
	switch q.Difficulty {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return errors.New("difficulty must be one of easy, medium, hard")
	}
	return nil
}

func (q *Question) BeforeSave(tx *gorm.DB) error {
	if q.Difficulty == "" {
		q.Difficulty = DifficultyMedium
	}
	if q.Points == 0 {
		q.Points = DefaultQuestionPoints
	}
	return q.Validate()
}

// CorrectOption returns the index of the correct option, or -1 when the
// invariant is violated.
func (q *Question) CorrectOption() int {
	for i, opt := range q.Options {
		if opt.IsCorrect {
			return i
		}
	}
	return -1
}
