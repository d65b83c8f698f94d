package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	UserTypeRegistered = "registered"
	UserTypeGuest      = "guest"
)

// AttemptTotalQuestions is fixed per quiz instance; submissions with any other
// answer count are rejected before grading.
const AttemptTotalQuestions = 10

// AttemptDayLayout is the layout of the attempt_day bucket, computed in the
// active config's timezone at submission time. The (mobile, attempt_day)
// unique index makes the one-attempt-per-day rule hold under concurrent
// submissions, not just in the pre-check.
const AttemptDayLayout = "2006-01-02"

type AttemptAnswer struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption int       `json:"selected_option"`
	IsCorrect      bool      `json:"is_correct"`
	TimeTaken      int       `json:"time_taken"`
}

type QuizAttempt struct {
	ID             uuid.UUID                          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserType       string                             `gorm:"not null;index;column:user_type" json:"user_type"`
	UserID         *uuid.UUID                         `gorm:"type:uuid;index;column:user_id" json:"user_id,omitempty"`
	User           *User                              `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	GuestUserID    *uuid.UUID                         `gorm:"type:uuid;index;column:guest_user_id" json:"guest_user_id,omitempty"`
	GuestUser      *GuestUser                         `gorm:"constraint:OnDelete:CASCADE;foreignKey:GuestUserID;references:ID" json:"guest_user,omitempty"`
	Mobile         *string                            `gorm:"size:10;index:idx_attempt_mobile_day,unique;column:mobile" json:"mobile,omitempty"`
	AttemptDay     string                             `gorm:"not null;size:10;index:idx_attempt_mobile_day,unique;index:idx_attempt_leaderboard;column:attempt_day" json:"attempt_day"`
	Answers        datatypes.JSONSlice[AttemptAnswer] `gorm:"type:jsonb;not null;column:answers" json:"answers"`
	TotalQuestions int                                `gorm:"not null;default:10;column:total_questions" json:"total_questions"`
	CorrectAnswers int                                `gorm:"not null;default:0;column:correct_answers" json:"correct_answers"`
	Score          int                                `gorm:"not null;default:0;index:idx_attempt_leaderboard;column:score" json:"score"`
	TotalTime      int                                `gorm:"not null;index:idx_attempt_leaderboard;column:total_time" json:"total_time"`
	Percentage     float64                            `gorm:"not null;default:0;column:percentage" json:"percentage"`
	AttemptDate    time.Time                          `gorm:"not null;index;column:attempt_date" json:"attempt_date"`
	CreatedAt      time.Time                          `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time                          `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempt"
}

// Validate enforces the tagged-union identity invariant: exactly one of
// user/guest is set, matching the user_type discriminator.
func (a *QuizAttempt) Validate() error {
	switch a.UserType {
	case UserTypeRegistered:
		if a.UserID == nil {
			return errors.New("registered attempt requires user_id")
		}
		if a.GuestUserID != nil || a.Mobile != nil {
			return errors.New("registered attempt must not carry guest identity")
		}
	case UserTypeGuest:
		if a.GuestUserID == nil {
			return errors.New("guest attempt requires guest_user_id")
		}
		if a.UserID != nil {
			return errors.New("guest attempt must not carry a user_id")
		}
		if a.Mobile == nil || !mobilePattern.MatchString(*a.Mobile) {
			return errors.New("guest attempt requires a 10-digit mobile")
		}
	default:
		return errors.New("user_type must be registered or guest")
	}
	if a.TotalQuestions != AttemptTotalQuestions {
		return errors.New("attempt must cover exactly 10 questions")
	}
	if len(a.Answers) != a.TotalQuestions {
		return errors.New("answer count must match total questions")
	}
	if a.AttemptDay == "" {
		return errors.New("attempt day bucket is required")
	}
	return nil
}

func (a *QuizAttempt) BeforeSave(tx *gorm.DB) error {
	if err := a.Validate(); err != nil {
		return err
	}
	// Percentage is derived state, recomputed on every save.
	a.Percentage = float64(a.CorrectAnswers) / float64(a.TotalQuestions) * 100
	return nil
}
