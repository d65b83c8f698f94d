package types

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

// GuestUser is an unauthenticated quiz participant identified by mobile
// number. One row per mobile; re-used across attempts on different days.
type GuestUser struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name            string     `gorm:"not null;column:name" json:"name"`
	Age             int        `gorm:"not null;column:age" json:"age"`
	Mobile          string     `gorm:"uniqueIndex;not null;size:10;column:mobile" json:"mobile"`
	Place           string     `gorm:"not null;column:place" json:"place"`
	TotalAttempts   int        `gorm:"not null;default:0;column:total_attempts" json:"total_attempts"`
	LastAttemptDate *time.Time `gorm:"column:last_attempt_date" json:"last_attempt_date,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (GuestUser) TableName() string {
	return "guest_user"
}

func (g *GuestUser) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("guest name is required")
	}
	if g.Age < 1 || g.Age > 150 {
		return errors.New("guest age must be between 1 and 150")
	}
	if !mobilePattern.MatchString(g.Mobile) {
		return errors.New("guest mobile must be a 10-digit number")
	}
	if strings.TrimSpace(g.Place) == "" {
		return errors.New("guest place is required")
	}
	return nil
}

func (g *GuestUser) BeforeSave(tx *gorm.DB) error {
	return g.Validate()
}
