package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultTimezone       = "Asia/Kolkata"
	DefaultDailyStartTime = "08:00"
	DefaultDailyEndTime   = "21:00"
	DefaultTopCount       = 10
)

var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// QuizConfig governs when the daily quiz is open. At most one config is
// active; activating one deactivates the rest inside the same transaction.
type QuizConfig struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StartDate      time.Time `gorm:"not null;column:start_date" json:"start_date"`
	EndDate        time.Time `gorm:"not null;column:end_date" json:"end_date"`
	DailyStartTime string    `gorm:"not null;default:'08:00';size:5;column:daily_start_time" json:"daily_start_time"`
	DailyEndTime   string    `gorm:"not null;default:'21:00';size:5;column:daily_end_time" json:"daily_end_time"`
	TopCount       int       `gorm:"not null;default:10;column:top_count" json:"top_count"`
	IsActive       bool      `gorm:"not null;default:true;index;column:is_active" json:"is_active"`
	Timezone       string    `gorm:"not null;default:'Asia/Kolkata';column:timezone" json:"timezone"`
	Description    string    `gorm:"type:text;column:description" json:"description"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuizConfig) TableName() string {
	return "quiz_config"
}

func (c *QuizConfig) Validate() error {
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return errors.New("start date and end date are required")
	}
	if !c.EndDate.After(c.StartDate) {
		return errors.New("end date must be after start date")
	}
	sh, sm, err := ParseClock(c.DailyStartTime)
	if err != nil {
		return fmt.Errorf("daily start time: %w", err)
	}
	eh, em, err := ParseClock(c.DailyEndTime)
	if err != nil {
		return fmt.Errorf("daily end time: %w", err)
	}
	if eh < sh || (eh == sh && em <= sm) {
		return errors.New("daily end time must be after daily start time")
	}
	if c.TopCount < 1 {
		return errors.New("top count must be at least 1")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	return nil
}

func (c *QuizConfig) BeforeSave(tx *gorm.DB) error {
	if c.DailyStartTime == "" {
		c.DailyStartTime = DefaultDailyStartTime
	}
	if c.DailyEndTime == "" {
		c.DailyEndTime = DefaultDailyEndTime
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.TopCount == 0 {
		c.TopCount = DefaultTopCount
	}
	return c.Validate()
}

// Location resolves the config timezone. Validation guarantees it loads.
func (c *QuizConfig) Location() (*time.Location, error) {
	tz := c.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	return time.LoadLocation(tz)
}

// ParseClock parses an "HH:MM" wall-clock string.
func ParseClock(s string) (hour, min int, err error) {
	if !clockPattern.MatchString(s) {
		return 0, 0, fmt.Errorf("%q is not a valid HH:MM time", s)
	}
	hour, _ = strconv.Atoi(s[:len(s)-3])
	min, _ = strconv.Atoi(s[len(s)-2:])
	return hour, min, nil
}
