package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BoothResource struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// Booth is an exhibitor stall. The quiz subsystem only reads booths: published
// booths feed question selection. Booth management lives elsewhere.
type Booth struct {
	ID          uuid.UUID                          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string                             `gorm:"not null;column:name" json:"name"`
	Title       string                             `gorm:"not null;column:title" json:"title"`
	Description string                             `gorm:"type:text;column:description" json:"description"`
	Resources   datatypes.JSONSlice[BoothResource] `gorm:"type:jsonb;column:resources" json:"resources"`
	IsPublished bool                               `gorm:"not null;default:true;column:is_published" json:"is_published"`
	Order       int                                `gorm:"not null;default:0;column:display_order" json:"order"`
	VisitCount  int                                `gorm:"not null;default:0;column:visit_count" json:"visit_count"`
	CreatedAt   time.Time                          `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time                          `gorm:"not null;default:now()" json:"updated_at"`
}

func (Booth) TableName() string {
	return "booth"
}
