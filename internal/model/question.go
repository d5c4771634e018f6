package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

type Question struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID        uuid.UUID                   `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Text          string                      `gorm:"type:text;not null" json:"text"`
	Options       datatypes.JSONSlice[string] `gorm:"not null" json:"options"`
	CorrectOption int                         `gorm:"not null" json:"correct_option"`
	Explanation   *string                     `gorm:"type:text" json:"explanation,omitempty"`
	Order         int                         `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	DeletedAt     gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	assignID(&q.ID)
	return nil
}
