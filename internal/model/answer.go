package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Answer struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID   uuid.UUID `gorm:"type:uuid;not null;index" json:"submission_id"`
	QuestionID     uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Question       Question  `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	SelectedOption int       `gorm:"not null" json:"selected_option"`
	IsCorrect      bool      `gorm:"not null" json:"is_correct"`
	CreatedAt      time.Time `json:"created_at"`
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
