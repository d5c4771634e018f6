package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Quiz struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	TimeLimit   int            `gorm:"not null" json:"time_limit"` // minutes
	Published   bool           `gorm:"not null;index" json:"published"`
	TeacherID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Teacher     User           `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Questions   []Question     `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	assignID(&q.ID)
	return nil
}

// Deadline is the nominal end of an attempt started at startedAt.
func (q *Quiz) Deadline(startedAt time.Time) time.Time {
	return startedAt.Add(time.Duration(q.TimeLimit) * time.Minute)
}
