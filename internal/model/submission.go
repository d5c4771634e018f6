package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Submission struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User           User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	QuizID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz           Quiz       `gorm:"foreignKey:QuizID" json:"quiz,omitempty"`
	TotalQuestions int        `gorm:"not null" json:"total_questions"`
	Score          *int       `json:"score,omitempty"`
	StartedAt      time.Time  `gorm:"not null" json:"started_at"`
	SubmittedAt    *time.Time `gorm:"index" json:"submitted_at,omitempty"`
	Answers        []Answer   `gorm:"foreignKey:SubmissionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"answers,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

func (s *Submission) IsSubmitted() bool {
	return s.SubmittedAt != nil
}
