package dto

import (
	"time"

	"github.com/google/uuid"
)

// QuestionDraft is one question of a create or replace request.
type QuestionDraft struct {
	Text          string   `json:"text" binding:"required,notblank,min=10"`
	Options       []string `json:"options" binding:"required,len=4,dive,required,notblank"`
	CorrectOption *int     `json:"correctOption" binding:"required,min=0,max=3"`
	Explanation   *string  `json:"explanation"`
	Order         int      `json:"order" binding:"min=0"`
}

type CreateQuizRequest struct {
	Title       string          `json:"title" binding:"required,notblank,min=3,max=200"`
	Description *string         `json:"description"`
	TimeLimit   int             `json:"timeLimit" binding:"required,min=1,max=180"`
	Published   *bool           `json:"published"`
	Questions   []QuestionDraft `json:"questions" binding:"required,min=1,dive"`
}

// UpdateQuizRequest is a partial update; nil fields are left untouched. A
// non-nil Questions replaces the whole question set.
type UpdateQuizRequest struct {
	Title       *string         `json:"title" binding:"omitempty,notblank,min=3,max=200"`
	Description *string         `json:"description"`
	TimeLimit   *int            `json:"timeLimit" binding:"omitempty,min=1,max=180"`
	Published   *bool           `json:"published"`
	Questions   []QuestionDraft `json:"questions" binding:"omitempty,min=1,dive"`
}

type QuizListQuery struct {
	PaginationQuery
	Published *bool  `form:"published"`
	TeacherID string `form:"teacherId" binding:"omitempty,uuid"`
	Search    string `form:"search" binding:"omitempty,max=200"`
}

type QuestionResponse struct {
	ID            uuid.UUID `json:"id"`
	QuizID        uuid.UUID `json:"quizId"`
	Text          string    `json:"text"`
	Options       []string  `json:"options" copier:"-"`
	CorrectOption *int      `json:"correctOption,omitempty" copier:"-"`
	Explanation   *string   `json:"explanation,omitempty"`
	Order         int       `json:"order"`
}

type QuizResponse struct {
	ID            uuid.UUID          `json:"id"`
	Title         string             `json:"title"`
	Description   *string            `json:"description"`
	TimeLimit     int                `json:"timeLimit"`
	Published     bool               `json:"published"`
	TeacherID     uuid.UUID          `json:"teacherId"`
	Teacher       *UserSummary       `json:"teacher,omitempty" copier:"-"`
	QuestionCount *int               `json:"questionCount,omitempty" copier:"-"`
	Questions     []QuestionResponse `json:"questions,omitempty" copier:"-"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	DeletedAt     *time.Time         `json:"deletedAt,omitempty" copier:"-"`
}

type ExplanationRequest struct {
	Questions []QuestionDraft `json:"questions" binding:"required,min=1,max=20,dive"`
}

type ExplanationResponse struct {
	Explanations []string `json:"explanations"`
}
