package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartSubmissionRequest struct {
	QuizID string `json:"quizId" binding:"required,uuid"`
}

type AnswerInput struct {
	QuestionID string `json:"questionId" binding:"required,uuid"`
	// pointer so an explicit 0 passes required
	SelectedOption *int `json:"selectedOption" binding:"required,min=0,max=3"`
}

type SubmitAnswersRequest struct {
	Answers []AnswerInput `json:"answers" binding:"required,min=1,dive"`
}

type SubmissionListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=submitted in_progress"`
}

type AnswerResponse struct {
	ID             uuid.UUID         `json:"id"`
	QuestionID     uuid.UUID         `json:"questionId"`
	SelectedOption int               `json:"selectedOption"`
	IsCorrect      bool              `json:"isCorrect"`
	Question       *QuestionResponse `json:"question,omitempty" copier:"-"`
}

type SubmissionResponse struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"userId"`
	QuizID         uuid.UUID        `json:"quizId"`
	TotalQuestions int              `json:"totalQuestions"`
	Score          *int             `json:"score"`
	StartedAt      time.Time        `json:"startedAt"`
	SubmittedAt    *time.Time       `json:"submittedAt"`
	Deadline       time.Time        `json:"deadline" copier:"-"`
	User           *UserSummary     `json:"user,omitempty" copier:"-"`
	Quiz           *QuizResponse    `json:"quiz,omitempty" copier:"-"`
	Answers        []AnswerResponse `json:"answers,omitempty" copier:"-"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}
