package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lshigami/quizmaster/internal/model"
)

const (
	StatusSubmitted  = "submitted"
	StatusInProgress = "in_progress"
)

type SubmissionRepository interface {
	WithTx(tx *gorm.DB) SubmissionRepository
	Create(ctx context.Context, submission *model.Submission) error
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Submission, error)
	FindDetailedForUser(ctx context.Context, id, userID uuid.UUID) (*model.Submission, error)
	FindInProgress(ctx context.Context, userID, quizID uuid.UUID) (*model.Submission, error)
	MarkSubmitted(ctx context.Context, id uuid.UUID, score int, at time.Time) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.Submission, int64, error)
	ListByQuiz(ctx context.Context, quizID uuid.UUID, status string) ([]model.Submission, error)
	CountByQuiz(ctx context.Context, quizID uuid.UUID) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) WithTx(tx *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: tx}
}

func (r *submissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Omit("User", "Quiz", "Answers").Create(submission).Error
}

func (r *submissionRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&submission).Error
	return &submission, err
}

// FindDetailedForUser loads the quiz even if it was soft-deleted later, and the
// answered questions regardless of their own tombstones.
func (r *submissionRepository) FindDetailedForUser(ctx context.Context, id, userID uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).
		Preload("Quiz", unscoped).
		Preload("Quiz.Teacher").
		Preload("Quiz.Questions", liveQuestions).
		Preload("Answers").
		Preload("Answers.Question", unscoped).
		Where("id = ? AND user_id = ?", id, userID).
		First(&submission).Error
	return &submission, err
}

func (r *submissionRepository) FindInProgress(ctx context.Context, userID, quizID uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ? AND submitted_at IS NULL", userID, quizID).
		First(&submission).Error
	return &submission, err
}

// MarkSubmitted records the score only if the submission is still in
// progress. It reports whether this call performed the transition.
func (r *submissionRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, score int, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ? AND submitted_at IS NULL", id).
		Updates(map[string]any{"score": score, "submitted_at": at})
	return result.RowsAffected == 1, result.Error
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("user_id = ?", userID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var submissions []model.Submission
	err := query.
		Preload("Quiz", unscoped).
		Preload("Quiz.Teacher").
		Order("started_at DESC").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&submissions).Error
	return submissions, total, err
}

// ListByQuiz returns submitted attempts newest first, followed by in-progress
// ones newest started first.
func (r *submissionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID, status string) ([]model.Submission, error) {
	query := r.db.WithContext(ctx).Where("quiz_id = ?", quizID)
	switch status {
	case StatusSubmitted:
		query = query.Where("submitted_at IS NOT NULL")
	case StatusInProgress:
		query = query.Where("submitted_at IS NULL")
	}

	var submissions []model.Submission
	err := query.
		Preload("User").
		Order("CASE WHEN submitted_at IS NULL THEN 1 ELSE 0 END").
		Order("submitted_at DESC").
		Order("started_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) CountByQuiz(ctx context.Context, quizID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Submission{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

// liveQuestions filters tombstones explicitly because nested preloads under an
// unscoped parent inherit Unscoped.
func liveQuestions(db *gorm.DB) *gorm.DB {
	return orderQuestions(db.Where("questions.deleted_at IS NULL"))
}
