package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lshigami/quizmaster/internal/model"
)

type QuestionRepository interface {
	WithTx(tx *gorm.DB) QuestionRepository
	FindByQuizID(ctx context.Context, quizID uuid.UUID) ([]model.Question, error)
	CountByQuizID(ctx context.Context, quizID uuid.UUID) (int64, error)
	ReplaceForQuiz(ctx context.Context, quizID uuid.UUID, questions []model.Question) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) WithTx(tx *gorm.DB) QuestionRepository {
	return &questionRepository{db: tx}
}

func (r *questionRepository) FindByQuizID(ctx context.Context, quizID uuid.UUID) ([]model.Question, error) {
	var questions []model.Question
	err := orderQuestions(r.db.WithContext(ctx)).
		Where("quiz_id = ?", quizID).
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) CountByQuizID(ctx context.Context, quizID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

// ReplaceForQuiz soft-deletes the live questions of a quiz and inserts the new
// set. Callers run it inside a transaction.
func (r *questionRepository) ReplaceForQuiz(ctx context.Context, quizID uuid.UUID, questions []model.Question) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("quiz_id = ?", quizID).Delete(&model.Question{}).Error; err != nil {
		return err
	}
	for i := range questions {
		questions[i].QuizID = quizID
	}
	if len(questions) == 0 {
		return nil
	}
	return db.Create(&questions).Error
}
