package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lshigami/quizmaster/internal/model"
)

type AnswerRepository interface {
	WithTx(tx *gorm.DB) AnswerRepository
	CreateBatch(ctx context.Context, answers []model.Answer) error
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) WithTx(tx *gorm.DB) AnswerRepository {
	return &answerRepository{db: tx}
}

func (r *answerRepository) CreateBatch(ctx context.Context, answers []model.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&answers).Error
}
