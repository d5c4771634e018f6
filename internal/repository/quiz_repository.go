package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lshigami/quizmaster/internal/model"
)

// QuizFilter narrows List. Zero values mean "no filter".
type QuizFilter struct {
	Published *bool
	TeacherID *uuid.UUID
	Search    string
	Offset    int
	Limit     int
}

type QuizRepository interface {
	WithTx(tx *gorm.DB) QuizRepository
	Create(ctx context.Context, quiz *model.Quiz) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	FindByIDWithQuestions(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	FindUnscoped(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	List(ctx context.Context, filter QuizFilter) ([]model.Quiz, int64, error)
	CountQuestions(ctx context.Context, quizIDs []uuid.UUID) (map[uuid.UUID]int, error)
	Update(ctx context.Context, quiz *model.Quiz, fields map[string]any) error
	SoftDelete(ctx context.Context, quiz *model.Quiz) error
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) WithTx(tx *gorm.DB) QuizRepository {
	return &quizRepository{db: tx}
}

// Create inserts the quiz and its Questions in one statement batch.
func (r *quizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.db.WithContext(ctx).Omit("Teacher").Create(quiz).Error
}

func (r *quizRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.WithContext(ctx).First(&quiz, "id = ?", id).Error
	return &quiz, err
}

func (r *quizRepository) FindByIDWithQuestions(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Questions", orderQuestions).
		First(&quiz, "id = ?", id).Error
	return &quiz, err
}

func (r *quizRepository) FindUnscoped(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.WithContext(ctx).Unscoped().
		Preload("Teacher").
		First(&quiz, "id = ?", id).Error
	return &quiz, err
}

func (r *quizRepository) List(ctx context.Context, filter QuizFilter) ([]model.Quiz, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Quiz{})
	if filter.Published != nil {
		query = query.Where("published = ?", *filter.Published)
	}
	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\\'",
			pattern, pattern,
		)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quizzes []model.Quiz
	err := query.
		Preload("Teacher").
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&quizzes).Error
	return quizzes, total, err
}

// CountQuestions returns live question counts keyed by quiz id. Quizzes with
// no questions are absent from the map.
func (r *quizRepository) CountQuestions(ctx context.Context, quizIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(quizIDs))
	if len(quizIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		QuizID uuid.UUID
		Total  int
	}
	err := r.db.WithContext(ctx).Model(&model.Question{}).
		Select("quiz_id, COUNT(*) AS total").
		Where("quiz_id IN ?", quizIDs).
		Group("quiz_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.QuizID] = row.Total
	}
	return counts, nil
}

func (r *quizRepository) Update(ctx context.Context, quiz *model.Quiz, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(quiz).Updates(fields).Error
}

func (r *quizRepository) SoftDelete(ctx context.Context, quiz *model.Quiz) error {
	return r.db.WithContext(ctx).Delete(quiz).Error
}

func orderQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, created_at ASC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
