package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/auth"
	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/model"
	"github.com/lshigami/quizmaster/internal/repository"
	"github.com/lshigami/quizmaster/internal/testutil"
)

type fixture struct {
	db          *gorm.DB
	quizzes     QuizService
	submissions *submissionService
	teacher     auth.Actor
	otherTeach  auth.Actor
	student     auth.Actor
	admin       auth.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	quizRepo := repository.NewQuizRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)

	return &fixture{
		db:      db,
		quizzes: NewQuizService(quizRepo, questionRepo, submissionRepo, db),
		submissions: NewSubmissionService(
			quizRepo, questionRepo, submissionRepo, answerRepo, SubmissionPolicy{}, db,
		).(*submissionService),
		teacher:    auth.ActorFromUser(testutil.CreateUser(t, db, "teacher@example.com", model.RoleTeacher)),
		otherTeach: auth.ActorFromUser(testutil.CreateUser(t, db, "other@example.com", model.RoleTeacher)),
		student:    auth.ActorFromUser(testutil.CreateUser(t, db, "student@example.com", model.RoleStudent)),
		admin:      auth.ActorFromUser(testutil.CreateUser(t, db, "admin@example.com", model.RoleAdmin)),
	}
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func draft(text string, correct, order int) dto.QuestionDraft {
	return dto.QuestionDraft{
		Text:          text,
		Options:       []string{"Option A", "Option B", "Option C", "Option D"},
		CorrectOption: intPtr(correct),
		Order:         order,
	}
}

func (f *fixture) createQuiz(t *testing.T, published bool, drafts ...dto.QuestionDraft) *dto.QuizResponse {
	t.Helper()
	if len(drafts) == 0 {
		drafts = []dto.QuestionDraft{draft("What is two plus two?", 1, 0)}
	}
	quiz, err := f.quizzes.Create(context.Background(), dto.CreateQuizRequest{
		Title:     "Arithmetic basics",
		TimeLimit: 30,
		Published: boolPtr(published),
		Questions: drafts,
	}, f.teacher)
	if err != nil {
		t.Fatalf("Create quiz: %v", err)
	}
	return quiz
}

func answersFor(quiz *dto.QuizResponse, pick func(i int, q dto.QuestionResponse) int) dto.SubmitAnswersRequest {
	req := dto.SubmitAnswersRequest{}
	for i, q := range quiz.Questions {
		req.Answers = append(req.Answers, dto.AnswerInput{
			QuestionID:     q.ID.String(),
			SelectedOption: intPtr(pick(i, q)),
		})
	}
	return req
}

func assertKind(t *testing.T, err error, want apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := apperr.From(err).Kind; got != want {
		t.Fatalf("error kind = %s (%v), want %s", got, err, want)
	}
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Unscoped().Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func newStudent(t *testing.T, f *fixture, email string) auth.Actor {
	t.Helper()
	return auth.ActorFromUser(testutil.CreateUser(t, f.db, email, model.RoleStudent))
}
