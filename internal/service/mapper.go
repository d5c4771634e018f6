package service

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/model"
)

// quizView controls which parts of a quiz a caller may see.
type quizView struct {
	withQuestions     bool
	revealKey         bool
	revealExplanation bool
	teacherEmail      bool
}

var (
	authorView  = quizView{withQuestions: true, revealKey: true, revealExplanation: true, teacherEmail: true}
	studentView = quizView{withQuestions: true, teacherEmail: true}
	summaryView = quizView{}
)

func toUserResponse(u *model.User) dto.UserResponse {
	var resp dto.UserResponse
	if err := copier.Copy(&resp, u); err != nil {
		log.Error().Err(err).Msg("Failed to copy User model to UserResponse")
	}
	resp.Role = string(u.Role)
	return resp
}

func toUserSummary(u *model.User, withEmail bool) *dto.UserSummary {
	if u == nil || u.ID == uuid.Nil {
		return nil
	}
	summary := &dto.UserSummary{ID: u.ID, Name: u.Name}
	if withEmail {
		summary.Email = u.Email
	}
	return summary
}

func toQuestionResponse(q *model.Question, view quizView) dto.QuestionResponse {
	var resp dto.QuestionResponse
	if err := copier.Copy(&resp, q); err != nil {
		log.Error().Err(err).Msg("Failed to copy Question model to QuestionResponse")
	}
	resp.Options = append([]string(nil), q.Options...)
	if view.revealKey {
		correct := q.CorrectOption
		resp.CorrectOption = &correct
	}
	if !view.revealExplanation {
		resp.Explanation = nil
	}
	return resp
}

func toQuizResponse(q *model.Quiz, view quizView) dto.QuizResponse {
	var resp dto.QuizResponse
	if err := copier.Copy(&resp, q); err != nil {
		log.Error().Err(err).Msg("Failed to copy Quiz model to QuizResponse")
	}
	resp.Teacher = toUserSummary(&q.Teacher, view.teacherEmail)
	if q.DeletedAt.Valid {
		deletedAt := q.DeletedAt.Time
		resp.DeletedAt = &deletedAt
	}
	if view.withQuestions {
		questions := sortedQuestions(q.Questions)
		resp.Questions = make([]dto.QuestionResponse, 0, len(questions))
		for i := range questions {
			resp.Questions = append(resp.Questions, toQuestionResponse(&questions[i], view))
		}
		count := len(questions)
		resp.QuestionCount = &count
	}
	return resp
}

func toSubmissionResponse(s *model.Submission, view quizView) dto.SubmissionResponse {
	var resp dto.SubmissionResponse
	if err := copier.Copy(&resp, s); err != nil {
		log.Error().Err(err).Msg("Failed to copy Submission model to SubmissionResponse")
	}
	resp.User = toUserSummary(&s.User, true)
	if s.Quiz.ID != uuid.Nil {
		quiz := toQuizResponse(&s.Quiz, view)
		resp.Quiz = &quiz
		resp.Deadline = s.Quiz.Deadline(s.StartedAt)
	}

	if len(s.Answers) > 0 {
		order := make(map[uuid.UUID]int, len(s.Quiz.Questions))
		for _, q := range s.Quiz.Questions {
			order[q.ID] = q.Order
		}
		answers := append([]model.Answer(nil), s.Answers...)
		sort.SliceStable(answers, func(i, j int) bool {
			return answerOrder(answers[i], order) < answerOrder(answers[j], order)
		})
		resp.Answers = make([]dto.AnswerResponse, 0, len(answers))
		for i := range answers {
			var answer dto.AnswerResponse
			if err := copier.Copy(&answer, &answers[i]); err != nil {
				log.Error().Err(err).Msg("Failed to copy Answer model to AnswerResponse")
			}
			if answers[i].Question.ID != uuid.Nil {
				question := toQuestionResponse(&answers[i].Question, view)
				answer.Question = &question
			}
			resp.Answers = append(resp.Answers, answer)
		}
	}
	return resp
}

func answerOrder(a model.Answer, order map[uuid.UUID]int) int {
	if o, ok := order[a.QuestionID]; ok {
		return o
	}
	return a.Question.Order
}

func sortedQuestions(questions []model.Question) []model.Question {
	sorted := append([]model.Question(nil), questions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

func questionsFromDrafts(drafts []dto.QuestionDraft) []model.Question {
	questions := make([]model.Question, 0, len(drafts))
	for _, d := range drafts {
		q := model.Question{
			Text:        d.Text,
			Options:     append([]string(nil), d.Options...),
			Explanation: d.Explanation,
			Order:       d.Order,
		}
		if d.CorrectOption != nil {
			q.CorrectOption = *d.CorrectOption
		}
		questions = append(questions, q)
	}
	return questions
}

func normalizePage(q dto.PaginationQuery) (page, limit, offset int) {
	page, limit = q.Page, q.Limit
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

func utcNow() time.Time {
	return time.Now().UTC()
}
