package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lshigami/quizmaster/config"
	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/auth"
	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/model"
	"github.com/lshigami/quizmaster/internal/repository"
)

const (
	msgQuizUnavailable   = "Quiz not found or not published"
	msgActiveSubmission  = "You already have an active submission for this quiz"
	msgSubmissionMissing = "Submission not found"
	msgAlreadySubmitted  = "Quiz has already been submitted"
	msgAllRequired       = "All questions must be answered"
	msgTimeExceeded      = "Time limit exceeded for this submission"
	msgQuizNoAccess      = "Quiz not found or you do not have access"
)

// SubmissionPolicy holds the server-side deadline settings.
type SubmissionPolicy struct {
	EnforceTimeLimit bool
	Grace            time.Duration
}

func NewSubmissionPolicy(cfg *config.Config) SubmissionPolicy {
	return SubmissionPolicy{
		EnforceTimeLimit: cfg.Quiz.EnforceTimeLimit,
		Grace:            cfg.Quiz.SubmissionGrace,
	}
}

type SubmissionService interface {
	Start(ctx context.Context, quizID uuid.UUID, actor auth.Actor) (*dto.SubmissionResponse, error)
	Submit(ctx context.Context, submissionID uuid.UUID, req dto.SubmitAnswersRequest, actor auth.Actor) (*dto.SubmissionResponse, error)
	ListMine(ctx context.Context, query dto.PaginationQuery, actor auth.Actor) (*dto.Page[dto.SubmissionResponse], error)
	Get(ctx context.Context, submissionID uuid.UUID, actor auth.Actor) (*dto.SubmissionResponse, error)
	ListForQuiz(ctx context.Context, quizID uuid.UUID, query dto.SubmissionListQuery, actor auth.Actor) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	quizRepo       repository.QuizRepository
	questionRepo   repository.QuestionRepository
	submissionRepo repository.SubmissionRepository
	answerRepo     repository.AnswerRepository
	policy         SubmissionPolicy
	db             *gorm.DB
	now            func() time.Time
}

func NewSubmissionService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	submissionRepo repository.SubmissionRepository,
	answerRepo repository.AnswerRepository,
	policy SubmissionPolicy,
	db *gorm.DB,
) SubmissionService {
	return &submissionService{
		quizRepo:       quizRepo,
		questionRepo:   questionRepo,
		submissionRepo: submissionRepo,
		answerRepo:     answerRepo,
		policy:         policy,
		db:             db,
		now:            utcNow,
	}
}

func (s *submissionService) Start(ctx context.Context, quizID uuid.UUID, actor auth.Actor) (*dto.SubmissionResponse, error) {
	quiz, err := s.quizRepo.FindByID(ctx, quizID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(msgQuizUnavailable)
		}
		return nil, apperr.Internal("Failed to start submission", fmt.Errorf("find quiz %s: %w", quizID, err))
	}
	if !quiz.Published {
		return nil, apperr.NotFound(msgQuizUnavailable)
	}

	_, err = s.submissionRepo.FindInProgress(ctx, actor.ID, quizID)
	switch {
	case err == nil:
		return nil, apperr.InvalidState(msgActiveSubmission)
	case !isNotFound(err):
		return nil, apperr.Internal("Failed to start submission", fmt.Errorf("find in-progress submission: %w", err))
	}

	total, err := s.questionRepo.CountByQuizID(ctx, quizID)
	if err != nil {
		return nil, apperr.Internal("Failed to start submission", fmt.Errorf("count questions: %w", err))
	}

	submission := model.Submission{
		UserID:         actor.ID,
		QuizID:         quizID,
		TotalQuestions: int(total),
		StartedAt:      s.now(),
	}
	if err := s.submissionRepo.Create(ctx, &submission); err != nil {
		// the partial unique index rejects a concurrent second start
		if isDuplicate(err) {
			return nil, apperr.InvalidState(msgActiveSubmission)
		}
		log.Error().Err(err).Str("quizID", quizID.String()).Str("userID", actor.ID.String()).Msg("Failed to create submission")
		return nil, apperr.Internal("Failed to start submission", fmt.Errorf("create submission: %w", err))
	}
	log.Info().Str("submissionID", submission.ID.String()).Str("quizID", quizID.String()).Msg("Submission started")

	return s.detail(ctx, submission.ID, actor.ID)
}

func (s *submissionService) Submit(ctx context.Context, submissionID uuid.UUID, req dto.SubmitAnswersRequest, actor auth.Actor) (*dto.SubmissionResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	submission, err := s.submissionRepo.FindByIDForUser(ctx, submissionID, actor.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(msgSubmissionMissing)
		}
		return nil, apperr.Internal("Failed to submit answers", fmt.Errorf("find submission %s: %w", submissionID, err))
	}
	if submission.IsSubmitted() {
		return nil, apperr.InvalidState(msgAlreadySubmitted)
	}

	now := s.now()
	if s.policy.EnforceTimeLimit {
		quiz, err := s.quizRepo.FindUnscoped(ctx, submission.QuizID)
		if err != nil {
			return nil, apperr.Internal("Failed to submit answers", fmt.Errorf("find quiz %s: %w", submission.QuizID, err))
		}
		if now.After(quiz.Deadline(submission.StartedAt).Add(s.policy.Grace)) {
			return nil, apperr.InvalidState(msgTimeExceeded)
		}
	}

	questions, err := s.questionRepo.FindByQuizID(ctx, submission.QuizID)
	if err != nil {
		return nil, apperr.Internal("Failed to submit answers", fmt.Errorf("load questions: %w", err))
	}

	answers, score, err := gradeAnswers(questions, req.Answers)
	if err != nil {
		return nil, err
	}
	for i := range answers {
		answers[i].SubmissionID = submission.ID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.answerRepo.WithTx(tx).CreateBatch(ctx, answers); err != nil {
			return fmt.Errorf("create answers: %w", err)
		}
		updated, err := s.submissionRepo.WithTx(tx).MarkSubmitted(ctx, submission.ID, score, now)
		if err != nil {
			return fmt.Errorf("mark submitted: %w", err)
		}
		if !updated {
			return apperr.InvalidState(msgAlreadySubmitted)
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		log.Error().Err(err).Str("submissionID", submissionID.String()).Msg("Submit transaction failed")
		return nil, apperr.Internal("Failed to submit answers", err)
	}
	log.Info().
		Str("submissionID", submission.ID.String()).
		Int("score", score).
		Int("totalQuestions", len(questions)).
		Msg("Submission scored")

	return s.detail(ctx, submission.ID, actor.ID)
}

func (s *submissionService) ListMine(ctx context.Context, query dto.PaginationQuery, actor auth.Actor) (*dto.Page[dto.SubmissionResponse], error) {
	page, limit, offset := normalizePage(query)
	submissions, total, err := s.submissionRepo.ListByUser(ctx, actor.ID, offset, limit)
	if err != nil {
		log.Error().Err(err).Str("userID", actor.ID.String()).Msg("Failed to list user submissions")
		return nil, apperr.Internal("Failed to list submissions", fmt.Errorf("list submissions: %w", err))
	}

	items := make([]dto.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		item := toSubmissionResponse(&submissions[i], summaryView)
		item.User = nil
		items = append(items, item)
	}
	result := dto.NewPage(items, total, page, limit)
	return &result, nil
}

func (s *submissionService) Get(ctx context.Context, submissionID uuid.UUID, actor auth.Actor) (*dto.SubmissionResponse, error) {
	return s.detail(ctx, submissionID, actor.ID)
}

func (s *submissionService) ListForQuiz(ctx context.Context, quizID uuid.UUID, query dto.SubmissionListQuery, actor auth.Actor) ([]dto.SubmissionResponse, error) {
	if err := validate(query); err != nil {
		return nil, err
	}
	quiz, err := s.quizRepo.FindByID(ctx, quizID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(msgQuizNoAccess)
		}
		return nil, apperr.Internal("Failed to list submissions", fmt.Errorf("find quiz %s: %w", quizID, err))
	}
	if quiz.TeacherID != actor.ID {
		return nil, apperr.NotFound(msgQuizNoAccess)
	}

	submissions, err := s.submissionRepo.ListByQuiz(ctx, quizID, query.Status)
	if err != nil {
		log.Error().Err(err).Str("quizID", quizID.String()).Msg("Failed to list quiz submissions")
		return nil, apperr.Internal("Failed to list submissions", fmt.Errorf("list submissions: %w", err))
	}
	items := make([]dto.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		item := toSubmissionResponse(&submissions[i], summaryView)
		item.Deadline = quiz.Deadline(submissions[i].StartedAt)
		items = append(items, item)
	}
	return items, nil
}

// detail loads a submission with its quiz and answers. Answer keys and
// explanations stay hidden until the submission is scored.
func (s *submissionService) detail(ctx context.Context, submissionID, userID uuid.UUID) (*dto.SubmissionResponse, error) {
	submission, err := s.submissionRepo.FindDetailedForUser(ctx, submissionID, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(msgSubmissionMissing)
		}
		return nil, apperr.Internal("Failed to load submission", fmt.Errorf("find submission %s: %w", submissionID, err))
	}
	view := studentView
	if submission.IsSubmitted() {
		view = authorView
	}
	resp := toSubmissionResponse(submission, view)
	resp.User = nil
	return &resp, nil
}

// gradeAnswers checks that the answers cover exactly the live questions, each
// once, and scores them.
func gradeAnswers(questions []model.Question, inputs []dto.AnswerInput) ([]model.Answer, int, error) {
	if len(inputs) != len(questions) {
		return nil, 0, apperr.Validation(msgAllRequired)
	}

	byID := make(map[uuid.UUID]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	seen := make(map[uuid.UUID]bool, len(inputs))
	answers := make([]model.Answer, 0, len(inputs))
	score := 0
	for _, in := range inputs {
		questionID, err := uuid.Parse(in.QuestionID)
		if err != nil {
			return nil, 0, apperr.Validation("Validation failed", fmt.Sprintf("questionId %q must be a UUID", in.QuestionID))
		}
		if seen[questionID] {
			return nil, 0, apperr.Validation(fmt.Sprintf("Question %s answered more than once", questionID))
		}
		seen[questionID] = true

		question, ok := byID[questionID]
		if !ok {
			return nil, 0, apperr.Validation(fmt.Sprintf("Question %s not found in this quiz", questionID))
		}
		if in.SelectedOption == nil {
			return nil, 0, apperr.Validation("Validation failed", "selectedOption is required")
		}

		correct := *in.SelectedOption == question.CorrectOption
		if correct {
			score++
		}
		answers = append(answers, model.Answer{
			QuestionID:     questionID,
			SelectedOption: *in.SelectedOption,
			IsCorrect:      correct,
		})
	}
	return answers, score, nil
}
