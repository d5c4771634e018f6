package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/auth"
	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/model"
	"github.com/lshigami/quizmaster/internal/repository"
)

type QuizService interface {
	Create(ctx context.Context, req dto.CreateQuizRequest, actor auth.Actor) (*dto.QuizResponse, error)
	List(ctx context.Context, query dto.QuizListQuery, actor auth.Actor) (*dto.Page[dto.QuizResponse], error)
	Get(ctx context.Context, id uuid.UUID, actor auth.Actor) (*dto.QuizResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateQuizRequest, actor auth.Actor) (*dto.QuizResponse, error)
	Remove(ctx context.Context, id uuid.UUID, actor auth.Actor) (*dto.QuizResponse, error)
}

type quizService struct {
	quizRepo       repository.QuizRepository
	questionRepo   repository.QuestionRepository
	submissionRepo repository.SubmissionRepository
	db             *gorm.DB
}

func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	submissionRepo repository.SubmissionRepository,
	db *gorm.DB,
) QuizService {
	return &quizService{
		quizRepo:       quizRepo,
		questionRepo:   questionRepo,
		submissionRepo: submissionRepo,
		db:             db,
	}
}

func (s *quizService) Create(ctx context.Context, req dto.CreateQuizRequest, actor auth.Actor) (*dto.QuizResponse, error) {
	if !actor.Role.CanAuthor() {
		return nil, apperr.Forbidden("Only teachers can create quizzes")
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	quiz := model.Quiz{
		Title:       req.Title,
		Description: req.Description,
		TimeLimit:   req.TimeLimit,
		Published:   req.Published != nil && *req.Published,
		TeacherID:   actor.ID,
		Questions:   questionsFromDrafts(req.Questions),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.quizRepo.WithTx(tx).Create(ctx, &quiz)
	})
	if err != nil {
		log.Error().Err(err).Str("teacherID", actor.ID.String()).Msg("Failed to create quiz in database")
		return nil, apperr.Internal("Failed to create quiz", fmt.Errorf("create quiz: %w", err))
	}
	log.Info().Str("quizID", quiz.ID.String()).Int("questions", len(quiz.Questions)).Msg("Quiz created")

	return s.load(ctx, quiz.ID, authorView)
}

func (s *quizService) List(ctx context.Context, query dto.QuizListQuery, actor auth.Actor) (*dto.Page[dto.QuizResponse], error) {
	if err := validate(query); err != nil {
		return nil, err
	}
	page, limit, offset := normalizePage(query.PaginationQuery)

	filter := repository.QuizFilter{
		Published: query.Published,
		Search:    query.Search,
		Offset:    offset,
		Limit:     limit,
	}
	if query.TeacherID != "" {
		teacherID, err := uuid.Parse(query.TeacherID)
		if err != nil {
			return nil, apperr.Validation("Validation failed", "teacherId must be a UUID")
		}
		filter.TeacherID = &teacherID
	}
	if actor.Role == model.RoleStudent {
		published := true
		filter.Published = &published
	}

	quizzes, total, err := s.quizRepo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list quizzes from repository")
		return nil, apperr.Internal("Failed to list quizzes", fmt.Errorf("list quizzes: %w", err))
	}

	ids := make([]uuid.UUID, 0, len(quizzes))
	for _, q := range quizzes {
		ids = append(ids, q.ID)
	}
	counts, err := s.quizRepo.CountQuestions(ctx, ids)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count quiz questions")
		return nil, apperr.Internal("Failed to list quizzes", fmt.Errorf("count questions: %w", err))
	}

	items := make([]dto.QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		item := toQuizResponse(&quizzes[i], quizView{teacherEmail: true})
		count := counts[quizzes[i].ID]
		item.QuestionCount = &count
		items = append(items, item)
	}
	result := dto.NewPage(items, total, page, limit)
	return &result, nil
}

func (s *quizService) Get(ctx context.Context, id uuid.UUID, actor auth.Actor) (*dto.QuizResponse, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Quiz with ID %s not found", id)
		}
		log.Error().Err(err).Str("quizID", id.String()).Msg("Failed to get quiz from repository")
		return nil, apperr.Internal("Failed to get quiz", fmt.Errorf("find quiz %s: %w", id, err))
	}

	privileged := quiz.TeacherID == actor.ID || actor.IsAdmin()
	if !quiz.Published && !privileged {
		return nil, apperr.NotFound("Quiz with ID %s not found", id)
	}

	view := studentView
	if privileged {
		view = authorView
	}
	resp := toQuizResponse(quiz, view)
	return &resp, nil
}

func (s *quizService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateQuizRequest, actor auth.Actor) (*dto.QuizResponse, error) {
	quiz, err := s.findOwned(ctx, id, actor, "You can only update your own quizzes")
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoSubmissions(ctx, s.submissionRepo, quiz.ID); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.TimeLimit != nil {
		fields["time_limit"] = *req.TimeLimit
	}
	if req.Published != nil {
		fields["published"] = *req.Published
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// re-check under the transaction; a submission may have started since
		if err := s.ensureNoSubmissions(ctx, s.submissionRepo.WithTx(tx), quiz.ID); err != nil {
			return err
		}
		if err := s.quizRepo.WithTx(tx).Update(ctx, quiz, fields); err != nil {
			return fmt.Errorf("update quiz fields: %w", err)
		}
		if req.Questions != nil {
			if err := s.questionRepo.WithTx(tx).ReplaceForQuiz(ctx, quiz.ID, questionsFromDrafts(req.Questions)); err != nil {
				return fmt.Errorf("replace questions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, err
		}
		log.Error().Err(err).Str("quizID", id.String()).Msg("Failed to update quiz")
		return nil, apperr.Internal("Failed to update quiz", err)
	}
	log.Info().Str("quizID", id.String()).Bool("questionsReplaced", req.Questions != nil).Msg("Quiz updated")

	return s.load(ctx, quiz.ID, authorView)
}

func (s *quizService) Remove(ctx context.Context, id uuid.UUID, actor auth.Actor) (*dto.QuizResponse, error) {
	quiz, err := s.findOwned(ctx, id, actor, "You can only delete your own quizzes")
	if err != nil {
		return nil, err
	}
	if err := s.quizRepo.SoftDelete(ctx, quiz); err != nil {
		log.Error().Err(err).Str("quizID", id.String()).Msg("Failed to soft-delete quiz")
		return nil, apperr.Internal("Failed to delete quiz", fmt.Errorf("soft-delete quiz %s: %w", id, err))
	}
	log.Info().Str("quizID", id.String()).Msg("Quiz soft-deleted")

	deleted, err := s.quizRepo.FindUnscoped(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to load deleted quiz", fmt.Errorf("find quiz %s: %w", id, err))
	}
	resp := toQuizResponse(deleted, summaryView)
	return &resp, nil
}

func (s *quizService) findOwned(ctx context.Context, id uuid.UUID, actor auth.Actor, forbidden string) (*model.Quiz, error) {
	quiz, err := s.quizRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Quiz with ID %s not found", id)
		}
		return nil, apperr.Internal("Failed to load quiz", fmt.Errorf("find quiz %s: %w", id, err))
	}
	if quiz.TeacherID != actor.ID {
		return nil, apperr.Forbidden("%s", forbidden)
	}
	return quiz, nil
}

func (s *quizService) ensureNoSubmissions(ctx context.Context, repo repository.SubmissionRepository, quizID uuid.UUID) error {
	count, err := repo.CountByQuiz(ctx, quizID)
	if err != nil {
		return apperr.Internal("Failed to check quiz submissions", fmt.Errorf("count submissions: %w", err))
	}
	if count > 0 {
		return apperr.Conflict("Cannot modify a quiz that has existing submissions. Create a new quiz instead.")
	}
	return nil
}

func (s *quizService) load(ctx context.Context, id uuid.UUID, view quizView) (*dto.QuizResponse, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("quizID", id.String()).Msg("Failed to reload quiz")
		return nil, apperr.Internal("Failed to load quiz", fmt.Errorf("find quiz %s: %w", id, err))
	}
	resp := toQuizResponse(quiz, view)
	return &resp, nil
}
