package teacher

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lshigami/quizmaster/internal/controller"
	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/service"
)

// QuizController serves the authoring endpoints for TEACHER and ADMIN users.
type QuizController struct {
	quizService        service.QuizService
	submissionService  service.SubmissionService
	explanationService service.ExplanationService
}

func NewQuizController(
	quizService service.QuizService,
	submissionService service.SubmissionService,
	explanationService service.ExplanationService,
) *QuizController {
	return &QuizController{
		quizService:        quizService,
		submissionService:  submissionService,
		explanationService: explanationService,
	}
}

// CreateQuiz godoc
// @Summary (Teacher) Create a quiz
// @Description Creates a quiz together with its questions. Each question has exactly 4 options.
// @Tags Teacher - Quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quiz body dto.CreateQuizRequest true "Quiz with at least one question"
// @Success 201 {object} dto.QuizResponse "Quiz created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 403 {object} dto.ErrorResponse "Not a teacher"
// @Router /quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	var req dto.CreateQuizRequest
	if !controller.BindJSON(ctx, &req) {
		log.Warn().Str("teacherID", actor.ID.String()).Msg("CreateQuiz: invalid request body")
		return
	}
	resp, err := c.quizService.Create(ctx.Request.Context(), req, actor)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// UpdateQuiz godoc
// @Summary (Teacher) Update a quiz
// @Description Partial update. Supplying questions replaces the whole question set. Quizzes with submissions cannot be changed.
// @Tags Teacher - Quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Param quiz body dto.UpdateQuizRequest true "Fields to change"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Quiz has submissions"
// @Router /quizzes/{id} [put]
// @Router /quizzes/{id} [patch]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	id, ok := controller.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateQuizRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	resp, err := c.quizService.Update(ctx.Request.Context(), id, req, actor)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// RemoveQuiz godoc
// @Summary (Teacher) Delete a quiz
// @Description Soft-deletes the quiz. Questions and submissions are kept.
// @Tags Teacher - Quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse "The soft-deleted quiz"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse
// @Router /quizzes/{id} [delete]
func (c *QuizController) RemoveQuiz(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	id, ok := controller.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.quizService.Remove(ctx.Request.Context(), id, actor)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListQuizSubmissions godoc
// @Summary (Teacher) List submissions for a quiz
// @Description Submitted attempts newest first, then attempts still in progress.
// @Tags Teacher - Quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Param status query string false "submitted or in_progress"
// @Success 200 {array} dto.SubmissionResponse
// @Failure 404 {object} dto.ErrorResponse "Quiz not found or you do not have access"
// @Router /quizzes/{id}/submissions [get]
func (c *QuizController) ListQuizSubmissions(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	id, ok := controller.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var query dto.SubmissionListQuery
	if !controller.BindQuery(ctx, &query) {
		return
	}
	resp, err := c.submissionService.ListForQuiz(ctx.Request.Context(), id, query, actor)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DraftExplanations godoc
// @Summary (Teacher) Draft explanations with AI
// @Description Asks Gemini for one explanation per question draft. Nothing is saved.
// @Tags Teacher - Quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ExplanationRequest true "Question drafts"
// @Success 200 {object} dto.ExplanationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "AI drafting not configured or failed"
// @Router /quizzes/explanations [post]
func (c *QuizController) DraftExplanations(ctx *gin.Context) {
	var req dto.ExplanationRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	resp, err := c.explanationService.Draft(ctx.Request.Context(), req)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
