package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/controller"
	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/service"
)

type SubmissionController struct {
	submissionService service.SubmissionService
}

func NewSubmissionController(submissionService service.SubmissionService) *SubmissionController {
	return &SubmissionController{submissionService: submissionService}
}

// StartSubmission godoc
// @Summary (Student) Start a quiz attempt
// @Description Opens a timed attempt. Only one attempt per quiz may be in progress.
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.StartSubmissionRequest true "Quiz to attempt"
// @Success 201 {object} dto.SubmissionResponse "Attempt with questions, without answer keys"
// @Failure 400 {object} dto.ErrorResponse "Already in progress"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found or not published"
// @Router /submissions/start [post]
func (c *SubmissionController) StartSubmission(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	var req dto.StartSubmissionRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	quizID, err := uuid.Parse(req.QuizID)
	if err != nil {
		_ = ctx.Error(apperr.Validation("Validation failed", "quizId must be a UUID"))
		return
	}
	resp, err := c.submissionService.Start(ctx.Request.Context(), quizID, actor)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// SubmitAnswers godoc
// @Summary Submit answers
// @Description Scores the attempt. Every live question must be answered exactly once.
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Param body body dto.SubmitAnswersRequest true "Answers"
// @Success 201 {object} dto.SubmissionResponse "Scored submission"
// @Failure 400 {object} dto.ErrorResponse "Already submitted or incomplete answers"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /submissions/{id}/submit [post]
func (c *SubmissionController) SubmitAnswers(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	id, ok := controller.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.SubmitAnswersRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	resp, err := c.submissionService.Submit(ctx.Request.Context(), id, req, actor)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// MySubmissions godoc
// @Summary List my submissions
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Success 200 {object} dto.Page[dto.SubmissionResponse]
// @Router /submissions/my-submissions [get]
func (c *SubmissionController) MySubmissions(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	var query dto.PaginationQuery
	if !controller.BindQuery(ctx, &query) {
		return
	}
	resp, err := c.submissionService.ListMine(ctx.Request.Context(), query, actor)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetSubmission godoc
// @Summary Get one of my submissions
// @Description Answer keys appear only after the submission is scored.
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /submissions/{id} [get]
func (c *SubmissionController) GetSubmission(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	id, ok := controller.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.submissionService.Get(ctx.Request.Context(), id, actor)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
