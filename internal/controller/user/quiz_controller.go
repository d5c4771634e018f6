package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lshigami/quizmaster/internal/controller"
	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/service"
)

// QuizController serves the read side of the catalog to every signed-in user.
type QuizController struct {
	quizService service.QuizService
}

func NewQuizController(quizService service.QuizService) *QuizController {
	return &QuizController{quizService: quizService}
}

// ListQuizzes godoc
// @Summary List quizzes
// @Description Paginated, newest first. Students only see published quizzes.
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Param published query bool false "Filter by published flag"
// @Param teacherId query string false "Filter by author"
// @Param search query string false "Case-insensitive match on title or description"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Success 200 {object} dto.Page[dto.QuizResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	var query dto.QuizListQuery
	if !controller.BindQuery(ctx, &query) {
		return
	}
	resp, err := c.quizService.List(ctx.Request.Context(), query, actor)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetQuiz godoc
// @Summary Get a quiz
// @Description Quiz with its questions in display order. Correct options are only shown to the author or an admin.
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Router /quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	id, ok := controller.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.quizService.Get(ctx.Request.Context(), id, actor)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
