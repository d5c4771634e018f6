package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/service"
)

type ProfileController struct {
	userService service.UserService
}

func NewProfileController(userService service.UserService) *ProfileController {
	return &ProfileController{userService: userService}
}

// GetMe godoc
// @Summary Get my profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me [get]
func (c *ProfileController) GetMe(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		return
	}
	resp, err := c.userService.GetProfile(ctx.Request.Context(), actor.ID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateMe godoc
// @Summary Update my profile
// @Description Changes the display name and/or password.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me [put]
func (c *ProfileController) UpdateMe(ctx *gin.Context) {
	actor, ok := CurrentActor(ctx)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !BindJSON(ctx, &req) {
		return
	}
	resp, err := c.userService.UpdateProfile(ctx.Request.Context(), actor.ID, req)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
