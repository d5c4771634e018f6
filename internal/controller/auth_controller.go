package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/service"
)

type AuthController struct {
	authService service.AuthService
	userService service.UserService
}

func NewAuthController(authService service.AuthService, userService service.UserService) *AuthController {
	return &AuthController{authService: authService, userService: userService}
}

// Register godoc
// @Summary Register a new account
// @Description Creates a STUDENT (default) or TEACHER account and returns an access token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 409 {object} dto.ErrorResponse "Email already in use"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !BindJSON(ctx, &req) {
		return
	}
	resp, err := c.authService.Register(ctx.Request.Context(), req)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 201 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}
	resp, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// Me godoc
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
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
