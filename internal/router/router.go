package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"github.com/lshigami/quizmaster/config"
	"github.com/lshigami/quizmaster/internal/controller"
	teacherctrl "github.com/lshigami/quizmaster/internal/controller/teacher"
	userctrl "github.com/lshigami/quizmaster/internal/controller/user"
	"github.com/lshigami/quizmaster/internal/middleware"
	"github.com/lshigami/quizmaster/internal/model"
	"github.com/lshigami/quizmaster/internal/validation"
)

// Controllers groups every HTTP controller the API exposes.
type Controllers struct {
	fx.In

	Auth        *controller.AuthController
	Profile     *controller.ProfileController
	Health      *controller.HealthController
	TeacherQuiz *teacherctrl.QuizController
	Quiz        *userctrl.QuizController
	Submission  *userctrl.SubmissionController
}

// NewEngine builds the gin engine with logging, recovery, the error envelope,
// CORS and Swagger UI.
func NewEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.RegisterGin()

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Msg("gin_request")
		return ""
	}))
	r.Use(middleware.Recovery(cfg))
	r.Use(middleware.ErrorHandler(cfg))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return r
}

// Register mounts every route. Authentication is enforced per group.
func Register(r *gin.Engine, cfg *config.Config, authn middleware.Authenticator, ctrls Controllers) {
	r.GET("/health", ctrls.Health.Ready)
	r.GET("/health/live", ctrls.Health.Live)
	r.GET("/health/ready", ctrls.Health.Ready)

	api := r.Group("/api/v1")

	var registerLimit, loginLimit gin.HandlerFunc = passThrough, passThrough
	if cfg.RateLimit.Enabled {
		registerLimit = middleware.NewRateLimiter(3, time.Hour).Middleware()
		loginLimit = middleware.NewRateLimiter(5, time.Minute).Middleware()
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", registerLimit, ctrls.Auth.Register)
		authGroup.POST("/login", loginLimit, ctrls.Auth.Login)
		authGroup.GET("/me", middleware.Authenticate(authn), ctrls.Auth.Me)
	}

	protected := api.Group("", middleware.Authenticate(authn))
	authors := middleware.RequireRoles(model.RoleTeacher, model.RoleAdmin)

	users := protected.Group("/users")
	{
		users.GET("/me", ctrls.Profile.GetMe)
		users.PUT("/me", ctrls.Profile.UpdateMe)
	}

	quizzes := protected.Group("/quizzes")
	{
		quizzes.GET("", ctrls.Quiz.ListQuizzes)
		quizzes.GET("/:id", ctrls.Quiz.GetQuiz)
		quizzes.POST("", authors, ctrls.TeacherQuiz.CreateQuiz)
		quizzes.POST("/explanations", authors, ctrls.TeacherQuiz.DraftExplanations)
		quizzes.PUT("/:id", authors, ctrls.TeacherQuiz.UpdateQuiz)
		quizzes.PATCH("/:id", authors, ctrls.TeacherQuiz.UpdateQuiz)
		quizzes.DELETE("/:id", authors, ctrls.TeacherQuiz.RemoveQuiz)
		quizzes.GET("/:id/submissions", authors, ctrls.TeacherQuiz.ListQuizSubmissions)
	}

	submissions := protected.Group("/submissions")
	{
		submissions.POST("/start", middleware.RequireRoles(model.RoleStudent), ctrls.Submission.StartSubmission)
		submissions.GET("/my-submissions", ctrls.Submission.MySubmissions)
		submissions.POST("/:id/submit", ctrls.Submission.SubmitAnswers)
		submissions.GET("/:id", ctrls.Submission.GetSubmission)
	}
}

func passThrough(c *gin.Context) {
	c.Next()
}
