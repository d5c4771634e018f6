package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"github.com/lshigami/quizmaster/config"
	"github.com/lshigami/quizmaster/database"
	_ "github.com/lshigami/quizmaster/docs" // Swagger docs
	"github.com/lshigami/quizmaster/internal/auth"
	"github.com/lshigami/quizmaster/internal/controller"
	teacherctrl "github.com/lshigami/quizmaster/internal/controller/teacher"
	userctrl "github.com/lshigami/quizmaster/internal/controller/user"
	"github.com/lshigami/quizmaster/internal/logger"
	"github.com/lshigami/quizmaster/internal/middleware"
	"github.com/lshigami/quizmaster/internal/repository"
	"github.com/lshigami/quizmaster/internal/router"
	"github.com/lshigami/quizmaster/internal/service"
)

// @title Quizmaster API
// @version 1.0
// @description Teachers author multiple-choice quizzes, students take them within a time limit, results are scored and reviewed.
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			router.NewEngine,
			auth.NewTokenManager,
		),

		fx.Provide(
			repository.NewUserRepository,
			repository.NewQuizRepository,
			repository.NewQuestionRepository,
			repository.NewSubmissionRepository,
			repository.NewAnswerRepository,
		),

		fx.Provide(
			service.NewSubmissionPolicy,
			service.NewAuthService,
			service.NewUserService,
			service.NewQuizService,
			service.NewSubmissionService,
			service.NewExplanationService,
			func(s service.AuthService) middleware.Authenticator { return s },
		),

		fx.Provide(
			controller.NewAuthController,
			controller.NewProfileController,
			controller.NewHealthController,
			teacherctrl.NewQuizController,
			userctrl.NewQuizController,
			userctrl.NewSubmissionController,
		),

		fx.Invoke(logger.Configure),
		fx.Invoke(database.Migrate),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop application cleanly")
	}
}

// RegisterRoutesAndStartServer mounts the API and ties the HTTP server to the
// fx lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	engine *gin.Engine,
	cfg *config.Config,
	authn middleware.Authenticator,
	ctrls router.Controllers,
) {
	router.Register(engine, cfg, authn, ctrls)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Quizmaster API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}
