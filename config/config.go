package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devJWTSecret   = "dev-secret-change-me"
	devFrontendURL = "http://localhost:3000"
)

type Config struct {
	Env       string
	LogLevel  string
	Server    Server
	Database  Database
	Auth      Auth
	Quiz      Quiz
	Gemini    Gemini
	RateLimit RateLimit
}

type Server struct {
	Port           string
	AllowedOrigins []string
}

type Database struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // sqlite file
}

type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Quiz holds the submission policy knobs.
type Quiz struct {
	EnforceTimeLimit bool
	SubmissionGrace  time.Duration
}

type Gemini struct {
	APIKey string
	Model  string
}

type RateLimit struct {
	Enabled bool
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("FRONTEND_URL", devFrontendURL)
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_PATH", "quizmaster.db")
	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("QUIZ_ENFORCE_TIME_LIMIT", false)
	v.SetDefault("QUIZ_SUBMISSION_GRACE", "30s")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
}

func NewConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded, using process environment")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return Load(v)
}

// Load builds a Config from an already prepared viper instance.
func Load(v *viper.Viper) (*Config, error) {
	var config Config

	config.Env = strings.ToLower(v.GetString("APP_ENV"))
	config.LogLevel = v.GetString("LOG_LEVEL")

	config.Server.Port = v.GetString("SERVER_PORT")
	config.Server.AllowedOrigins = splitOrigins(v.GetString("FRONTEND_URL"))

	config.Database.Driver = strings.ToLower(v.GetString("DATABASE_DRIVER"))
	config.Database.Host = v.GetString("DATABASE_HOST")
	config.Database.Port = v.GetString("DATABASE_PORT")
	config.Database.User = v.GetString("DATABASE_USER")
	config.Database.Password = v.GetString("DATABASE_PASSWORD")
	config.Database.Name = v.GetString("DATABASE_NAME")
	config.Database.SSLMode = v.GetString("DATABASE_SSLMODE")
	config.Database.Path = v.GetString("DATABASE_PATH")

	config.Auth.JWTSecret = v.GetString("JWT_SECRET")
	config.Auth.TokenTTL = v.GetDuration("JWT_EXPIRES_IN")

	config.Quiz.EnforceTimeLimit = v.GetBool("QUIZ_ENFORCE_TIME_LIMIT")
	config.Quiz.SubmissionGrace = v.GetDuration("QUIZ_SUBMISSION_GRACE")

	config.Gemini.APIKey = v.GetString("GEMINI_API_KEY")
	config.Gemini.Model = v.GetString("GEMINI_MODEL")

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("env", config.Env).
		Str("port", config.Server.Port).
		Str("db_driver", config.Database.Driver).
		Strs("allowed_origins", config.Server.AllowedOrigins).
		Bool("gemini_enabled", config.Gemini.APIKey != "").
		Bool("enforce_time_limit", config.Quiz.EnforceTimeLimit).
		Msg("Config loaded")
	return &config, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.New("DATABASE_DRIVER must be either postgres or sqlite")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_EXPIRES_IN must be a positive duration")
	}
	if c.IsProduction() {
		if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == devJWTSecret {
			return errors.New("JWT_SECRET must be set in production")
		}
		if len(c.Server.AllowedOrigins) == 0 || c.Server.AllowedOrigins[0] == devFrontendURL {
			return errors.New("FRONTEND_URL environment variable is required in production")
		}
	}
	return nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
