package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != EnvDevelopment || cfg.IsProduction() {
		t.Errorf("env = %q", cfg.Env)
	}
	if cfg.Server.Port != "8080" || cfg.Database.Driver != "postgres" {
		t.Errorf("server/database = %+v %+v", cfg.Server, cfg.Database)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("token ttl = %s", cfg.Auth.TokenTTL)
	}
	if cfg.Quiz.EnforceTimeLimit || cfg.Quiz.SubmissionGrace != 30*time.Second {
		t.Errorf("quiz policy = %+v", cfg.Quiz)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("rate limiting disabled by default")
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != devFrontendURL {
		t.Errorf("origins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(newViper(map[string]any{
		"DATABASE_DRIVER":         "SQLite",
		"DATABASE_PATH":           "/tmp/q.db",
		"FRONTEND_URL":            " https://a.example.com , ,https://b.example.com",
		"JWT_EXPIRES_IN":          "90m",
		"QUIZ_ENFORCE_TIME_LIMIT": "true",
		"QUIZ_SUBMISSION_GRACE":   "1m",
		"RATE_LIMIT_ENABLED":      "false",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "/tmp/q.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if got := cfg.Server.AllowedOrigins; len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Errorf("origins = %q", got)
	}
	if cfg.Auth.TokenTTL != 90*time.Minute {
		t.Errorf("token ttl = %s", cfg.Auth.TokenTTL)
	}
	if !cfg.Quiz.EnforceTimeLimit || cfg.Quiz.SubmissionGrace != time.Minute {
		t.Errorf("quiz policy = %+v", cfg.Quiz)
	}
	if cfg.RateLimit.Enabled {
		t.Error("rate limiting still enabled")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := map[string]map[string]any{
		"unknown driver":          {"DATABASE_DRIVER": "mysql"},
		"zero token ttl":          {"JWT_EXPIRES_IN": "0s"},
		"production dev secret":   {"APP_ENV": "production", "FRONTEND_URL": "https://quiz.example.com"},
		"production dev frontend": {"APP_ENV": "PRODUCTION", "JWT_SECRET": "s3cret"},
	}
	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(newViper(values)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	cfg, err := Load(newViper(map[string]any{
		"APP_ENV":      "production",
		"JWT_SECRET":   "s3cret",
		"FRONTEND_URL": "https://quiz.example.com",
	}))
	if err != nil {
		t.Fatalf("valid production config: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false")
	}
}
