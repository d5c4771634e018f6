package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lshigami/quizmaster/config"
	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/auth"
	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(cfg), ErrorHandler(cfg))
	return r
}

func do(r http.Handler, method, path, bearer string) (*httptest.ResponseRecorder, dto.ErrorResponse) {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body dto.ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

var teacher = auth.Actor{ID: uuid.New(), Email: "t@example.com", Role: model.RoleTeacher}

func fakeAuthenticator() Authenticator {
	return AuthenticatorFunc(func(_ context.Context, token string) (auth.Actor, error) {
		if token == "good" {
			return teacher, nil
		}
		return auth.Actor{}, apperr.Unauthorized("Invalid or expired token")
	})
}

func TestAuthenticate(t *testing.T) {
	r := newEngine(&config.Config{})
	r.GET("/me", Authenticate(fakeAuthenticator()), func(c *gin.Context) {
		actor, _ := auth.CurrentActor(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"rejected token", "Bearer bad", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(r, http.MethodGet, "/me", tt.header)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.status == http.StatusUnauthorized && (body.StatusCode != 401 || body.Path != "/me") {
				t.Errorf("envelope = %+v", body)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	r := newEngine(&config.Config{})
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	r.GET("/authors", Authenticate(fakeAuthenticator()), RequireRoles(model.RoleTeacher, model.RoleAdmin), ok)
	r.GET("/students", Authenticate(fakeAuthenticator()), RequireRoles(model.RoleStudent), ok)
	r.GET("/anonymous", RequireRoles(model.RoleStudent), ok)

	if w, _ := do(r, http.MethodGet, "/authors", "Bearer good"); w.Code != http.StatusNoContent {
		t.Errorf("teacher on author route = %d", w.Code)
	}
	w, body := do(r, http.MethodGet, "/students", "Bearer good")
	if w.Code != http.StatusForbidden || body.Error != "Forbidden" {
		t.Errorf("teacher on student route = %d %+v", w.Code, body)
	}
	if w, _ := do(r, http.MethodGet, "/anonymous", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no actor = %d, want 401", w.Code)
	}
}

func TestRateLimiterRefillsOverWindow(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d refused within burst", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request allowed")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other client throttled")
	}

	now = now.Add(20 * time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("token not refilled after window/burst")
	}
}

func TestRateLimiterForgetsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("idle")
	now = now.Add(3 * time.Hour)
	rl.Allow("fresh")
	if _, ok := rl.visitors["idle"]; ok {
		t.Error("idle visitor kept past TTL")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	r := newEngine(&config.Config{})
	r.POST("/login", NewRateLimiter(1, time.Minute).Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w, _ := do(r, http.MethodPost, "/login", ""); w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}
	w, body := do(r, http.MethodPost, "/login", "")
	if w.Code != http.StatusTooManyRequests || body.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second request = %d %+v", w.Code, body)
	}
}

func TestErrorHandlerMasksInternalInProduction(t *testing.T) {
	failing := func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
	}
	notFound := func(c *gin.Context) {
		_ = c.Error(apperr.NotFound("Quiz with ID %s not found", "abc"))
	}
	panics := func(*gin.Context) { panic("boom") }

	dev := newEngine(&config.Config{Env: config.EnvDevelopment})
	prod := newEngine(&config.Config{Env: config.EnvProduction})
	for _, r := range []*gin.Engine{dev, prod} {
		r.GET("/fail", failing)
		r.GET("/missing", notFound)
		r.GET("/panic", panics)
	}

	w, body := do(prod, http.MethodGet, "/fail", "")
	if w.Code != http.StatusInternalServerError || body.Message != maskedMessage {
		t.Errorf("production internal = %d %q", w.Code, body.Message)
	}
	_, body = do(dev, http.MethodGet, "/fail", "")
	if body.Message == maskedMessage {
		t.Errorf("development internal masked")
	}
	w, body = do(prod, http.MethodGet, "/missing", "")
	if w.Code != http.StatusNotFound || body.Message != "Quiz with ID abc not found" || body.Error != "Not Found" {
		t.Errorf("production not found = %d %+v", w.Code, body)
	}
	if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
		t.Errorf("timestamp %q: %v", body.Timestamp, err)
	}
	w, body = do(prod, http.MethodGet, "/panic", "")
	if w.Code != http.StatusInternalServerError || body.Message != maskedMessage {
		t.Errorf("panic = %d %+v", w.Code, body)
	}
}

func TestErrorHandlerLeavesWrittenResponses(t *testing.T) {
	r := newEngine(&config.Config{})
	r.GET("/written", func(c *gin.Context) {
		c.String(http.StatusAccepted, "done")
		_ = c.Error(errors.New("logged only"))
	})
	w, _ := do(r, http.MethodGet, "/written", "")
	if w.Code != http.StatusAccepted || w.Body.String() != "done" {
		t.Errorf("response = %d %q", w.Code, w.Body.String())
	}
}
