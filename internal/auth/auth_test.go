package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/lshigami/quizmaster/config"
	"github.com/lshigami/quizmaster/internal/model"
)

func newManager(secret string, ttl time.Duration) *TokenManager {
	return NewTokenManager(&config.Config{Auth: config.Auth{JWTSecret: secret, TokenTTL: ttl}})
}

func TestTokenRoundTrip(t *testing.T) {
	m := newManager("secret", time.Hour)
	user := &model.User{ID: uuid.New(), Email: "t@example.com", Role: model.RoleTeacher}

	raw, err := m.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, claims, err := m.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id != user.ID {
		t.Errorf("sub = %s, want %s", id, user.ID)
	}
	if claims.Email != user.Email || claims.Role != model.RoleTeacher {
		t.Errorf("claims = %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("exp - iat = %s, want 1h", got)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := newManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := m.Issue(&model.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := m.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Parse expired = %v, want ErrInvalidToken", err)
	}
}

func TestParseRejectsForeignSecretAndAlgorithm(t *testing.T) {
	issuer := newManager("one", time.Hour)
	verifier := newManager("two", time.Hour)
	raw, _ := issuer.Issue(&model.User{ID: uuid.New()})
	if _, _, err := verifier.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: err = %v", err)
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: uuid.NewString()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, _, err := verifier.Parse(none); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("alg none: err = %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword(hash, "correct horse") {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Error("CheckPassword accepted a wrong password")
	}
}
