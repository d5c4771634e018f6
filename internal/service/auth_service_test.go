package service

import (
	"context"
	"testing"
	"time"

	"github.com/lshigami/quizmaster/config"
	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/auth"
	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/model"
	"github.com/lshigami/quizmaster/internal/repository"
	"github.com/lshigami/quizmaster/internal/testutil"
)

func newAuthService(t *testing.T) (AuthService, UserService) {
	t.Helper()
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	tokens := auth.NewTokenManager(&config.Config{Auth: config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour}})
	return NewAuthService(users, tokens), NewUserService(users)
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{
		Email:    "  Ada@Example.COM ",
		Password: "correct-horse",
		Name:     " Ada ",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registered.User.Email != "ada@example.com" || registered.User.Name != "Ada" {
		t.Errorf("registered user = %+v", registered.User)
	}
	if registered.User.Role != string(model.RoleStudent) {
		t.Errorf("default role = %s, want STUDENT", registered.User.Role)
	}
	if registered.AccessToken == "" {
		t.Fatal("empty access token")
	}

	actor, err := svc.Authenticate(ctx, registered.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if actor.ID != registered.User.ID || actor.Role != model.RoleStudent {
		t.Errorf("actor = %+v", actor)
	}

	loggedIn, err := svc.Login(ctx, dto.LoginRequest{Email: "ADA@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.User.ID != registered.User.ID {
		t.Errorf("login user = %s, want %s", loggedIn.User.ID, registered.User.ID)
	}
}

func TestRegisterRejectsDuplicateEmailAndBadInput(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	req := dto.RegisterRequest{Email: "dup@example.com", Password: "password1", Name: "Dup", Role: "TEACHER"}

	resp, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.Role != string(model.RoleTeacher) {
		t.Errorf("role = %s, want TEACHER", resp.User.Role)
	}

	req.Email = "DUP@example.com"
	_, err = svc.Register(ctx, req)
	assertKind(t, err, apperr.KindConflict)

	cases := map[string]dto.RegisterRequest{
		"self-assigned admin": {Email: "a@example.com", Password: "password1", Name: "A", Role: "ADMIN"},
		"short password":      {Email: "b@example.com", Password: "short", Name: "B"},
		"bad email":           {Email: "not-an-email", Password: "password1", Name: "C"},
		"blank name":          {Email: "d@example.com", Password: "password1", Name: "   "},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, req)
			assertKind(t, err, apperr.KindValidation)
		})
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, dto.RegisterRequest{Email: "eve@example.com", Password: "password1", Name: "Eve"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, wrongPassword := svc.Login(ctx, dto.LoginRequest{Email: "eve@example.com", Password: "password2"})
	_, unknownEmail := svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "password1"})
	assertKind(t, wrongPassword, apperr.KindUnauthorized)
	assertKind(t, unknownEmail, apperr.KindUnauthorized)
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("messages differ: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "garbage")
	assertKind(t, err, apperr.KindUnauthorized)

	other := auth.NewTokenManager(&config.Config{Auth: config.Auth{JWTSecret: "other-secret", TokenTTL: time.Hour}})
	token, err := other.Issue(&model.User{Email: "x@example.com", Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err = svc.Authenticate(ctx, token)
	assertKind(t, err, apperr.KindUnauthorized)
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	db := testutil.NewDB(t)
	tokens := auth.NewTokenManager(&config.Config{Auth: config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour}})
	svc := NewAuthService(repository.NewUserRepository(db), tokens)

	user := testutil.CreateUser(t, db, "gone@example.com", model.RoleStudent)
	token, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := db.Delete(&model.User{}, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), token)
	assertKind(t, err, apperr.KindUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, dto.RegisterRequest{Email: "pat@example.com", Password: "password1", Name: "Pat"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	updated, err := users.UpdateProfile(ctx, registered.User.ID, dto.UpdateProfileRequest{
		Name:     strPtr(" Patricia "),
		Password: strPtr("new-password"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Patricia" || updated.Email != "pat@example.com" {
		t.Errorf("updated profile = %+v", updated)
	}

	if _, err := svc.Login(ctx, dto.LoginRequest{Email: "pat@example.com", Password: "new-password"}); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "pat@example.com", Password: "password1"})
	assertKind(t, err, apperr.KindUnauthorized)

	_, err = users.UpdateProfile(ctx, registered.User.ID, dto.UpdateProfileRequest{Password: strPtr("short")})
	assertKind(t, err, apperr.KindValidation)

	unchanged, err := users.UpdateProfile(ctx, registered.User.ID, dto.UpdateProfileRequest{})
	if err != nil {
		t.Fatalf("empty UpdateProfile: %v", err)
	}
	if unchanged.Name != "Patricia" {
		t.Errorf("empty update changed name to %q", unchanged.Name)
	}
}
