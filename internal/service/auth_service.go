package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/auth"
	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/model"
	"github.com/lshigami/quizmaster/internal/repository"
)

const msgInvalidCredentials = "Invalid credentials"

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	// Authenticate resolves a bearer token to a live user.
	Authenticate(ctx context.Context, token string) (auth.Actor, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("Email already in use")
	case !isNotFound(err):
		return nil, apperr.Internal("Failed to register", fmt.Errorf("find user by email: %w", err))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to register", err)
	}
	role := model.RoleStudent
	if req.Role != "" {
		role = model.Role(req.Role)
	}
	user := model.User{
		Email:    req.Email,
		Password: hash,
		Name:     strings.TrimSpace(req.Name),
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("Email already in use")
		}
		log.Error().Err(err).Msg("Failed to create user")
		return nil, apperr.Internal("Failed to register", fmt.Errorf("create user: %w", err))
	}
	log.Info().Str("userID", user.ID.String()).Str("role", string(user.Role)).Msg("User registered")

	return s.issue(&user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, apperr.Internal("Failed to log in", fmt.Errorf("find user by email: %w", err))
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		log.Warn().Str("userID", user.ID.String()).Msg("Login with wrong password")
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	return s.issue(user)
}

func (s *authService) Authenticate(ctx context.Context, token string) (auth.Actor, error) {
	userID, _, err := s.tokens.Parse(token)
	if err != nil {
		return auth.Actor{}, apperr.Unauthorized("Invalid or expired token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return auth.Actor{}, apperr.Unauthorized("User no longer exists")
		}
		return auth.Actor{}, apperr.Internal("Failed to authenticate", fmt.Errorf("find user %s: %w", userID, err))
	}
	return auth.ActorFromUser(user), nil
}

func (s *authService) issue(user *model.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal("Failed to issue token", err)
	}
	return &dto.AuthResponse{AccessToken: token, User: toUserResponse(user)}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
