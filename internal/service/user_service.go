package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/auth"
	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/repository"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Failed to load profile", fmt.Errorf("find user %s: %w", userID, err))
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Failed to update profile", fmt.Errorf("find user %s: %w", userID, err))
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperr.Internal("Failed to update profile", err)
		}
		fields["password"] = hash
	}
	if len(fields) > 0 {
		if err := s.userRepo.Update(ctx, user, fields); err != nil {
			log.Error().Err(err).Str("userID", userID.String()).Msg("Failed to update user profile")
			return nil, apperr.Internal("Failed to update profile", fmt.Errorf("update user %s: %w", userID, err))
		}
	}
	return s.GetProfile(ctx, userID)
}
