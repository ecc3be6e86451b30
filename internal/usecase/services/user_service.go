package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/adapter/repository/repo_interfaces"
	"github.com/nimblebank/core-banking/internal/commons"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/logger"
	"github.com/nimblebank/core-banking/internal/usecase/service_interfaces"
)

var _ service_interfaces.UserService = (*UserService)(nil)

type UserService struct {
	userRepo repo_interfaces.UserRepository
}

func NewUserService(userRepo repo_interfaces.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (commons.Response[models.ProfileResponse], error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.ProfileResponse]("User not found"), domain.ErrRecordNotFound
		}
		return commons.ErrorResponse[models.ProfileResponse]("failed to load profile", "Unable to load profile right now"), err
	}

	return commons.SuccessResponse("profile retrieved", models.ProfileResponse{
		User: toUserView(user),
	}), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (commons.Response[models.ProfileResponse], error) {
	logger.Info("user service update profile request", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponseFrom[models.ProfileResponse]("validation failed", err), domain.ErrValidation
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, strings.TrimSpace(req.Name), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.ProfileResponse]("User not found"), domain.ErrRecordNotFound
		}
		if errors.Is(err, domain.ErrEmailTaken) {
			return commons.ErrorResponse[models.ProfileResponse]("Email already in use"), domain.ErrEmailTaken
		}
		return commons.ErrorResponse[models.ProfileResponse]("failed to update profile", "Unable to update profile right now"), err
	}

	logger.Info("user service update profile success", logger.Fields{"userId": user.ID})

	return commons.SuccessResponse("profile updated", models.ProfileResponse{
		User: toUserView(user),
	}), nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) (commons.Response[models.ChangePasswordResponse], error) {
	logger.Info("user service change password request", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponseFrom[models.ChangePasswordResponse]("validation failed", err), domain.ErrValidation
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.ChangePasswordResponse]("User not found"), domain.ErrRecordNotFound
		}
		return commons.ErrorResponse[models.ChangePasswordResponse]("failed to change password", "Unable to change password right now"), err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return commons.ErrorResponse[models.ChangePasswordResponse]("Incorrect current password"), domain.ErrCredentialRejected
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return commons.ErrorResponse[models.ChangePasswordResponse]("failed to change password", "Unable to change password right now"), err
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userID, string(newHash)); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.ChangePasswordResponse]("User not found"), domain.ErrRecordNotFound
		}
		return commons.ErrorResponse[models.ChangePasswordResponse]("failed to change password", "Unable to change password right now"), err
	}

	logger.Info("user service change password success", logger.Fields{"userId": userID})

	return commons.SuccessResponse("Password updated successfully", models.ChangePasswordResponse{
		Updated: true,
	}), nil
}
