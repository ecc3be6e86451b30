package service_interfaces

import (
	"context"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/commons"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (commons.Response[models.ProfileResponse], error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (commons.Response[models.ProfileResponse], error)
	ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) (commons.Response[models.ChangePasswordResponse], error)
}
