package service_interfaces

import (
	"context"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/commons"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest, ipAddress string) (commons.Response[models.AuthResponse], error)
	Login(ctx context.Context, req models.LoginRequest, ipAddress string) (commons.Response[models.AuthResponse], error)
}
