package service_interfaces

import (
	"context"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/commons"
)

type AccountService interface {
	GetMyAccount(ctx context.Context, userID string) (commons.Response[models.GetAccountResponse], error)
}
