package service_interfaces

import (
	"context"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/commons"
)

type AdminService interface {
	ListUsers(ctx context.Context) (commons.Response[models.ListUsersResponse], error)
	ListAccounts(ctx context.Context) (commons.Response[models.ListAccountsResponse], error)
	UpdateAccountStatus(ctx context.Context, adminUserID string, accountID string, req models.UpdateAccountStatusRequest, ipAddress string) (commons.Response[models.UpdateAccountStatusResponse], error)
}
