package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/adapter/repository/repo_interfaces"
	"github.com/nimblebank/core-banking/internal/commons"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/logger"
	"github.com/nimblebank/core-banking/internal/usecase/service_interfaces"
)

var _ service_interfaces.AdminService = (*AdminService)(nil)

type AdminService struct {
	userRepo    repo_interfaces.UserRepository
	accountRepo repo_interfaces.AccountRepository
	auditRepo   repo_interfaces.AuditLogRepository
}

func NewAdminService(
	userRepo repo_interfaces.UserRepository,
	accountRepo repo_interfaces.AccountRepository,
	auditRepo repo_interfaces.AuditLogRepository,
) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
	}
}

func (s *AdminService) ListUsers(ctx context.Context) (commons.Response[models.ListUsersResponse], error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return commons.ErrorResponse[models.ListUsersResponse]("failed to fetch users", "Unable to fetch users right now"), err
	}

	views := make([]models.UserView, 0, len(users))
	for _, user := range users {
		views = append(views, toUserView(user))
	}

	return commons.SuccessResponse("users fetched successfully", models.ListUsersResponse{
		Results: len(views),
		Users:   views,
	}), nil
}

func (s *AdminService) ListAccounts(ctx context.Context) (commons.Response[models.ListAccountsResponse], error) {
	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return commons.ErrorResponse[models.ListAccountsResponse]("failed to fetch accounts", "Unable to fetch accounts right now"), err
	}

	views := make([]models.AccountView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, toAccountView(account))
	}

	return commons.SuccessResponse("accounts fetched successfully", models.ListAccountsResponse{
		Results:  len(views),
		Accounts: views,
	}), nil
}

func (s *AdminService) UpdateAccountStatus(ctx context.Context, adminUserID string, accountID string, req models.UpdateAccountStatusRequest, ipAddress string) (commons.Response[models.UpdateAccountStatusResponse], error) {
	logger.Info("admin service update account status", logger.Fields{
		"adminUserId": adminUserID,
		"accountId":   accountID,
		"status":      req.Status,
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponseFrom[models.UpdateAccountStatusResponse]("validation failed", err), err
	}

	account, err := s.accountRepo.UpdateStatus(ctx, accountID, domain.AccountStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.UpdateAccountStatusResponse]("Account not found"), domain.ErrAccountNotFound
		}
		return commons.ErrorResponse[models.UpdateAccountStatusResponse]("failed to update account status", "Unable to update account right now"), err
	}

	if auditErr := s.auditRepo.Create(ctx, domain.AuditLog{
		UserID:    adminUserID,
		Action:    domain.AuditActionUpdateAccountStatus,
		Details:   fmt.Sprintf("account %s set to %s", accountID, req.Status),
		IPAddress: ipAddress,
	}); auditErr != nil {
		logger.Error("audit log write failed", auditErr, logger.Fields{
			"adminUserId": adminUserID,
			"accountId":   accountID,
		})
	}

	return commons.SuccessResponse("account status updated", models.UpdateAccountStatusResponse{
		Account: toAccountView(account),
	}), nil
}
