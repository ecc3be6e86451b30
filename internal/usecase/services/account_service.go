package services

import (
	"context"
	"errors"
	"time"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/adapter/repository/repo_interfaces"
	"github.com/nimblebank/core-banking/internal/commons"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/usecase/service_interfaces"
)

var _ service_interfaces.AccountService = (*AccountService)(nil)

type AccountService struct {
	accountRepo repo_interfaces.AccountRepository
}

func NewAccountService(accountRepo repo_interfaces.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

func (s *AccountService) GetMyAccount(ctx context.Context, userID string) (commons.Response[models.GetAccountResponse], error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.GetAccountResponse]("Account not found"), domain.ErrAccountNotFound
		}
		return commons.ErrorResponse[models.GetAccountResponse]("failed to fetch account", "Unable to fetch account right now"), err
	}

	return commons.SuccessResponse("account fetched successfully", models.GetAccountResponse{
		Account: toAccountView(account),
	}), nil
}

func toAccountView(account domain.Account) models.AccountView {
	return models.AccountView{
		ID:            account.ID,
		UserID:        account.UserID,
		AccountNumber: account.AccountNumber,
		Balance:       account.Balance,
		Status:        string(account.Status),
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
	}
}
