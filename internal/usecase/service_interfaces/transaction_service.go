package service_interfaces

import (
	"context"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/commons"
)

type TransactionService interface {
	Deposit(ctx context.Context, userID string, req models.DepositRequest) (commons.Response[models.MutationResponse], error)
	Withdraw(ctx context.Context, userID string, req models.WithdrawRequest) (commons.Response[models.MutationResponse], error)
	Transfer(ctx context.Context, userID string, req models.TransferRequest) (commons.Response[models.MutationResponse], error)
	RequestMoney(ctx context.Context, userID string, req models.RequestMoneyRequest) (commons.Response[models.RequestMoneyResponse], error)
	GetHistory(ctx context.Context, userID string, query models.HistoryQuery) (commons.Response[models.HistoryResponse], error)
	GetAnalytics(ctx context.Context, userID string) (commons.Response[models.AnalyticsResponse], error)
}
