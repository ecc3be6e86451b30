package repo_interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nimblebank/core-banking/internal/domain"
)

// AccountRepository is the port for the account store. Balance writes are
// conditional updates applied by the store itself, never read-then-write
// sequences in the caller.
type AccountRepository interface {
	// Create inserts a new account. Returns domain.ErrAccountNumberTaken when
	// the account number is already in use, so callers can draw a fresh one.
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByUserID(ctx context.Context, userID string) (domain.Account, error)
	GetAll(ctx context.Context) ([]domain.Account, error)

	// DebitIfSufficient subtracts amount only when the account is active and
	// holds at least amount at write time. Returns domain.ErrInsufficientFunds
	// when the condition did not hold, domain.ErrAccountNotActive or
	// domain.ErrAccountNotFound when the account cannot take debits at all.
	DebitIfSufficient(ctx context.Context, accountID string, amount decimal.Decimal) error

	// Credit adds amount to an active account. Same not-found / not-active
	// errors as DebitIfSufficient.
	Credit(ctx context.Context, accountID string, amount decimal.Decimal) error

	UpdateStatus(ctx context.Context, accountID string, status domain.AccountStatus) (domain.Account, error)
}
