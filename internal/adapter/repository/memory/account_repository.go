package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nimblebank/core-banking/internal/domain"
)

// AccountRepository is an in-memory account store. It offers the same
// conditional-write semantics as the postgres adapter: the balance check and
// the mutation happen under one lock acquisition, so concurrent debits
// serialize against the stored balance rather than a stale read.
type AccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	byNumber map[string]string
	byUser   map[string]string
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*domain.Account),
		byNumber: make(map[string]string),
		byUser:   make(map[string]string),
	}
}

func (r *AccountRepository) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byNumber[account.AccountNumber]; exists {
		return domain.Account{}, domain.ErrAccountNumberTaken
	}

	now := time.Now()
	account.ID = uuid.NewString()
	account.Version = 1
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := account
	r.accounts[account.ID] = &stored
	r.byNumber[account.AccountNumber] = account.ID
	r.byUser[account.UserID] = account.ID

	return account, nil
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(id)
}

func (r *AccountRepository) GetByUserID(_ context.Context, userID string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(r.byUser[userID])
}

func (r *AccountRepository) GetAll(_ context.Context) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := make([]domain.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, *account)
	}

	return accounts, nil
}

func (r *AccountRepository) DebitIfSufficient(_ context.Context, accountID string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if account.Status != domain.AccountStatusActive {
		return domain.ErrAccountNotActive
	}
	if account.Balance.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}

	account.Balance = account.Balance.Sub(amount)
	account.Version++
	account.UpdatedAt = time.Now()
	return nil
}

func (r *AccountRepository) Credit(_ context.Context, accountID string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if account.Status != domain.AccountStatusActive {
		return domain.ErrAccountNotActive
	}

	account.Balance = account.Balance.Add(amount)
	account.Version++
	account.UpdatedAt = time.Now()
	return nil
}

func (r *AccountRepository) UpdateStatus(_ context.Context, accountID string, status domain.AccountStatus) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	account.Status = status
	account.UpdatedAt = time.Now()
	return *account, nil
}

func (r *AccountRepository) lookup(id string) (domain.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	return *account, nil
}
