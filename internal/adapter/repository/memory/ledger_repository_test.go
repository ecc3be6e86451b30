package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nimblebank/core-banking/internal/adapter/repository/memory"
	"github.com/nimblebank/core-banking/internal/domain"
)

func TestLedgerRepositoryUpdateStatusPendingOnly(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLedgerRepository()

	from := "acc-1"
	entry, err := repo.Create(ctx, domain.LedgerEntry{
		FromAccountID: &from,
		Amount:        decimal.NewFromInt(10),
		Kind:          domain.LedgerKindRequest,
		Status:        domain.LedgerStatusPending,
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	if err := repo.UpdateStatus(ctx, entry.ID, domain.LedgerStatusCompleted); err != nil {
		t.Fatalf("expected pending entry to transition, got %v", err)
	}

	// The transition happens at most once; a completed entry is immutable.
	err = repo.UpdateStatus(ctx, entry.ID, domain.LedgerStatusFailed)
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected second transition to be rejected, got %v", err)
	}

	err = repo.UpdateStatus(ctx, "missing-entry", domain.LedgerStatusCompleted)
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected unknown entry to be rejected, got %v", err)
	}
}

func TestAccountRepositoryDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAccountRepository()

	seed := domain.Account{
		UserID:        "user-1",
		AccountNumber: "1000000001",
		Balance:       decimal.Zero,
		Status:        domain.AccountStatusActive,
	}
	if _, err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("create account: %v", err)
	}

	seed.UserID = "user-2"
	_, err := repo.Create(ctx, seed)
	if !errors.Is(err, domain.ErrAccountNumberTaken) {
		t.Fatalf("expected taken account number, got %v", err)
	}
}

func TestAccountRepositoryConditionalDebit(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAccountRepository()

	account, err := repo.Create(ctx, domain.Account{
		UserID:        "user-1",
		AccountNumber: "1000000001",
		Balance:       decimal.NewFromInt(100),
		Status:        domain.AccountStatusActive,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	if err := repo.DebitIfSufficient(ctx, account.ID, decimal.NewFromInt(60)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	err = repo.DebitIfSufficient(ctx, account.ID, decimal.NewFromInt(60))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	if _, err := repo.UpdateStatus(ctx, account.ID, domain.AccountStatusFrozen); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	err = repo.DebitIfSufficient(ctx, account.ID, decimal.NewFromInt(1))
	if !errors.Is(err, domain.ErrAccountNotActive) {
		t.Fatalf("expected not-active rejection, got %v", err)
	}
	err = repo.Credit(ctx, account.ID, decimal.NewFromInt(1))
	if !errors.Is(err, domain.ErrAccountNotActive) {
		t.Fatalf("expected not-active rejection on credit, got %v", err)
	}

	got, err := repo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !got.Balance.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected balance 40, got %s", got.Balance)
	}
	if got.Version != 2 {
		t.Fatalf("expected version 2 after one write, got %d", got.Version)
	}
}
