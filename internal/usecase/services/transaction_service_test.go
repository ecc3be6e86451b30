package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/adapter/repository/memory"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/usecase/services"
)

const testPin = "1234"

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, _ string, pin string) error {
	if pin != testPin {
		return domain.ErrCredentialRejected
	}
	return nil
}

type fixture struct {
	accountRepo *memory.AccountRepository
	ledgerRepo  *memory.LedgerRepository
	userRepo    *memory.UserRepository
	service     *services.TransactionService
}

func newFixture() *fixture {
	accountRepo := memory.NewAccountRepository()
	ledgerRepo := memory.NewLedgerRepository()
	userRepo := memory.NewUserRepository()

	return &fixture{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		userRepo:    userRepo,
		service:     services.NewTransactionService(accountRepo, ledgerRepo, userRepo, stubVerifier{}),
	}
}

func (f *fixture) seedUser(t *testing.T, email string, balance int64) (domain.User, domain.Account) {
	t.Helper()
	ctx := context.Background()

	user, err := f.userRepo.Create(ctx, domain.User{
		Name:  "Test User",
		Email: email,
		Role:  domain.UserRoleCustomer,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	account, err := f.accountRepo.Create(ctx, domain.Account{
		UserID:        user.ID,
		AccountNumber: "10" + user.ID[:8],
		Balance:       decimal.NewFromInt(balance),
		Status:        domain.AccountStatusActive,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	return user, account
}

func (f *fixture) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	account, err := f.accountRepo.GetByID(context.Background(), accountID)
	if err != nil {
		t.Fatalf("fetch account: %v", err)
	}
	return account.Balance
}

func TestTransactionLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user, account := f.seedUser(t, "alice@example.com", 0)
	_, recipientAccount := f.seedUser(t, "bob@example.com", 0)

	resp, err := f.service.Deposit(ctx, user.ID, models.DepositRequest{
		Amount:         decimal.NewFromInt(1000),
		TransactionPin: testPin,
	})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !resp.Data.NewBalance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected balance 1000 after deposit, got %s", resp.Data.NewBalance)
	}

	_, err = f.service.Withdraw(ctx, user.ID, models.WithdrawRequest{
		Amount:         decimal.NewFromInt(1500),
		TransactionPin: testPin,
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if !f.balance(t, account.ID).Equal(decimal.NewFromInt(1000)) {
		t.Fatal("rejected withdrawal must not change the balance")
	}

	resp, err = f.service.Withdraw(ctx, user.ID, models.WithdrawRequest{
		Amount:         decimal.NewFromInt(400),
		TransactionPin: testPin,
	})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !resp.Data.NewBalance.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected balance 600 after withdrawal, got %s", resp.Data.NewBalance)
	}

	resp, err = f.service.Transfer(ctx, user.ID, models.TransferRequest{
		ToEmail:        "bob@example.com",
		Amount:         decimal.NewFromInt(600),
		TransactionPin: testPin,
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !resp.Data.NewBalance.Equal(decimal.Zero) {
		t.Fatalf("expected zero balance after transfer, got %s", resp.Data.NewBalance)
	}
	if !f.balance(t, recipientAccount.ID).Equal(decimal.NewFromInt(600)) {
		t.Fatal("recipient did not receive the transferred amount")
	}

	_, err = f.service.Transfer(ctx, user.ID, models.TransferRequest{
		ToEmail:        "bob@example.com",
		Amount:         decimal.NewFromInt(1),
		TransactionPin: testPin,
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds on empty account, got %v", err)
	}
}

func TestWithdrawConcurrentDoubleSpend(t *testing.T) {
	f := newFixture()
	user, account := f.seedUser(t, "alice@example.com", 100)

	const workers = 10
	amount := decimal.NewFromInt(30)

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Withdraw(context.Background(), user.ID, models.WithdrawRequest{
				Amount:         amount,
				TransactionPin: testPin,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("unexpected withdrawal error: %v", err)
		}
	}

	if succeeded != 3 {
		t.Fatalf("expected exactly 3 withdrawals of 30 from 100, got %d", succeeded)
	}
	if !f.balance(t, account.ID).Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected final balance 10, got %s", f.balance(t, account.ID))
	}
}

func TestTransferToSelfRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user, account := f.seedUser(t, "alice@example.com", 500)

	_, err := f.service.Transfer(ctx, user.ID, models.TransferRequest{
		ToEmail:        "alice@example.com",
		Amount:         decimal.NewFromInt(100),
		TransactionPin: testPin,
	})
	if !errors.Is(err, domain.ErrSelfTransferRejected) {
		t.Fatalf("expected self transfer rejection, got %v", err)
	}

	if !f.balance(t, account.ID).Equal(decimal.NewFromInt(500)) {
		t.Fatal("self transfer must not change the balance")
	}
	entries, err := f.ledgerRepo.ListByAccount(ctx, account.ID, domain.LedgerFilter{})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("self transfer must not record a ledger entry, found %d", len(entries))
	}
}

func TestTransferRejectedPinHasNoSideEffects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user, account := f.seedUser(t, "alice@example.com", 500)
	_, recipientAccount := f.seedUser(t, "bob@example.com", 0)

	_, err := f.service.Transfer(ctx, user.ID, models.TransferRequest{
		ToEmail:        "bob@example.com",
		Amount:         decimal.NewFromInt(100),
		TransactionPin: "9999",
	})
	if !errors.Is(err, domain.ErrCredentialRejected) {
		t.Fatalf("expected credential rejection, got %v", err)
	}

	if !f.balance(t, account.ID).Equal(decimal.NewFromInt(500)) {
		t.Fatal("sender balance changed after rejected pin")
	}
	if !f.balance(t, recipientAccount.ID).Equal(decimal.Zero) {
		t.Fatal("recipient balance changed after rejected pin")
	}
}

// failingCreditRepo simulates a store where the credit leg of a transfer
// fails after the debit already applied.
type failingCreditRepo struct {
	*memory.AccountRepository
	failAccountID string
}

func (r *failingCreditRepo) Credit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if accountID == r.failAccountID {
		return domain.ErrStoreUnavailable
	}
	return r.AccountRepository.Credit(ctx, accountID, amount)
}

func TestTransferCompensationRestoresSender(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user, account := f.seedUser(t, "alice@example.com", 500)
	_, recipientAccount := f.seedUser(t, "bob@example.com", 0)

	failing := &failingCreditRepo{AccountRepository: f.accountRepo, failAccountID: recipientAccount.ID}
	svc := services.NewTransactionService(failing, f.ledgerRepo, f.userRepo, stubVerifier{})

	_, err := svc.Transfer(ctx, user.ID, models.TransferRequest{
		ToEmail:        "bob@example.com",
		Amount:         decimal.NewFromInt(200),
		TransactionPin: testPin,
	})
	if !errors.Is(err, domain.ErrTransferFailed) {
		t.Fatalf("expected transfer failure, got %v", err)
	}

	var failure *domain.TransferFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected TransferFailure, got %T", err)
	}
	if failure.ManualInterventionRequired {
		t.Fatal("compensation succeeded, manual intervention must not be flagged")
	}

	if !f.balance(t, account.ID).Equal(decimal.NewFromInt(500)) {
		t.Fatalf("sender balance not restored, got %s", f.balance(t, account.ID))
	}
	if !f.balance(t, recipientAccount.ID).Equal(decimal.Zero) {
		t.Fatal("recipient balance changed on failed transfer")
	}

	entries, err := f.ledgerRepo.ListByAccount(ctx, account.ID, domain.LedgerFilter{})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != domain.LedgerStatusFailed {
		t.Fatalf("expected one failed ledger entry, got %+v", entries)
	}
}

func TestRequestMoneyStaysPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requester, requesterAccount := f.seedUser(t, "alice@example.com", 0)
	_, payerAccount := f.seedUser(t, "bob@example.com", 300)

	resp, err := f.service.RequestMoney(ctx, requester.ID, models.RequestMoneyRequest{
		FromEmail: "bob@example.com",
		Amount:    decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("request money: %v", err)
	}
	if resp.Data.Transaction.Status != string(domain.LedgerStatusPending) {
		t.Fatalf("expected pending request, got %s", resp.Data.Transaction.Status)
	}

	if !f.balance(t, requesterAccount.ID).Equal(decimal.Zero) {
		t.Fatal("money request must not move funds to the requester")
	}
	if !f.balance(t, payerAccount.ID).Equal(decimal.NewFromInt(300)) {
		t.Fatal("money request must not move funds from the payer")
	}
}

func TestRequestMoneyFromSelfRejected(t *testing.T) {
	f := newFixture()
	user, _ := f.seedUser(t, "alice@example.com", 0)

	_, err := f.service.RequestMoney(context.Background(), user.ID, models.RequestMoneyRequest{
		FromEmail: "alice@example.com",
		Amount:    decimal.NewFromInt(10),
	})
	if !errors.Is(err, domain.ErrSelfRequestRejected) {
		t.Fatalf("expected self request rejection, got %v", err)
	}
}

func TestGetHistoryFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user, _ := f.seedUser(t, "alice@example.com", 0)
	f.seedUser(t, "bob@example.com", 0)

	deposits := []int64{100, 250, 100}
	for _, amount := range deposits {
		if _, err := f.service.Deposit(ctx, user.ID, models.DepositRequest{
			Amount:         decimal.NewFromInt(amount),
			TransactionPin: testPin,
		}); err != nil {
			t.Fatalf("deposit: %v", err)
		}
	}
	if _, err := f.service.Withdraw(ctx, user.ID, models.WithdrawRequest{
		Amount:         decimal.NewFromInt(50),
		TransactionPin: testPin,
	}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	all, err := f.service.GetHistory(ctx, user.ID, models.HistoryQuery{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if all.Data.Results != 4 {
		t.Fatalf("expected 4 entries, got %d", all.Data.Results)
	}

	onlyDeposits, err := f.service.GetHistory(ctx, user.ID, models.HistoryQuery{Kind: "deposit"})
	if err != nil {
		t.Fatalf("history by kind: %v", err)
	}
	if onlyDeposits.Data.Results != 3 {
		t.Fatalf("expected 3 deposits, got %d", onlyDeposits.Data.Results)
	}

	byAmount, err := f.service.GetHistory(ctx, user.ID, models.HistoryQuery{Search: "100"})
	if err != nil {
		t.Fatalf("history by amount: %v", err)
	}
	if byAmount.Data.Results != 2 {
		t.Fatalf("expected 2 entries of amount 100, got %d", byAmount.Data.Results)
	}

	if _, err := f.service.GetHistory(ctx, user.ID, models.HistoryQuery{Kind: "bogus"}); err == nil {
		t.Fatal("expected validation error for unknown entry kind")
	}

	// Reading history twice must return identical results.
	again, err := f.service.GetHistory(ctx, user.ID, models.HistoryQuery{})
	if err != nil {
		t.Fatalf("history again: %v", err)
	}
	if again.Data.Results != all.Data.Results {
		t.Fatal("history read must not change stored state")
	}
}

func TestGetAnalyticsSummarizesCompletedEntries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user, _ := f.seedUser(t, "alice@example.com", 0)
	f.seedUser(t, "bob@example.com", 0)

	if _, err := f.service.Deposit(ctx, user.ID, models.DepositRequest{
		Amount:         decimal.NewFromInt(1000),
		TransactionPin: testPin,
	}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := f.service.Transfer(ctx, user.ID, models.TransferRequest{
		ToEmail:        "bob@example.com",
		Amount:         decimal.NewFromInt(400),
		TransactionPin: testPin,
	}); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	// Pending requests must not appear in the monthly totals.
	if _, err := f.service.RequestMoney(ctx, user.ID, models.RequestMoneyRequest{
		FromEmail: "bob@example.com",
		Amount:    decimal.NewFromInt(999),
	}); err != nil {
		t.Fatalf("request money: %v", err)
	}

	resp, err := f.service.GetAnalytics(ctx, user.ID)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}

	var credit, debit decimal.Decimal
	for _, stat := range resp.Data.Stats {
		switch stat.Direction {
		case "credit":
			credit = credit.Add(stat.Total)
		case "debit":
			debit = debit.Add(stat.Total)
		}
	}
	if !credit.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected credit total 1000, got %s", credit)
	}
	if !debit.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected debit total 400, got %s", debit)
	}
}

func TestDepositOnFrozenAccountRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user, account := f.seedUser(t, "alice@example.com", 100)

	if _, err := f.accountRepo.UpdateStatus(ctx, account.ID, domain.AccountStatusFrozen); err != nil {
		t.Fatalf("freeze account: %v", err)
	}

	_, err := f.service.Deposit(ctx, user.ID, models.DepositRequest{
		Amount:         decimal.NewFromInt(10),
		TransactionPin: testPin,
	})
	if !errors.Is(err, domain.ErrAccountNotActive) {
		t.Fatalf("expected not-active rejection, got %v", err)
	}
}

func TestMutationValidationErrorKinds(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user, _ := f.seedUser(t, "alice@example.com", 100)

	_, err := f.service.Deposit(ctx, user.ID, models.DepositRequest{
		Amount:         decimal.Zero,
		TransactionPin: testPin,
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for zero deposit, got %v", err)
	}

	_, err = f.service.Deposit(ctx, user.ID, models.DepositRequest{
		Amount: decimal.NewFromInt(10),
	})
	if !errors.Is(err, domain.ErrCredentialRejected) {
		t.Fatalf("expected credential rejection for missing pin, got %v", err)
	}

	_, err = f.service.Transfer(ctx, user.ID, models.TransferRequest{
		Amount:         decimal.NewFromInt(10),
		TransactionPin: testPin,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation failure for missing toEmail, got %v", err)
	}
}
