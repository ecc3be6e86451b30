package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/adapter/repository/memory"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/usecase/services"
)

func TestAdminServiceUpdateAccountStatus(t *testing.T) {
	ctx := context.Background()
	userRepo := memory.NewUserRepository()
	accountRepo := memory.NewAccountRepository()
	auditRepo := memory.NewAuditLogRepository()
	svc := services.NewAdminService(userRepo, accountRepo, auditRepo)

	user, err := userRepo.Create(ctx, domain.User{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	account, err := accountRepo.Create(ctx, domain.Account{
		UserID:        user.ID,
		AccountNumber: "1000000001",
		Balance:       decimal.Zero,
		Status:        domain.AccountStatusActive,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	resp, err := svc.UpdateAccountStatus(ctx, "admin-1", account.ID, models.UpdateAccountStatusRequest{Status: "frozen"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if resp.Data.Account.Status != "frozen" {
		t.Fatalf("expected frozen account, got %s", resp.Data.Account.Status)
	}

	logs := auditRepo.Entries()
	if len(logs) != 1 || logs[0].Action != domain.AuditActionUpdateAccountStatus {
		t.Fatalf("expected a status-change audit entry, got %+v", logs)
	}

	if _, err := svc.UpdateAccountStatus(ctx, "admin-1", account.ID, models.UpdateAccountStatusRequest{Status: "bogus"}, ""); err == nil {
		t.Fatal("expected validation error for unknown status")
	}

	_, err = svc.UpdateAccountStatus(ctx, "admin-1", "missing-account", models.UpdateAccountStatusRequest{Status: "closed"}, "")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestAdminServiceListings(t *testing.T) {
	ctx := context.Background()
	userRepo := memory.NewUserRepository()
	accountRepo := memory.NewAccountRepository()
	svc := services.NewAdminService(userRepo, accountRepo, memory.NewAuditLogRepository())

	for _, email := range []string{"a@example.com", "b@example.com"} {
		user, err := userRepo.Create(ctx, domain.User{Name: "User", Email: email})
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		if _, err := accountRepo.Create(ctx, domain.Account{
			UserID:        user.ID,
			AccountNumber: "10" + user.ID[:8],
			Status:        domain.AccountStatusActive,
		}); err != nil {
			t.Fatalf("create account: %v", err)
		}
	}

	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if users.Data.Results != 2 {
		t.Fatalf("expected 2 users, got %d", users.Data.Results)
	}

	accounts, err := svc.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if accounts.Data.Results != 2 {
		t.Fatalf("expected 2 accounts, got %d", accounts.Data.Results)
	}
}
