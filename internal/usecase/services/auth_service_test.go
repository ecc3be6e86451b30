package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/adapter/repository/memory"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/usecase/services"
)

func newAuthFixture() (*services.AuthService, *memory.AccountRepository, *memory.AuditLogRepository) {
	accountRepo := memory.NewAccountRepository()
	auditRepo := memory.NewAuditLogRepository()
	svc := services.NewAuthService(memory.NewUserRepository(), accountRepo, auditRepo, "test-secret", 1)
	return svc, accountRepo, auditRepo
}

func TestAuthServiceRegisterProvisionsAccount(t *testing.T) {
	svc, _, auditRepo := newAuthFixture()

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "supersecret",
		Pin:      "1234",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if resp.Data.Token == "" {
		t.Fatal("expected a signed token")
	}
	if resp.Data.User.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", resp.Data.User.Email)
	}
	if len(resp.Data.AccountNumber) != 10 {
		t.Fatalf("expected a 10-digit account number, got %q", resp.Data.AccountNumber)
	}

	logs := auditRepo.Entries()
	if len(logs) != 1 || logs[0].Action != domain.AuditActionUserRegister {
		t.Fatalf("expected a register audit entry, got %+v", logs)
	}
}

type collidingAccountRepo struct {
	*memory.AccountRepository
	collisions int
	creates    int
}

func (r *collidingAccountRepo) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	r.creates++
	if r.creates <= r.collisions {
		return domain.Account{}, domain.ErrAccountNumberTaken
	}
	return r.AccountRepository.Create(ctx, account)
}

func TestAuthServiceRegisterRedrawsTakenAccountNumber(t *testing.T) {
	accountRepo := &collidingAccountRepo{
		AccountRepository: memory.NewAccountRepository(),
		collisions:        2,
	}
	svc := services.NewAuthService(memory.NewUserRepository(), accountRepo, memory.NewAuditLogRepository(), "test-secret", 1)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "supersecret",
		Pin:      "1234",
	}, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(resp.Data.AccountNumber) != 10 {
		t.Fatalf("expected a 10-digit account number, got %q", resp.Data.AccountNumber)
	}
	if accountRepo.creates != 3 {
		t.Fatalf("expected two redraws before success, got %d creates", accountRepo.creates)
	}
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	req := models.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "supersecret",
		Pin:      "1234",
	}
	if _, err := svc.Register(ctx, req, ""); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, req, "")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "",
		Email:    "not-an-email",
		Password: "short",
		Pin:      "12",
	}, "")
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestAuthServiceLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, models.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "supersecret",
		Pin:      "1234",
	}, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(ctx, models.LoginRequest{
		Email:    "alice@example.com",
		Password: "supersecret",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("expected a signed token")
	}
	if resp.Data.AccountNumber != registered.Data.AccountNumber {
		t.Fatal("login must return the provisioned account number")
	}

	_, err = svc.Login(ctx, models.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	}, "")
	if !errors.Is(err, domain.ErrCredentialRejected) {
		t.Fatalf("expected credential rejection, got %v", err)
	}

	_, err = svc.Login(ctx, models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "supersecret",
	}, "")
	if !errors.Is(err, domain.ErrCredentialRejected) {
		t.Fatalf("expected credential rejection for unknown email, got %v", err)
	}
}
