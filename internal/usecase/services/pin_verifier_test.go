package services_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/nimblebank/core-banking/internal/adapter/repository/memory"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/usecase/services"
)

func TestPinVerifier(t *testing.T) {
	ctx := context.Background()
	userRepo := memory.NewUserRepository()

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	user, err := userRepo.Create(ctx, domain.User{
		Name:    "Alice",
		Email:   "alice@example.com",
		PinHash: string(hash),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	verifier := services.NewPinVerifier(userRepo)

	if err := verifier.Verify(ctx, user.ID, "1234"); err != nil {
		t.Fatalf("expected matching pin to verify, got %v", err)
	}
	if err := verifier.Verify(ctx, user.ID, "4321"); !errors.Is(err, domain.ErrCredentialRejected) {
		t.Fatalf("expected rejection for wrong pin, got %v", err)
	}
	if err := verifier.Verify(ctx, "missing-user", "1234"); !errors.Is(err, domain.ErrCredentialRejected) {
		t.Fatalf("expected rejection for unknown user, got %v", err)
	}
}
