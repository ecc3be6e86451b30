package services_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/adapter/repository/memory"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/usecase/services"
)

func newUserFixture(t *testing.T) (*services.UserService, *memory.UserRepository, domain.User) {
	t.Helper()

	userRepo := memory.NewUserRepository()
	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user, err := userRepo.Create(context.Background(), domain.User{
		Name:         "Alice",
		Email:        "alice@example.com",
		Role:         domain.UserRoleCustomer,
		PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	return services.NewUserService(userRepo), userRepo, user
}

func TestUserServiceGetProfile(t *testing.T) {
	svc, _, user := newUserFixture(t)
	ctx := context.Background()

	resp, err := svc.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if resp.Data.User.Email != "alice@example.com" {
		t.Fatalf("expected seeded email, got %q", resp.Data.User.Email)
	}

	_, err = svc.GetProfile(ctx, "missing-user")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUserServiceUpdateProfile(t *testing.T) {
	svc, userRepo, user := newUserFixture(t)
	ctx := context.Background()

	resp, err := svc.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{
		Name:  "Alice Cooper",
		Email: "Alice.Cooper@Example.com",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if resp.Data.User.Name != "Alice Cooper" {
		t.Fatalf("expected updated name, got %q", resp.Data.User.Name)
	}
	if resp.Data.User.Email != "alice.cooper@example.com" {
		t.Fatalf("expected lowercased email, got %q", resp.Data.User.Email)
	}

	_, err = svc.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{Name: "", Email: "not-an-email"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}

	if _, err := userRepo.Create(ctx, domain.User{
		Name:  "Bob",
		Email: "bob@example.com",
		Role:  domain.UserRoleCustomer,
	}); err != nil {
		t.Fatalf("seed second user: %v", err)
	}
	_, err = svc.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{
		Name:  "Alice Cooper",
		Email: "bob@example.com",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestUserServiceChangePassword(t *testing.T) {
	svc, userRepo, user := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.ChangePassword(ctx, user.ID, models.ChangePasswordRequest{
		CurrentPassword: "wrong-password",
		NewPassword:     "anothersecret",
	})
	if !errors.Is(err, domain.ErrCredentialRejected) {
		t.Fatalf("expected credential rejection, got %v", err)
	}

	resp, err := svc.ChangePassword(ctx, user.ID, models.ChangePasswordRequest{
		CurrentPassword: "supersecret",
		NewPassword:     "anothersecret",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	if !resp.Data.Updated {
		t.Fatal("expected updated flag")
	}

	stored, err := userRepo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("anothersecret")); err != nil {
		t.Fatal("stored hash must match the new password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("supersecret")); err == nil {
		t.Fatal("old password must no longer match")
	}
}
