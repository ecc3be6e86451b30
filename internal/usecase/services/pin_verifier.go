package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/nimblebank/core-banking/internal/adapter/repository/repo_interfaces"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/usecase/service_interfaces"
)

var _ service_interfaces.CredentialVerifier = (*PinVerifier)(nil)

// PinVerifier checks a submitted transaction pin against the bcrypt hash on
// record for the user.
type PinVerifier struct {
	userRepo repo_interfaces.UserRepository
}

func NewPinVerifier(userRepo repo_interfaces.UserRepository) *PinVerifier {
	return &PinVerifier{userRepo: userRepo}
}

func (v *PinVerifier) Verify(ctx context.Context, userID string, pin string) error {
	hash, err := v.userRepo.GetPinHashByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrCredentialRejected
		}
		return fmt.Errorf("fetch pin hash: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return domain.ErrCredentialRejected
	}

	return nil
}
