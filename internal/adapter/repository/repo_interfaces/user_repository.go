package repo_interfaces

import (
	"context"

	"github.com/nimblebank/core-banking/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetPinHashByUserID(ctx context.Context, userID string) (string, error)
	GetAll(ctx context.Context) ([]domain.User, error)

	// UpdateProfile changes name and email. Returns domain.ErrEmailTaken when
	// the new email belongs to another user.
	UpdateProfile(ctx context.Context, userID string, name string, email string) (domain.User, error)

	UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error
}
