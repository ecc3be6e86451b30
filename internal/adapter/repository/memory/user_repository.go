package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nimblebank/core-banking/internal/domain"
)

type UserRepository struct {
	mu      sync.Mutex
	users   map[string]domain.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if _, exists := r.byEmail[email]; exists {
		return domain.User{}, domain.ErrEmailTaken
	}

	now := time.Now()
	user.ID = uuid.NewString()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = user
	r.byEmail[email] = user.ID

	return user, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrRecordNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return domain.User{}, domain.ErrRecordNotFound
	}
	return r.users[id], nil
}

func (r *UserRepository) GetPinHashByUserID(_ context.Context, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return "", domain.ErrRecordNotFound
	}
	return user.PinHash, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, userID string, name string, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return domain.User{}, domain.ErrRecordNotFound
	}

	normalized := strings.ToLower(strings.TrimSpace(email))
	if existingID, taken := r.byEmail[normalized]; taken && existingID != userID {
		return domain.User{}, domain.ErrEmailTaken
	}

	delete(r.byEmail, user.Email)
	user.Name = name
	user.Email = normalized
	user.UpdatedAt = time.Now()

	r.users[userID] = user
	r.byEmail[normalized] = userID

	return user, nil
}

func (r *UserRepository) UpdatePasswordHash(_ context.Context, userID string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return domain.ErrRecordNotFound
	}

	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	r.users[userID] = user

	return nil
}

func (r *UserRepository) GetAll(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	return users, nil
}
