package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/adapter/repository/repo_interfaces"
	"github.com/nimblebank/core-banking/internal/commons"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/logger"
	"github.com/nimblebank/core-banking/internal/usecase/service_interfaces"
)

const accountNumberAttempts = 5

var _ service_interfaces.AuthService = (*AuthService)(nil)

type AuthService struct {
	userRepo    repo_interfaces.UserRepository
	accountRepo repo_interfaces.AccountRepository
	auditRepo   repo_interfaces.AuditLogRepository
	jwtSecret   []byte
	jwtExpiry   time.Duration
}

func NewAuthService(
	userRepo repo_interfaces.UserRepository,
	accountRepo repo_interfaces.AccountRepository,
	auditRepo repo_interfaces.AuditLogRepository,
	jwtSecret string,
	jwtExpiryHours int,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		jwtSecret:   []byte(jwtSecret),
		jwtExpiry:   time.Duration(jwtExpiryHours) * time.Hour,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, ipAddress string) (commons.Response[models.AuthResponse], error) {
	logger.Info("auth service register request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponseFrom[models.AuthResponse]("validation failed", err), err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return commons.ErrorResponse[models.AuthResponse]("failed to register", "Unable to register right now"), fmt.Errorf("hash password: %w", err)
	}
	pinHash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(req.Pin)), bcrypt.DefaultCost)
	if err != nil {
		return commons.ErrorResponse[models.AuthResponse]("failed to register", "Unable to register right now"), fmt.Errorf("hash pin: %w", err)
	}

	user, err := s.userRepo.Create(ctx, domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Role:         domain.UserRoleCustomer,
		PasswordHash: string(passwordHash),
		PinHash:      string(pinHash),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return commons.ErrorResponse[models.AuthResponse]("Email already in use"), domain.ErrEmailTaken
		}
		return commons.ErrorResponse[models.AuthResponse]("failed to register", "Unable to register right now"), err
	}

	account, err := s.provisionAccount(ctx, user.ID)
	if err != nil {
		return commons.ErrorResponse[models.AuthResponse]("failed to register", "Unable to provision account"), err
	}

	s.recordAudit(ctx, user.ID, domain.AuditActionUserRegister, "new user registered", ipAddress)

	token, err := s.signToken(user)
	if err != nil {
		return commons.ErrorResponse[models.AuthResponse]("failed to register", "Unable to issue token"), err
	}

	logger.Info("auth service register success", logger.Fields{
		"userId":    user.ID,
		"accountId": account.ID,
	})

	return commons.SuccessResponse("registration successful", models.AuthResponse{
		Token:         token,
		User:          toUserView(user),
		AccountNumber: account.AccountNumber,
	}), nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, ipAddress string) (commons.Response[models.AuthResponse], error) {
	logger.Info("auth service login request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponseFrom[models.AuthResponse]("validation failed", err), err
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AuthResponse]("Invalid email or password"), domain.ErrCredentialRejected
		}
		return commons.ErrorResponse[models.AuthResponse]("failed to login", "Unable to login right now"), err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return commons.ErrorResponse[models.AuthResponse]("Invalid email or password"), domain.ErrCredentialRejected
	}

	token, err := s.signToken(user)
	if err != nil {
		return commons.ErrorResponse[models.AuthResponse]("failed to login", "Unable to issue token"), err
	}

	s.recordAudit(ctx, user.ID, domain.AuditActionUserLogin, "user logged in", ipAddress)

	response := models.AuthResponse{
		Token: token,
		User:  toUserView(user),
	}
	if account, accErr := s.accountRepo.GetByUserID(ctx, user.ID); accErr == nil {
		response.AccountNumber = account.AccountNumber
	}

	logger.Info("auth service login success", logger.Fields{"userId": user.ID})

	return commons.SuccessResponse("login successful", response), nil
}

// provisionAccount draws a 10-digit account number and inserts the account.
// Uniqueness is enforced by the store at insert time, not by a pre-read: on a
// taken number the draw is retried, so two concurrent registrations drawing
// the same number cannot both commit it. Collisions are vanishingly rare, so
// a handful of attempts is plenty.
func (s *AuthService) provisionAccount(ctx context.Context, userID string) (domain.Account, error) {
	for attempt := 0; attempt < accountNumberAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(9_000_000_000))
		if err != nil {
			return domain.Account{}, fmt.Errorf("generate account number: %w", err)
		}
		candidate := fmt.Sprintf("%d", n.Int64()+1_000_000_000)

		account, err := s.accountRepo.Create(ctx, domain.Account{
			UserID:        userID,
			AccountNumber: candidate,
			Balance:       decimal.Zero,
			Status:        domain.AccountStatusActive,
		})
		if errors.Is(err, domain.ErrAccountNumberTaken) {
			logger.Info("auth service account number collision, redrawing", logger.Fields{
				"userId":  userID,
				"attempt": attempt + 1,
			})
			continue
		}
		if err != nil {
			return domain.Account{}, err
		}
		return account, nil
	}
	return domain.Account{}, errors.New("could not allocate a unique account number")
}

func (s *AuthService) signToken(user domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.jwtExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// recordAudit is best effort; an audit write failure never fails the caller.
func (s *AuthService) recordAudit(ctx context.Context, userID, action, details, ipAddress string) {
	err := s.auditRepo.Create(ctx, domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: ipAddress,
	})
	if err != nil {
		logger.Error("audit log write failed", err, logger.Fields{
			"userId": userID,
			"action": action,
		})
	}
}

func toUserView(user domain.User) models.UserView {
	return models.UserView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
