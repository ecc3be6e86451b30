package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nimblebank/core-banking/internal/domain"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, user_id, account_number, balance, status, version, created_at, updated_at`

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
INSERT INTO accounts (
	user_id,
	account_number,
	balance,
	status
) VALUES ($1, $2, $3, $4)
RETURNING ` + accountColumns

	var created domain.Account
	if err := scanAccount(r.db.QueryRowContext(
		ctx,
		query,
		account.UserID,
		account.AccountNumber,
		account.Balance,
		account.Status,
	), &created); err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, domain.ErrAccountNumberTaken
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return created, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	return r.getOne(ctx, query, userID)
}

func (r *AccountRepository) GetAll(ctx context.Context) ([]domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := scanAccount(rows, &account); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}

// DebitIfSufficient is a single conditional write: the balance check and the
// subtraction happen in the same statement, so two concurrent debits can never
// both observe the same sufficient balance and both apply.
func (r *AccountRepository) DebitIfSufficient(ctx context.Context, accountID string, amount decimal.Decimal) error {
	const query = `
UPDATE accounts
SET balance = balance - $2,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1
  AND status = 'active'
  AND balance >= $2`

	result, err := r.db.ExecContext(ctx, query, accountID, amount)
	if err != nil {
		return fmt.Errorf("debit account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit account rows affected: %w", err)
	}
	if affected == 0 {
		return r.classifyConditionalMiss(ctx, accountID)
	}

	return nil
}

func (r *AccountRepository) Credit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	const query = `
UPDATE accounts
SET balance = balance + $2,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1
  AND status = 'active'`

	result, err := r.db.ExecContext(ctx, query, accountID, amount)
	if err != nil {
		return fmt.Errorf("credit account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit account rows affected: %w", err)
	}
	if affected == 0 {
		err := r.classifyConditionalMiss(ctx, accountID)
		if errors.Is(err, domain.ErrInsufficientFunds) {
			// A credit has no balance condition; an active account always
			// accepts it, so a miss here can only be not-found or not-active.
			return domain.ErrAccountNotFound
		}
		return err
	}

	return nil
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, accountID string, status domain.AccountStatus) (domain.Account, error) {
	const query = `
UPDATE accounts
SET status = $2,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + accountColumns

	var updated domain.Account
	if err := scanAccount(r.db.QueryRowContext(ctx, query, accountID, status), &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("update account status: %w", err)
	}

	return updated, nil
}

// classifyConditionalMiss turns a zero-row conditional update into the precise
// domain error by re-reading the row.
func (r *AccountRepository) classifyConditionalMiss(ctx context.Context, accountID string) error {
	account, err := r.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrAccountNotFound
		}
		return err
	}
	if account.Status != domain.AccountStatusActive {
		return domain.ErrAccountNotActive
	}
	return domain.ErrInsufficientFunds
}

func (r *AccountRepository) getOne(ctx context.Context, query string, arg any) (domain.Account, error) {
	var account domain.Account
	if err := scanAccount(r.db.QueryRowContext(ctx, query, arg), &account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	return account, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner, account *domain.Account) error {
	return row.Scan(
		&account.ID,
		&account.UserID,
		&account.AccountNumber,
		&account.Balance,
		&account.Status,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
}
