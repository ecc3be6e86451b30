package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/logger"
)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const ledgerColumns = `id, from_account_id, to_account_id, amount, kind, status, created_at`

func (r *LedgerRepository) Create(ctx context.Context, entry domain.LedgerEntry) (domain.LedgerEntry, error) {
	const query = `
INSERT INTO ledger_entries (
	from_account_id,
	to_account_id,
	amount,
	kind,
	status
) VALUES ($1, $2, $3, $4, $5)
RETURNING ` + ledgerColumns

	var created domain.LedgerEntry
	if err := scanLedgerEntry(r.db.QueryRowContext(
		ctx,
		query,
		entry.FromAccountID,
		entry.ToAccountID,
		entry.Amount,
		entry.Kind,
		entry.Status,
	), &created); err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("create ledger entry: %w", err)
	}

	return created, nil
}

func (r *LedgerRepository) UpdateStatus(ctx context.Context, entryID string, status domain.LedgerStatus) error {
	// Entries are append-only; only the pending -> completed/failed transition
	// is ever written, and at most once.
	const query = `
UPDATE ledger_entries
SET status = $2
WHERE id = $1
  AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, entryID, status)
	if err != nil {
		return fmt.Errorf("update ledger entry status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ledger entry status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (r *LedgerRepository) ListByAccount(ctx context.Context, accountID string, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	query := `
SELECT ` + ledgerColumns + `
FROM ledger_entries
WHERE (from_account_id = $1 OR to_account_id = $1)`
	args := []any{accountID}

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		query += ` AND kind = $` + strconv.Itoa(len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += ` AND created_at <= $` + strconv.Itoa(len(args))
	}
	if filter.Amount != nil {
		args = append(args, *filter.Amount)
		query += ` AND amount = $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var entry domain.LedgerEntry
		if err := scanLedgerEntry(rows, &entry); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	return entries, nil
}

func (r *LedgerRepository) MonthlySummary(ctx context.Context, accountID string, months int) ([]domain.MonthlyTotal, error) {
	const query = `
SELECT
	EXTRACT(YEAR FROM created_at)::int AS year,
	EXTRACT(MONTH FROM created_at)::int AS month,
	CASE WHEN to_account_id = $1 THEN 'credit' ELSE 'debit' END AS direction,
	SUM(amount) AS total
FROM ledger_entries
WHERE (from_account_id = $1 OR to_account_id = $1)
  AND status = 'completed'
  AND created_at >= $2
GROUP BY 1, 2, 3
ORDER BY 1, 2`

	since := time.Now().AddDate(0, -months, 0)

	rows, err := r.db.QueryContext(ctx, query, accountID, since)
	if err != nil {
		return nil, fmt.Errorf("ledger monthly summary: %w", err)
	}
	defer rows.Close()

	var totals []domain.MonthlyTotal
	for rows.Next() {
		var (
			year      int
			month     int
			direction string
			total     decimal.Decimal
		)
		if err := rows.Scan(&year, &month, &direction, &total); err != nil {
			return nil, fmt.Errorf("scan monthly summary row: %w", err)
		}
		totals = append(totals, domain.MonthlyTotal{
			Year:      year,
			Month:     time.Month(month),
			Direction: direction,
			Total:     total,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger monthly summary: %w", err)
	}

	return totals, nil
}

// ProcessTransfer applies the debit, the credit and the completed transfer
// entry inside one database transaction. The debit stays a conditional write
// even here, so a concurrent withdrawal racing this transfer cannot overdraw
// the sender.
func (r *LedgerRepository) ProcessTransfer(ctx context.Context, fromAccountID string, toAccountID string, amount decimal.Decimal) (domain.LedgerEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("begin transfer tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const debitQuery = `
UPDATE accounts
SET balance = balance - $2,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1
  AND status = 'active'
  AND balance >= $2`

	result, err := tx.ExecContext(ctx, debitQuery, fromAccountID, amount)
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("transfer debit: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("transfer debit rows affected: %w", err)
	}
	if affected == 0 {
		return domain.LedgerEntry{}, classifyTransferMiss(ctx, tx, fromAccountID, domain.ErrInsufficientFunds)
	}

	const creditQuery = `
UPDATE accounts
SET balance = balance + $2,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1
  AND status = 'active'`

	result, err = tx.ExecContext(ctx, creditQuery, toAccountID, amount)
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("transfer credit: %w", err)
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("transfer credit rows affected: %w", err)
	}
	if affected == 0 {
		return domain.LedgerEntry{}, classifyTransferMiss(ctx, tx, toAccountID, domain.ErrRecipientNotFound)
	}

	const entryQuery = `
INSERT INTO ledger_entries (
	from_account_id,
	to_account_id,
	amount,
	kind,
	status
) VALUES ($1, $2, $3, 'transfer', 'completed')
RETURNING ` + ledgerColumns

	var entry domain.LedgerEntry
	if err := scanLedgerEntry(tx.QueryRowContext(ctx, entryQuery, fromAccountID, toAccountID, amount), &entry); err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("transfer ledger entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("commit transfer tx: %w", err)
	}

	logger.Info("ledger repository transfer committed", logger.Fields{
		"entryId":       entry.ID,
		"fromAccountId": fromAccountID,
		"toAccountId":   toAccountID,
	})

	return entry, nil
}

func classifyTransferMiss(ctx context.Context, tx *sql.Tx, accountID string, fallback error) error {
	var status domain.AccountStatus
	err := tx.QueryRowContext(ctx, `SELECT status FROM accounts WHERE id = $1`, accountID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		if fallback == domain.ErrRecipientNotFound {
			return domain.ErrRecipientNotFound
		}
		return domain.ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("classify transfer miss: %w", err)
	}
	if status != domain.AccountStatusActive {
		return domain.ErrAccountNotActive
	}
	return fallback
}

func scanLedgerEntry(row rowScanner, entry *domain.LedgerEntry) error {
	var from sql.NullString
	var to sql.NullString

	if err := row.Scan(
		&entry.ID,
		&from,
		&to,
		&entry.Amount,
		&entry.Kind,
		&entry.Status,
		&entry.CreatedAt,
	); err != nil {
		return err
	}

	if from.Valid {
		value := from.String
		entry.FromAccountID = &value
	}
	if to.Valid {
		value := to.String
		entry.ToAccountID = &value
	}

	return nil
}
