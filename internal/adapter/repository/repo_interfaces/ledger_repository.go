package repo_interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nimblebank/core-banking/internal/domain"
)

// LedgerRepository is the port for the append-mostly transaction log.
type LedgerRepository interface {
	Create(ctx context.Context, entry domain.LedgerEntry) (domain.LedgerEntry, error)

	// UpdateStatus transitions an entry out of pending. An entry moves to
	// completed or failed at most once; entries are otherwise immutable.
	UpdateStatus(ctx context.Context, entryID string, status domain.LedgerStatus) error

	// ListByAccount returns entries referencing the account on either side,
	// newest first.
	ListByAccount(ctx context.Context, accountID string, filter domain.LedgerFilter) ([]domain.LedgerEntry, error)

	// MonthlySummary aggregates completed entries touching the account into
	// per-month credit/debit totals, oldest month first.
	MonthlySummary(ctx context.Context, accountID string, months int) ([]domain.MonthlyTotal, error)
}

// AtomicTransferProcessor is implemented by ledger stores that can apply both
// balance mutations and the completed transfer entry as one multi-record
// transaction. When the store at hand does not provide it, the transaction
// service falls back to the compensation protocol over AccountRepository
// primitives.
type AtomicTransferProcessor interface {
	ProcessTransfer(ctx context.Context, fromAccountID string, toAccountID string, amount decimal.Decimal) (domain.LedgerEntry, error)
}
