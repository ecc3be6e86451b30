package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LedgerKind string

const (
	LedgerKindDeposit    LedgerKind = "deposit"
	LedgerKindWithdrawal LedgerKind = "withdrawal"
	LedgerKindTransfer   LedgerKind = "transfer"
	LedgerKindRequest    LedgerKind = "request"
)

func (k LedgerKind) IsValid() bool {
	switch k {
	case LedgerKindDeposit, LedgerKindWithdrawal, LedgerKindTransfer, LedgerKindRequest:
		return true
	}
	return false
}

type LedgerStatus string

const (
	LedgerStatusPending   LedgerStatus = "pending"
	LedgerStatusCompleted LedgerStatus = "completed"
	LedgerStatusFailed    LedgerStatus = "failed"
)

// LedgerEntry is an immutable record of one money-movement intent. At least one
// of FromAccountID / ToAccountID is set; transfers set both. Amount is always
// positive; direction is carried by which account references are populated.
type LedgerEntry struct {
	ID            string
	FromAccountID *string
	ToAccountID   *string
	Amount        decimal.Decimal
	Kind          LedgerKind
	Status        LedgerStatus
	CreatedAt     time.Time
}

// LedgerFilter narrows history queries. Zero values mean "no constraint".
type LedgerFilter struct {
	Kind      LedgerKind
	StartDate *time.Time
	EndDate   *time.Time
	Amount    *decimal.Decimal
}

// MonthlyTotal is one bucket of the analytics aggregation: the sum of completed
// entry amounts for an account in a given month, split by direction.
type MonthlyTotal struct {
	Year      int
	Month     time.Month
	Direction string // "credit" or "debit"
	Total     decimal.Decimal
}
