package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusFrozen AccountStatus = "frozen"
	AccountStatusClosed AccountStatus = "closed"
)

func (s AccountStatus) IsValid() bool {
	return s == AccountStatusActive || s == AccountStatusFrozen || s == AccountStatusClosed
}

type Account struct {
	ID            string
	UserID        string
	AccountNumber string
	Balance       decimal.Decimal
	Status        AccountStatus
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
